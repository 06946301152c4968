package hwlock_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferrous-networks/asicman/hwlock"
)

func TestDoIsMutuallyExclusive(t *testing.T) {
	lock := hwlock.New()

	var inside, peak int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				lock.Do(func() {
					mu.Lock()
					inside++
					if inside > peak {
						peak = inside
					}
					mu.Unlock()

					mu.Lock()
					inside--
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, peak)
}

func TestAcquireSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hw.lock")

	guard, err := hwlock.AcquireSession(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, guard.Path())
	require.NoError(t, guard.Close())

	// Released: a fresh acquisition succeeds immediately.
	guard, err = hwlock.AcquireSession(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, guard.Close())
}

func TestAcquireSessionCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested.lock")
	guard, err := hwlock.AcquireSession(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = guard.Close() })
	assert.FileExists(t, path)
}

func TestAcquireSessionRespectsCancellation(t *testing.T) {
	// flock ownership is per open file description, so holding the
	// lock in-process still blocks a second open of the same path.
	path := filepath.Join(t.TempDir(), "hw.lock")

	held, err := hwlock.AcquireSession(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = held.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = hwlock.AcquireSession(ctx, path)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSessionGuardCloseNil(t *testing.T) {
	var guard *hwlock.SessionGuard
	assert.NoError(t, guard.Close())
}
