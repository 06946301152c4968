// Package hwlock serialises access to the vendor SDK.
//
// The vendor SDK offers no thread-safety guarantee for concurrent
// native calls, so a single process-wide Lock guards every
// vendor-facing operation across all object categories and all
// managers. The lock is intentionally coarse: this layer is
// control-path, invoked from a small number of control threads, not
// from hot loops.
//
// A SessionGuard additionally holds flock(2) on a lock file so that two
// agent processes can never program the same ASIC concurrently.
package hwlock

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Lock is the process-wide critical section for vendor calls. It is
// constructed once at composition time and shared by every engine; it
// has process lifetime and is never reconstructed.
//
// The lock is held for the full duration of one logical vendor
// operation, including the single permitted buffer-overflow reattempt,
// so no other hardware call can interleave between the two attempts.
type Lock struct {
	mu sync.Mutex
}

// New returns the lock. Call exactly once per process, at composition.
func New() *Lock {
	return &Lock{}
}

// Do runs fn inside the critical section. There is no cancellation and
// no timeout: fn either completes or blocks until the vendor SDK
// returns.
func (l *Lock) Do(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// SessionGuard holds exclusive flock(2) ownership of the hardware
// session lock file for the lifetime of the process.
type SessionGuard struct {
	f *os.File
}

// AcquireSession opens the session lock file and acquires an exclusive
// flock, retrying with backoff until ctx is cancelled. A second agent
// process pointed at the same ASIC blocks here rather than issuing
// interleaved vendor calls.
func AcquireSession(ctx context.Context, path string) (*SessionGuard, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open session lock file: %w", err)
	}

	backoff := 25 * time.Millisecond
	const maxBackoff = 500 * time.Millisecond

	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &SessionGuard{f: f}, nil
		}
		if err != unix.EWOULDBLOCK {
			f.Close()
			return nil, fmt.Errorf("flock session lock: %w", err)
		}

		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

// Path returns the lock file path backing the guard.
func (g *SessionGuard) Path() string {
	return g.f.Name()
}

// Close releases the session lock.
func (g *SessionGuard) Close() error {
	if g == nil || g.f == nil {
		return nil
	}
	return g.f.Close()
}
