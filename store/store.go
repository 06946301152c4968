// Package store defines the warm-boot store contract: the persistent
// record of every hardware object this agent has created, plus the
// identity of the hardware session that created it. After a restart the
// managers reclaim their objects from the store instead of recreating
// them, then reload full object state through the engine's recursive
// reads.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ferrous-networks/asicman/sdk"
)

// ErrNotFound is returned when an addressed record does not exist.
var ErrNotFound = errors.New("not found")

// Record is one created hardware object.
type Record struct {
	Category  sdk.ObjectCategory
	Key       string // EncodeOID form for generated handles, Key.String() for entry keys
	KeyKind   string // "oid" or "entry"
	SwitchID  sdk.ObjectID
	CreatedAt time.Time
}

// Session identifies one hardware programming session.
type Session struct {
	UUID      uuid.UUID
	Chip      string
	SwitchID  sdk.ObjectID
	StartedAt time.Time
}

// Store persists objects and the session. Implementations must be safe
// for use from multiple control threads.
type Store interface {
	io.Closer

	// BeginSession records the session, replacing any previous one.
	BeginSession(ctx context.Context, s Session) error
	// CurrentSession returns the recorded session, or ErrNotFound.
	CurrentSession(ctx context.Context) (Session, error)

	SaveObject(ctx context.Context, r Record) error
	DeleteObject(ctx context.Context, category sdk.ObjectCategory, key string) error
	ListObjects(ctx context.Context, category sdk.ObjectCategory) ([]Record, error)
}

// EncodeOID renders a generated handle for storage.
func EncodeOID(id sdk.ObjectID) string {
	return "0x" + strconv.FormatUint(uint64(id), 16)
}

// DecodeOID parses a handle stored by EncodeOID.
func DecodeOID(s string) (sdk.ObjectID, error) {
	if len(s) < 3 || s[:2] != "0x" {
		return sdk.NullObjectID, fmt.Errorf("malformed object key %q", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return sdk.NullObjectID, fmt.Errorf("malformed object key %q: %w", s, err)
	}
	return sdk.ObjectID(v), nil
}
