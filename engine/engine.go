// Package engine implements the generic attribute-based CRUD and
// statistics engine over the vendor SDK. One Engine exists per object
// category, bound at construction to that category's descriptor and
// adapter; every call runs inside the shared process-wide hardware
// lock.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/ferrous-networks/asicman"
	"github.com/ferrous-networks/asicman/hwlock"
	"github.com/ferrous-networks/asicman/sdk"
)

// Engine provides create/remove/get/set/stats for one object category.
// All operations are synchronous and blocking; each is a single
// critical section, including the one permitted buffer-overflow retry
// on list-attribute reads.
type Engine struct {
	desc    Descriptor
	adapter sdk.Adapter
	lock    *hwlock.Lock
	logger  *slog.Logger
}

// New binds an engine to one category's descriptor and adapter. The
// lock must be the single process-wide hardware lock.
func New(desc Descriptor, adapter sdk.Adapter, lock *hwlock.Lock, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		desc:    desc,
		adapter: adapter,
		lock:    lock,
		logger:  logger.With("component", "engine", "category", desc.Category.String()),
	}
}

// Descriptor returns the descriptor the engine is bound to.
func (e *Engine) Descriptor() Descriptor { return e.desc }

// Create creates an object and returns its adapter-generated handle.
// switchID identifies the owning switch instance. Calling Create on a
// supplied-key category is a programming error and panics.
func (e *Engine) Create(switchID sdk.ObjectID, attrs []sdk.Attribute) (sdk.ObjectID, error) {
	if e.desc.Key != GeneratedKey {
		panic(fmt.Sprintf("engine: Create called on supplied-key category %v", e.desc.Category))
	}

	var (
		id     sdk.ObjectID
		status sdk.Status
	)
	e.lock.Do(func() {
		id, status = e.adapter.Create(switchID, attrs)
	})
	if !status.IsSuccess() {
		return sdk.NullObjectID, asicman.HardwareCallError{
			Category: e.desc.Category,
			Op:       "create",
			Status:   status,
		}
	}

	e.logger.Debug("created object", "key", id.String())
	return id, nil
}

// CreateEntry creates an object addressed by a caller-supplied entry
// key. Calling CreateEntry on a generated-key category is a programming
// error and panics.
func (e *Engine) CreateEntry(entry sdk.EntryKey, attrs []sdk.Attribute) error {
	if e.desc.Key != SuppliedKey {
		panic(fmt.Sprintf("engine: CreateEntry called on generated-key category %v", e.desc.Category))
	}

	var status sdk.Status
	e.lock.Do(func() {
		status = e.adapter.CreateEntry(entry, attrs)
	})
	if !status.IsSuccess() {
		return asicman.HardwareCallError{
			Category: e.desc.Category,
			Op:       "create",
			Status:   status,
		}
	}

	e.logger.Debug("created object", "key", entry.String())
	return nil
}

// Remove removes an object. Works for either key variant.
func (e *Engine) Remove(key sdk.Key) error {
	var status sdk.Status
	e.lock.Do(func() {
		status = e.adapter.Remove(key)
	})
	if !status.IsSuccess() {
		return asicman.HardwareCallError{
			Category: e.desc.Category,
			Op:       "remove",
			Status:   status,
		}
	}

	e.logger.Debug("removed object", "key", key.String())
	return nil
}

// GetAttribute reads a single attribute and returns an owned copy of
// its semantic value, decoupled from the attribute's transient buffer.
//
// If the adapter reports buffer overflow on the first attempt (the
// attribute is list-valued and the buffer was undersized), the buffer
// is grown to the hardware-reported count and the call is reissued
// exactly once, inside the same critical section. Any other non-success
// status, or a second overflow, is fatal.
func (e *Engine) GetAttribute(key sdk.Key, attr *sdk.Attribute) (sdk.Value, error) {
	var status sdk.Status
	e.lock.Do(func() {
		status = e.adapter.GetAttribute(key, attr)
		if status.IsBufferOverflow() {
			lv, ok := attr.List()
			if !ok {
				return
			}
			lv.GrowTo(lv.ReportedCount())
			status = e.adapter.GetAttribute(key, attr)
		}
	})
	if !status.IsSuccess() {
		return nil, asicman.HardwareCallError{
			Category: e.desc.Category,
			Op:       fmt.Sprintf("get attribute 0x%04x", uint32(attr.ID)),
			Status:   status,
		}
	}
	return attr.Semantic(), nil
}

// SetAttribute writes a single attribute.
func (e *Engine) SetAttribute(key sdk.Key, attr sdk.Attribute) error {
	var status sdk.Status
	e.lock.Do(func() {
		status = e.adapter.SetAttribute(key, attr)
	})
	if !status.IsSuccess() {
		return asicman.HardwareCallError{
			Category: e.desc.Category,
			Op:       fmt.Sprintf("set attribute 0x%04x", uint32(attr.ID)),
			Status:   status,
		}
	}
	return nil
}

// Stats reads counters for an object. With no explicit counter IDs the
// descriptor's default list is used. The result length always equals
// the counter-id count used. The aggregation mode is the descriptor's
// constant, never a per-call choice.
func (e *Engine) Stats(key sdk.Key, counterIDs ...sdk.CounterID) ([]uint64, error) {
	ids := counterIDs
	if ids == nil {
		ids = e.desc.DefaultCounters
	}

	out := make([]uint64, len(ids))
	var status sdk.Status
	e.lock.Do(func() {
		status = e.adapter.GetStats(key, ids, e.desc.CounterMode, out)
	})
	if !status.IsSuccess() {
		return nil, asicman.HardwareCallError{
			Category: e.desc.Category,
			Op:       "get stats",
			Status:   status,
		}
	}
	return out, nil
}
