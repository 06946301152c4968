package engine

import (
	"log/slog"

	"github.com/ferrous-networks/asicman/hwlock"
	"github.com/ferrous-networks/asicman/sdk"
)

// Table is the shared vendor-access table: one constructed engine per
// object category, all serialised by the same hardware lock. Managers
// receive the table at construction and never build engines themselves.
type Table struct {
	Port   *Engine
	Bridge *Engine
	Route  *Engine
	Queue  *Engine

	hw   sdk.Hardware
	lock *hwlock.Lock
}

// NewTable resolves each category's adapter once and binds it to its
// descriptor.
func NewTable(hw sdk.Hardware, lock *hwlock.Lock, logger *slog.Logger) *Table {
	return &Table{
		Port:   New(PortDescriptor, hw.Adapter(sdk.CategoryPort), lock, logger),
		Bridge: New(BridgeDescriptor, hw.Adapter(sdk.CategoryBridge), lock, logger),
		Route:  New(RouteDescriptor, hw.Adapter(sdk.CategoryRoute), lock, logger),
		Queue:  New(QueueDescriptor, hw.Adapter(sdk.CategoryQueue), lock, logger),
		hw:     hw,
		lock:   lock,
	}
}

// SwitchID returns the handle of the switch instance the table
// programs.
func (t *Table) SwitchID() sdk.ObjectID { return t.hw.SwitchID() }
