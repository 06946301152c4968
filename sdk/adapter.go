package sdk

import "fmt"

// ObjectCategory is a class of hardware object. The set is fixed and
// known at build time.
type ObjectCategory int

const (
	CategoryPort ObjectCategory = iota
	CategoryBridge
	CategoryRoute
	CategoryQueue
)

func (c ObjectCategory) String() string {
	switch c {
	case CategoryPort:
		return "port"
	case CategoryBridge:
		return "bridge"
	case CategoryRoute:
		return "route"
	case CategoryQueue:
		return "queue"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseObjectCategory parses a category name as produced by String.
func ParseObjectCategory(s string) (ObjectCategory, error) {
	switch s {
	case "port":
		return CategoryPort, nil
	case "bridge":
		return CategoryBridge, nil
	case "route":
		return CategoryRoute, nil
	case "queue":
		return CategoryQueue, nil
	default:
		return CategoryPort, fmt.Errorf("unknown object category: %q", s)
	}
}

// CounterID identifies one statistic within a category's counter
// enumeration.
type CounterID uint32

// Port counters.
const (
	PortCounterInOctets CounterID = iota
	PortCounterOutOctets
	PortCounterInPackets
	PortCounterOutPackets
	PortCounterInErrors
	PortCounterOutErrors
)

// Queue counters.
const (
	QueueCounterPackets CounterID = iota
	QueueCounterBytes
	QueueCounterDroppedPackets
	QueueCounterWatermarkBytes
)

// CounterMode selects how a statistic is aggregated when read.
type CounterMode int

const (
	// CounterModeCumulative reads an accumulating counter.
	CounterModeCumulative CounterMode = iota
	// CounterModePointInTime reads an instantaneous value, e.g. a
	// watermark or occupancy.
	CounterModePointInTime
)

func (m CounterMode) String() string {
	switch m {
	case CounterModeCumulative:
		return "cumulative"
	case CounterModePointInTime:
		return "point-in-time"
	default:
		return fmt.Sprintf("counter-mode(%d)", int(m))
	}
}

// Adapter is the four-primitive vendor call surface for one object
// category. Implementations wrap the vendor SDK's C-style entry points
// and are not required to be safe for concurrent use: the engine
// serialises every call through the global hardware lock.
//
// Create applies to generated-handle categories and returns the new
// handle. CreateEntry applies to supplied-key categories. Remove,
// GetAttribute, SetAttribute and GetStats accept either key variant,
// subject to the category's declared shape.
//
// GetAttribute writes the result into attr's payload in place. For an
// undersized list buffer it writes the required element count into the
// list's Count field and returns StatusBufferOverflow.
//
// GetStats fills out, which the caller sizes to len(counters).
type Adapter interface {
	Create(switchID ObjectID, attrs []Attribute) (ObjectID, Status)
	CreateEntry(entry EntryKey, attrs []Attribute) Status
	Remove(key Key) Status
	GetAttribute(key Key, attr *Attribute) Status
	SetAttribute(key Key, attr Attribute) Status
	GetStats(key Key, counters []CounterID, mode CounterMode, out []uint64) Status
}

// Hardware provides the per-category adapters for one ASIC, plus the
// switch-scope handle creation calls take.
type Hardware interface {
	// Adapter returns the vendor call surface for a category. The
	// returned adapter is resolved once per category at composition
	// time.
	Adapter(category ObjectCategory) Adapter

	// SwitchID returns the handle of the switch instance owning every
	// object created through this hardware.
	SwitchID() ObjectID
}
