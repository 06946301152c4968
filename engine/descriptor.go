package engine

import "github.com/ferrous-networks/asicman/sdk"

// KeyKind is the object identification scheme of a category: either the
// adapter generates an opaque handle on creation, or the caller
// supplies a composite entry key. The kind is fixed per category.
type KeyKind int

const (
	// GeneratedKey categories receive an ObjectID from the adapter on
	// creation and address every subsequent call with it.
	GeneratedKey KeyKind = iota
	// SuppliedKey categories are addressed by a caller-supplied entry
	// key; creation never returns a key.
	SuppliedKey
)

// Descriptor statically binds an object category to its key variant,
// counter enumeration, and counter aggregation mode. Every engine is
// bound to exactly one descriptor at construction, so no call can mix
// descriptors.
type Descriptor struct {
	Category        sdk.ObjectCategory
	Key             KeyKind
	CounterMode     sdk.CounterMode
	DefaultCounters []sdk.CounterID
}

// The fixed descriptor set. Category membership, key shape and counter
// mode are build-time constants of the vendor contract.
var (
	PortDescriptor = Descriptor{
		Category:    sdk.CategoryPort,
		Key:         GeneratedKey,
		CounterMode: sdk.CounterModeCumulative,
		DefaultCounters: []sdk.CounterID{
			sdk.PortCounterInOctets,
			sdk.PortCounterOutOctets,
			sdk.PortCounterInPackets,
			sdk.PortCounterOutPackets,
			sdk.PortCounterInErrors,
			sdk.PortCounterOutErrors,
		},
	}

	BridgeDescriptor = Descriptor{
		Category:    sdk.CategoryBridge,
		Key:         GeneratedKey,
		CounterMode: sdk.CounterModeCumulative,
	}

	RouteDescriptor = Descriptor{
		Category:    sdk.CategoryRoute,
		Key:         SuppliedKey,
		CounterMode: sdk.CounterModeCumulative,
	}

	// Queue statistics include occupancy watermarks, which only make
	// sense as instantaneous reads.
	QueueDescriptor = Descriptor{
		Category:    sdk.CategoryQueue,
		Key:         GeneratedKey,
		CounterMode: sdk.CounterModePointInTime,
		DefaultCounters: []sdk.CounterID{
			sdk.QueueCounterPackets,
			sdk.QueueCounterBytes,
			sdk.QueueCounterDroppedPackets,
			sdk.QueueCounterWatermarkBytes,
		},
	}
)
