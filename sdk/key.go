package sdk

import (
	"fmt"
	"net/netip"
)

// ObjectID is an opaque handle assigned by the vendor adapter when an
// object is created. It uniquely identifies the object until Remove
// completes; reuse after removal is undefined unless recreated.
type ObjectID uint64

// NullObjectID is the reserved "no object" handle.
const NullObjectID ObjectID = 0

func (id ObjectID) String() string { return fmt.Sprintf("oid:0x%x", uint64(id)) }

// Key identifies one hardware object on a call into the adapter. It is
// either an ObjectID (generated-handle categories) or an EntryKey
// (caller-supplied composite key categories). Which variant applies is
// fixed per object category, never per instance.
type Key interface {
	isKey()
	String() string
}

func (ObjectID) isKey() {}

// EntryKey is a caller-supplied composite key. It is passed to creation
// rather than returned from it.
type EntryKey interface {
	Key
	isEntryKey()
}

// RouteEntry addresses one route in a virtual router's FIB. It is the
// entry key for the route category.
type RouteEntry struct {
	SwitchID      ObjectID
	VirtualRouter ObjectID
	Prefix        netip.Prefix
}

func (RouteEntry) isKey()      {}
func (RouteEntry) isEntryKey() {}

func (e RouteEntry) String() string {
	return fmt.Sprintf("route{switch:0x%x vr:0x%x %s}", uint64(e.SwitchID), uint64(e.VirtualRouter), e.Prefix)
}
