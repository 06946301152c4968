package sdk

import "fmt"

// AttrID is the numeric identifier of one attribute. Identifiers are
// scoped per object category, mirroring the vendor headers.
type AttrID uint32

// Port attributes.
const (
	PortAttrAdminState   AttrID = 0x0000 // Bool
	PortAttrSpeed        AttrID = 0x0001 // U32, Mbps
	PortAttrHWLaneList   AttrID = 0x0002 // U32List
	PortAttrMTU          AttrID = 0x0003 // U32
	PortAttrLoopbackMode AttrID = 0x0004 // S32
	PortAttrFECMode      AttrID = 0x0005 // S32
	PortAttrQueueList    AttrID = 0x0006 // OIDList, read-only
	PortAttrNumQueues    AttrID = 0x0007 // U32, read-only
)

// Bridge attributes.
const (
	BridgeAttrType                AttrID = 0x0100 // S32
	BridgeAttrPortList            AttrID = 0x0101 // OIDList, read-only
	BridgeAttrMaxLearnedAddresses AttrID = 0x0102 // U32
)

// Route attributes.
const (
	RouteAttrPacketAction AttrID = 0x0200 // S32
	RouteAttrNextHopID    AttrID = 0x0201 // OID
	RouteAttrMetadata     AttrID = 0x0202 // U32
)

// Queue attributes.
const (
	QueueAttrType             AttrID = 0x0300 // S32
	QueueAttrIndex            AttrID = 0x0301 // U8
	QueueAttrPort             AttrID = 0x0302 // OID
	QueueAttrSchedulerProfile AttrID = 0x0303 // OID
)

// PacketAction is the S32 payload of RouteAttrPacketAction.
const (
	PacketActionDrop    int32 = 0
	PacketActionForward int32 = 1
	PacketActionTrap    int32 = 2
)

// BridgeType is the S32 payload of BridgeAttrType.
const (
	BridgeType8021Q int32 = 0
	BridgeType8021D int32 = 1
)

// QueueType is the S32 payload of QueueAttrType.
const (
	QueueTypeUnicast   int32 = 0
	QueueTypeMulticast int32 = 1
)

// Attribute is one typed (id, value) record as passed to the adapter.
// An Attribute is owned exclusively by the caller that constructed it
// for the duration of one engine call; it is never shared across calls.
type Attribute struct {
	ID    AttrID
	Value Value
}

func (a Attribute) String() string {
	return fmt.Sprintf("attr{0x%04x %v}", uint32(a.ID), a.Value)
}

// ListValue is the interface of list-valued payloads, whose logical
// count and buffer capacity are tracked separately.
type ListValue interface {
	Value
	Capacity() int
	GrowTo(n int)
	ReportedCount() int
}

// ReportedCount returns the count the adapter last wrote back.
func (l *OIDList) ReportedCount() int { return l.Count }

// ReportedCount returns the count the adapter last wrote back.
func (l *U32List) ReportedCount() int { return l.Count }

// List returns the attribute's payload as a ListValue when it is
// list-valued.
func (a *Attribute) List() (ListValue, bool) {
	lv, ok := a.Value.(ListValue)
	return lv, ok
}

// Semantic extracts an owned copy of the attribute's value, decoupled
// from any buffer the adapter may have written into. Safe to retain
// after the attribute goes out of scope.
func (a *Attribute) Semantic() Value {
	switch v := a.Value.(type) {
	case *OIDList:
		vals := v.Values()
		return &OIDList{Count: len(vals), Buf: vals}
	case *U32List:
		vals := v.Values()
		return &U32List{Count: len(vals), Buf: vals}
	default:
		return v
	}
}
