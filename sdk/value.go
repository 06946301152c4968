package sdk

import (
	"fmt"
	"net/netip"
)

// Kind identifies the payload shape of an attribute value.
type Kind int

const (
	KindBool Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindS32
	KindMAC
	KindIP
	KindOID
	KindOIDList
	KindU32List
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindS32:
		return "s32"
	case KindMAC:
		return "mac"
	case KindIP:
		return "ip"
	case KindOID:
		return "oid"
	case KindOIDList:
		return "oid-list"
	case KindU32List:
		return "u32-list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is the closed union of payload types an attribute can carry.
// Scalar values are plain value types; list values are pointers so the
// adapter can fill the buffer in place.
type Value interface {
	isValue()
	Kind() Kind
}

type (
	Bool bool
	U8   uint8
	U16  uint16
	U32  uint32
	U64  uint64
	S32  int32
	MAC  [6]byte
	IP   struct{ Addr netip.Addr }
	OID  ObjectID
)

func (Bool) isValue() {}
func (U8) isValue()   {}
func (U16) isValue()  {}
func (U32) isValue()  {}
func (U64) isValue()  {}
func (S32) isValue()  {}
func (MAC) isValue()  {}
func (IP) isValue()   {}
func (OID) isValue()  {}

func (Bool) Kind() Kind { return KindBool }
func (U8) Kind() Kind   { return KindU8 }
func (U16) Kind() Kind  { return KindU16 }
func (U32) Kind() Kind  { return KindU32 }
func (U64) Kind() Kind  { return KindU64 }
func (S32) Kind() Kind  { return KindS32 }
func (MAC) Kind() Kind  { return KindMAC }
func (IP) Kind() Kind   { return KindIP }
func (OID) Kind() Kind  { return KindOID }

func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// OIDList is a list of object identifiers. Count is the logical element
// count, authoritative once the adapter has written it back; the buffer
// capacity is len(Buf) and is grown independently via GrowTo.
type OIDList struct {
	Count int
	Buf   []ObjectID
}

// NewOIDList allocates a list with the given buffer capacity and a
// logical count of zero.
func NewOIDList(capacity int) *OIDList {
	return &OIDList{Buf: make([]ObjectID, capacity)}
}

func (*OIDList) isValue()   {}
func (*OIDList) Kind() Kind { return KindOIDList }
func (l *OIDList) Capacity() int { return len(l.Buf) }

// GrowTo reallocates the buffer to hold n elements. The buffer is
// reinitialised: previous contents do not survive a grow.
func (l *OIDList) GrowTo(n int) {
	l.Buf = make([]ObjectID, n)
}

// Values returns an owned copy of the logical contents, safe to retain
// after the attribute's buffer is reused or discarded.
func (l *OIDList) Values() []ObjectID {
	n := min(l.Count, len(l.Buf))
	out := make([]ObjectID, n)
	copy(out, l.Buf[:n])
	return out
}

// U32List is a list of 32-bit values with the same count/capacity
// split as OIDList.
type U32List struct {
	Count int
	Buf   []uint32
}

// NewU32List allocates a list with the given buffer capacity and a
// logical count of zero.
func NewU32List(capacity int) *U32List {
	return &U32List{Buf: make([]uint32, capacity)}
}

func (*U32List) isValue()   {}
func (*U32List) Kind() Kind { return KindU32List }
func (l *U32List) Capacity() int { return len(l.Buf) }

// GrowTo reallocates the buffer to hold n elements, discarding previous
// contents.
func (l *U32List) GrowTo(n int) {
	l.Buf = make([]uint32, n)
}

// Values returns an owned copy of the logical contents.
func (l *U32List) Values() []uint32 {
	n := min(l.Count, len(l.Buf))
	out := make([]uint32, n)
	copy(out, l.Buf[:n])
	return out
}

// DefaultValue returns a default-constructed value of the given kind.
// Lists default to an empty buffer; the engine's overflow retry grows
// them to the hardware-reported size on first read.
func DefaultValue(k Kind) Value {
	switch k {
	case KindBool:
		return Bool(false)
	case KindU8:
		return U8(0)
	case KindU16:
		return U16(0)
	case KindU32:
		return U32(0)
	case KindU64:
		return U64(0)
	case KindS32:
		return S32(0)
	case KindMAC:
		return MAC{}
	case KindIP:
		return IP{}
	case KindOID:
		return OID(0)
	case KindOIDList:
		return NewOIDList(0)
	case KindU32List:
		return NewU32List(0)
	default:
		panic(fmt.Sprintf("sdk: no default for %v", k))
	}
}
