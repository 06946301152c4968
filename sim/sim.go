// Package sim provides an in-memory ASIC implementing the vendor
// adapter contract. It backs the diagnostic CLI and the manager tests,
// simulating handle allocation, attribute storage, list-buffer overflow
// signalling, and counters without any hardware.
package sim

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ferrous-networks/asicman/sdk"
)

// queuesPerPort is the number of queues the simulated chip instantiates
// alongside each front-panel port, discoverable via PortAttrQueueList.
const queuesPerPort = 8

// Hardware is one simulated switch ASIC. Its adapters are not
// internally synchronised beyond a data-race guard: ordering guarantees
// come from the engine's hardware lock, as with a real SDK.
type Hardware struct {
	switchID sdk.ObjectID
	logger   *slog.Logger

	mu      sync.Mutex
	nextID  atomic.Uint64
	objects map[sdk.ObjectID]*object
	entries map[string]*object

	// failNext maps "category/op" to an injected status consumed by
	// the next matching call.
	failNext map[string]sdk.Status
}

type object struct {
	category sdk.ObjectCategory
	attrs    map[sdk.AttrID]sdk.Value
	counters map[sdk.CounterID]uint64

	// queues holds the auto-instantiated queue handles of a port.
	queues []sdk.ObjectID
}

// New creates a simulated ASIC.
func New(logger *slog.Logger) *Hardware {
	if logger == nil {
		logger = slog.Default()
	}
	hw := &Hardware{
		switchID: 0x1,
		logger:   logger.With("component", "sim"),
		objects:  make(map[sdk.ObjectID]*object),
		entries:  make(map[string]*object),
		failNext: make(map[string]sdk.Status),
	}
	hw.nextID.Store(0x100)
	return hw
}

// SwitchID returns the simulated switch handle.
func (h *Hardware) SwitchID() sdk.ObjectID { return h.switchID }

// Adapter returns the call surface for one category.
func (h *Hardware) Adapter(category sdk.ObjectCategory) sdk.Adapter {
	return &categoryAdapter{hw: h, category: category}
}

// FailNext injects a status for the next call of the given operation
// ("create", "remove", "get", "set", "stats") on a category.
func (h *Hardware) FailNext(category sdk.ObjectCategory, op string, status sdk.Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failNext[category.String()+"/"+op] = status
}

// BumpCounter adds delta to one counter of an object. Test and CLI
// seeding hook; real traffic does not flow through the simulator.
func (h *Hardware) BumpCounter(key sdk.Key, id sdk.CounterID, delta uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	obj := h.lookup(key)
	if obj == nil {
		return fmt.Errorf("sim: no object for key %s", key.String())
	}
	obj.counters[id] += delta
	return nil
}

// SetListAttribute replaces a list attribute's authoritative contents,
// regardless of any caller buffer size. Used to stage hardware-side
// list state for overflow exercises.
func (h *Hardware) SetListAttribute(key sdk.Key, id sdk.AttrID, value sdk.Value) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	obj := h.lookup(key)
	if obj == nil {
		return fmt.Errorf("sim: no object for key %s", key.String())
	}
	obj.attrs[id] = value
	return nil
}

func (h *Hardware) lookup(key sdk.Key) *object {
	switch k := key.(type) {
	case sdk.ObjectID:
		return h.objects[k]
	default:
		return h.entries[key.String()]
	}
}

func (h *Hardware) takeInjected(category sdk.ObjectCategory, op string) (sdk.Status, bool) {
	k := category.String() + "/" + op
	if st, ok := h.failNext[k]; ok {
		delete(h.failNext, k)
		return st, true
	}
	return sdk.StatusSuccess, false
}

func (h *Hardware) allocID() sdk.ObjectID {
	return sdk.ObjectID(h.nextID.Add(1))
}

func newObject(category sdk.ObjectCategory, attrs []sdk.Attribute) *object {
	obj := &object{
		category: category,
		attrs:    make(map[sdk.AttrID]sdk.Value),
		counters: make(map[sdk.CounterID]uint64),
	}
	for i := range attrs {
		obj.attrs[attrs[i].ID] = attrs[i].Semantic()
	}
	return obj
}

// instantiatePortQueues creates the per-port queue objects the chip
// brings up with a port, and publishes them on the port's queue-list
// attribute.
func (h *Hardware) instantiatePortQueues(portID sdk.ObjectID, port *object) {
	list := &sdk.OIDList{Count: queuesPerPort, Buf: make([]sdk.ObjectID, queuesPerPort)}
	for i := 0; i < queuesPerPort; i++ {
		qid := h.allocID()
		q := &object{
			category: sdk.CategoryQueue,
			attrs: map[sdk.AttrID]sdk.Value{
				sdk.QueueAttrType:  sdk.S32(0), // unicast
				sdk.QueueAttrIndex: sdk.U8(i),
				sdk.QueueAttrPort:  sdk.OID(portID),
			},
			counters: make(map[sdk.CounterID]uint64),
		}
		h.objects[qid] = q
		port.queues = append(port.queues, qid)
		list.Buf[i] = qid
	}
	port.attrs[sdk.PortAttrQueueList] = list
	port.attrs[sdk.PortAttrNumQueues] = sdk.U32(queuesPerPort)
}

// categoryAdapter scopes the shared hardware state to one category.
type categoryAdapter struct {
	hw       *Hardware
	category sdk.ObjectCategory
}

func (a *categoryAdapter) Create(switchID sdk.ObjectID, attrs []sdk.Attribute) (sdk.ObjectID, sdk.Status) {
	h := a.hw
	h.mu.Lock()
	defer h.mu.Unlock()

	if st, ok := h.takeInjected(a.category, "create"); ok {
		return sdk.NullObjectID, st
	}
	if switchID != h.switchID {
		return sdk.NullObjectID, sdk.StatusInvalidParameter
	}
	if a.category == sdk.CategoryRoute {
		return sdk.NullObjectID, sdk.StatusInvalidParameter
	}

	id := h.allocID()
	obj := newObject(a.category, attrs)
	h.objects[id] = obj
	if a.category == sdk.CategoryPort {
		h.instantiatePortQueues(id, obj)
	}
	return id, sdk.StatusSuccess
}

func (a *categoryAdapter) CreateEntry(entry sdk.EntryKey, attrs []sdk.Attribute) sdk.Status {
	h := a.hw
	h.mu.Lock()
	defer h.mu.Unlock()

	if st, ok := h.takeInjected(a.category, "create"); ok {
		return st
	}
	if a.category != sdk.CategoryRoute {
		return sdk.StatusInvalidParameter
	}
	if _, exists := h.entries[entry.String()]; exists {
		return sdk.StatusInvalidParameter
	}
	h.entries[entry.String()] = newObject(a.category, attrs)
	return sdk.StatusSuccess
}

func (a *categoryAdapter) Remove(key sdk.Key) sdk.Status {
	h := a.hw
	h.mu.Lock()
	defer h.mu.Unlock()

	if st, ok := h.takeInjected(a.category, "remove"); ok {
		return st
	}
	switch k := key.(type) {
	case sdk.ObjectID:
		obj, ok := h.objects[k]
		if !ok || obj.category != a.category {
			return sdk.StatusItemNotFound
		}
		for _, qid := range obj.queues {
			delete(h.objects, qid)
		}
		delete(h.objects, k)
	default:
		if _, ok := h.entries[key.String()]; !ok {
			return sdk.StatusItemNotFound
		}
		delete(h.entries, key.String())
	}
	return sdk.StatusSuccess
}

func (a *categoryAdapter) GetAttribute(key sdk.Key, attr *sdk.Attribute) sdk.Status {
	h := a.hw
	h.mu.Lock()
	defer h.mu.Unlock()

	if st, ok := h.takeInjected(a.category, "get"); ok {
		return st
	}
	obj := h.lookup(key)
	if obj == nil || obj.category != a.category {
		return sdk.StatusItemNotFound
	}

	stored, ok := obj.attrs[attr.ID]
	if !ok {
		// Unset attributes read as their default-constructed value,
		// as on hardware; absence is not distinguishable.
		stored = sdk.DefaultValue(attr.Value.Kind())
	}
	return marshalInto(attr, stored)
}

func (a *categoryAdapter) SetAttribute(key sdk.Key, attr sdk.Attribute) sdk.Status {
	h := a.hw
	h.mu.Lock()
	defer h.mu.Unlock()

	if st, ok := h.takeInjected(a.category, "set"); ok {
		return st
	}
	obj := h.lookup(key)
	if obj == nil || obj.category != a.category {
		return sdk.StatusItemNotFound
	}
	obj.attrs[attr.ID] = attr.Semantic()
	return sdk.StatusSuccess
}

func (a *categoryAdapter) GetStats(key sdk.Key, counters []sdk.CounterID, mode sdk.CounterMode, out []uint64) sdk.Status {
	h := a.hw
	h.mu.Lock()
	defer h.mu.Unlock()

	if st, ok := h.takeInjected(a.category, "stats"); ok {
		return st
	}
	if len(out) != len(counters) {
		return sdk.StatusInvalidParameter
	}
	obj := h.lookup(key)
	if obj == nil || obj.category != a.category {
		return sdk.StatusItemNotFound
	}
	for i, id := range counters {
		out[i] = obj.counters[id]
	}
	return sdk.StatusSuccess
}

// marshalInto writes a stored value into the caller's attribute
// payload. List payloads honour the count/capacity split: an
// undersized buffer gets the authoritative count and a buffer-overflow
// status.
func marshalInto(attr *sdk.Attribute, stored sdk.Value) sdk.Status {
	switch want := attr.Value.(type) {
	case *sdk.OIDList:
		have, ok := stored.(*sdk.OIDList)
		if !ok {
			return sdk.StatusInvalidParameter
		}
		want.Count = have.Count
		if have.Count > want.Capacity() {
			return sdk.StatusBufferOverflow
		}
		copy(want.Buf, have.Buf[:have.Count])
		return sdk.StatusSuccess
	case *sdk.U32List:
		have, ok := stored.(*sdk.U32List)
		if !ok {
			return sdk.StatusInvalidParameter
		}
		want.Count = have.Count
		if have.Count > want.Capacity() {
			return sdk.StatusBufferOverflow
		}
		copy(want.Buf, have.Buf[:have.Count])
		return sdk.StatusSuccess
	default:
		if stored.Kind() != attr.Value.Kind() {
			return sdk.StatusInvalidParameter
		}
		attr.Value = stored
		return sdk.StatusSuccess
	}
}
