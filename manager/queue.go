package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ferrous-networks/asicman"
	"github.com/ferrous-networks/asicman/capability"
	"github.com/ferrous-networks/asicman/engine"
	"github.com/ferrous-networks/asicman/sdk"
	"github.com/ferrous-networks/asicman/store"
)

// QueueManager tracks the per-port queues the chip instantiates. Queues
// are not created by the agent: they come up with their port and are
// discovered through the port's queue-list attribute.
type QueueManager struct {
	apis     *engine.Table
	registry *Registry
	profile  *capability.Profile
	store    store.Store
	logger   *slog.Logger

	mu     sync.Mutex
	queues map[sdk.ObjectID]sdk.ObjectID // queue -> owning port
}

func newQueueManager(apis *engine.Table, registry *Registry, profile *capability.Profile, st store.Store, logger *slog.Logger) *QueueManager {
	return &QueueManager{
		apis:     apis,
		registry: registry,
		profile:  profile,
		store:    st,
		logger:   logger.With("component", "queue-manager"),
		queues:   make(map[sdk.ObjectID]sdk.ObjectID),
	}
}

// LoadPortQueues discovers the queues of a port for one stream type.
// The stream type must be supported for the port kind on this chip;
// requesting an unsupported combination is a configuration error, as is
// asking for a default count for the umbrella "all" type.
//
// The queue list is read with a buffer sized from the profile's default
// queue count; chips with more queues than the default trigger the
// engine's overflow regrow.
func (m *QueueManager) LoadPortQueues(ctx context.Context, portID sdk.ObjectID, cpu bool, streamType capability.StreamType) ([]sdk.ObjectID, error) {
	if !m.registry.PortsView().Owns(portID) {
		return nil, asicman.ErrObjectNotOwned{Category: sdk.CategoryPort, Key: portID.String()}
	}
	if !m.profile.SupportsStreamType(streamType, cpu) {
		kind := "front-panel"
		if cpu {
			kind = "cpu"
		}
		return nil, asicman.NewConfigurationError(
			"%s: stream type %s not supported on %s ports", m.profile.Family(), streamType, kind)
	}

	defaultCount, err := m.profile.DefaultQueueCount(streamType)
	if err != nil {
		return nil, err
	}
	capacity := max(defaultCount, 1)

	attr := &sdk.Attribute{ID: sdk.PortAttrQueueList, Value: sdk.NewOIDList(capacity)}
	v, err := m.apis.Port.GetAttribute(portID, attr)
	if err != nil {
		return nil, err
	}
	ids := v.(*sdk.OIDList).Values()

	m.mu.Lock()
	for _, qid := range ids {
		m.queues[qid] = portID
	}
	m.mu.Unlock()

	m.logger.Debug("loaded port queues", "port", portID.String(), "count", len(ids))
	return ids, nil
}

// State reads one queue's type and index.
func (m *QueueManager) State(qid sdk.ObjectID) (queueType int32, index uint8, err error) {
	typeAttr := &sdk.Attribute{ID: sdk.QueueAttrType, Value: sdk.S32(0)}
	indexAttr := &sdk.Attribute{ID: sdk.QueueAttrIndex, Value: sdk.U8(0)}

	res, err := m.apis.Queue.Get(qid, engine.Group{Nodes: []engine.Node{
		engine.Scalar{Attr: typeAttr},
		engine.Scalar{Attr: indexAttr},
	}})
	if err != nil {
		return 0, 0, err
	}
	group := res.(engine.GroupResult)
	queueType = int32(group.Elems[0].(engine.ScalarResult).Value.(sdk.S32))
	index = uint8(group.Elems[1].(engine.ScalarResult).Value.(sdk.U8))
	return queueType, index, nil
}

// SetScheduler attaches a scheduler profile to a queue.
func (m *QueueManager) SetScheduler(qid, schedulerID sdk.ObjectID) error {
	m.mu.Lock()
	_, known := m.queues[qid]
	m.mu.Unlock()
	if !known {
		return asicman.ErrObjectNotOwned{Category: sdk.CategoryQueue, Key: qid.String()}
	}
	return m.apis.Queue.SetAttribute(qid, sdk.Attribute{ID: sdk.QueueAttrSchedulerProfile, Value: sdk.OID(schedulerID)})
}

// Stats reads a queue's default counter set. Queue counters use the
// descriptor's point-in-time mode; watermarks are instantaneous.
func (m *QueueManager) Stats(qid sdk.ObjectID) ([]uint64, error) {
	return m.apis.Queue.Stats(qid)
}

// PortOf returns the port a discovered queue belongs to.
func (m *QueueManager) PortOf(qid sdk.ObjectID) (sdk.ObjectID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	port, ok := m.queues[qid]
	return port, ok
}

// Reclaim rebuilds the queue map by re-discovering queues on every
// reclaimed port. Queue handles are chip-owned, so nothing is read from
// the store directly.
func (m *QueueManager) Reclaim(ctx context.Context) error {
	for _, portID := range m.registry.PortsView().List() {
		streamTypes := m.profile.QueueStreamTypes(false)
		for _, st := range streamTypes {
			if _, err := m.LoadPortQueues(ctx, portID, false, st); err != nil {
				return fmt.Errorf("rediscover queues on %s: %w", portID.String(), err)
			}
		}
	}
	return nil
}

// Close drops queue tracking. Queues are chip-owned and removed with
// their port, so there is nothing to program.
func (m *QueueManager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.queues = make(map[sdk.ObjectID]sdk.ObjectID)
	m.mu.Unlock()
	return nil
}
