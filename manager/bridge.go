package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ferrous-networks/asicman"
	"github.com/ferrous-networks/asicman/engine"
	"github.com/ferrous-networks/asicman/sdk"
	"github.com/ferrous-networks/asicman/store"
)

// BridgeManager owns bridge objects. The chip has one default 802.1Q
// bridge every port implicitly joins; additional 802.1D bridges can be
// created for isolation.
type BridgeManager struct {
	apis     *engine.Table
	registry *Registry
	store    store.Store
	logger   *slog.Logger

	mu        sync.Mutex
	bridges   map[sdk.ObjectID]int32
	defaultID sdk.ObjectID
}

func newBridgeManager(apis *engine.Table, registry *Registry, st store.Store, logger *slog.Logger) *BridgeManager {
	return &BridgeManager{
		apis:     apis,
		registry: registry,
		store:    st,
		logger:   logger.With("component", "bridge-manager"),
		bridges:  make(map[sdk.ObjectID]int32),
	}
}

// Default returns the default 802.1Q bridge, creating it on first use.
func (m *BridgeManager) Default(ctx context.Context) (sdk.ObjectID, error) {
	m.mu.Lock()
	id := m.defaultID
	m.mu.Unlock()
	if id != sdk.NullObjectID {
		return id, nil
	}

	id, err := m.create(ctx, sdk.BridgeType8021Q, 0)
	if err != nil {
		return sdk.NullObjectID, err
	}
	m.mu.Lock()
	m.defaultID = id
	m.mu.Unlock()
	return id, nil
}

// Create programs an 802.1D bridge.
func (m *BridgeManager) Create(ctx context.Context, maxLearnedAddresses uint32) (sdk.ObjectID, error) {
	return m.create(ctx, sdk.BridgeType8021D, maxLearnedAddresses)
}

func (m *BridgeManager) create(ctx context.Context, bridgeType int32, maxLearned uint32) (sdk.ObjectID, error) {
	attrs := []sdk.Attribute{
		{ID: sdk.BridgeAttrType, Value: sdk.S32(bridgeType)},
	}
	if maxLearned != 0 {
		attrs = append(attrs, sdk.Attribute{ID: sdk.BridgeAttrMaxLearnedAddresses, Value: sdk.U32(maxLearned)})
	}

	id, err := m.apis.Bridge.Create(m.apis.SwitchID(), attrs)
	if err != nil {
		return sdk.NullObjectID, err
	}

	if err := m.store.SaveObject(ctx, store.Record{
		Category:  sdk.CategoryBridge,
		Key:       store.EncodeOID(id),
		KeyKind:   "oid",
		SwitchID:  m.apis.SwitchID(),
		CreatedAt: time.Now(),
	}); err != nil {
		if rmErr := m.apis.Bridge.Remove(id); rmErr != nil {
			m.logger.Error("rollback remove failed", "key", id.String(), "error", rmErr)
		}
		return sdk.NullObjectID, fmt.Errorf("record bridge: %w", err)
	}

	m.mu.Lock()
	m.bridges[id] = bridgeType
	m.mu.Unlock()

	m.logger.Info("created bridge", "key", id.String(), "type", bridgeType)
	return id, nil
}

// Remove tears a bridge down.
func (m *BridgeManager) Remove(ctx context.Context, id sdk.ObjectID) error {
	m.mu.Lock()
	_, owned := m.bridges[id]
	m.mu.Unlock()
	if !owned {
		return asicman.ErrObjectNotOwned{Category: sdk.CategoryBridge, Key: id.String()}
	}

	if err := m.apis.Bridge.Remove(id); err != nil {
		return err
	}
	if err := m.store.DeleteObject(ctx, sdk.CategoryBridge, store.EncodeOID(id)); err != nil && err != store.ErrNotFound {
		return fmt.Errorf("unrecord bridge: %w", err)
	}

	m.mu.Lock()
	delete(m.bridges, id)
	if m.defaultID == id {
		m.defaultID = sdk.NullObjectID
	}
	m.mu.Unlock()
	return nil
}

// PortList reads the bridge's member ports. The list is read with a
// deliberately small initial buffer; the engine's overflow retry grows
// it to the hardware-reported size.
func (m *BridgeManager) PortList(id sdk.ObjectID) ([]sdk.ObjectID, error) {
	attr := &sdk.Attribute{ID: sdk.BridgeAttrPortList, Value: sdk.NewOIDList(1)}
	v, err := m.apis.Bridge.GetAttribute(id, attr)
	if err != nil {
		return nil, err
	}
	return v.(*sdk.OIDList).Values(), nil
}

// List returns the owned bridge handles.
func (m *BridgeManager) List() []sdk.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sdk.ObjectID, 0, len(m.bridges))
	for id := range m.bridges {
		out = append(out, id)
	}
	return out
}

// Reclaim repopulates ownership from the warm-boot store.
func (m *BridgeManager) Reclaim(ctx context.Context) error {
	records, err := m.store.ListObjects(ctx, sdk.CategoryBridge)
	if err != nil {
		return fmt.Errorf("list recorded bridges: %w", err)
	}
	for _, rec := range records {
		id, err := store.DecodeOID(rec.Key)
		if err != nil {
			return err
		}
		typeAttr := &sdk.Attribute{ID: sdk.BridgeAttrType, Value: sdk.S32(0)}
		v, err := m.apis.Bridge.GetAttribute(id, typeAttr)
		if err != nil {
			return fmt.Errorf("reload bridge %s: %w", id.String(), err)
		}
		bridgeType := int32(v.(sdk.S32))

		m.mu.Lock()
		m.bridges[id] = bridgeType
		if bridgeType == sdk.BridgeType8021Q && m.defaultID == sdk.NullObjectID {
			m.defaultID = id
		}
		m.mu.Unlock()
		m.logger.Debug("reclaimed bridge", "key", id.String())
	}
	return nil
}

// Close removes every owned bridge.
func (m *BridgeManager) Close(ctx context.Context) error {
	for _, id := range m.List() {
		if err := m.Remove(ctx, id); err != nil {
			return fmt.Errorf("remove bridge %s: %w", id.String(), err)
		}
	}
	return nil
}
