package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ferrous-networks/asicman"
	"github.com/ferrous-networks/asicman/capability"
	"github.com/ferrous-networks/asicman/engine"
	"github.com/ferrous-networks/asicman/sdk"
	"github.com/ferrous-networks/asicman/store"
)

// PortConfig describes the desired state of a front-panel port at
// creation.
type PortConfig struct {
	// Lanes are the serdes lanes the port is built from.
	Lanes []uint32
	// Speed in Mbps. Clamped against the chip's maximum.
	Speed capability.PortSpeed
	// MTU in bytes. Zero means the chip default.
	MTU uint32
	// AdminUp brings the port up administratively.
	AdminUp bool
	// Loopback loops the port at the chip's preferred loopback point.
	Loopback bool
}

// PortState is the full attribute state of a port, reloaded in one
// recursive read.
type PortState struct {
	AdminUp  bool
	Speed    capability.PortSpeed
	Lanes    []uint32
	MTU      uint32
	FECMode  int32
	NumQueue uint32
}

// PortManager owns every port this agent has created.
type PortManager struct {
	apis     *engine.Table
	registry *Registry
	profile  *capability.Profile
	store    store.Store
	logger   *slog.Logger

	mu    sync.Mutex
	ports map[sdk.ObjectID]PortConfig
}

func newPortManager(apis *engine.Table, registry *Registry, profile *capability.Profile, st store.Store, logger *slog.Logger) *PortManager {
	return &PortManager{
		apis:     apis,
		registry: registry,
		profile:  profile,
		store:    st,
		logger:   logger.With("component", "port-manager"),
		ports:    make(map[sdk.ObjectID]PortConfig),
	}
}

// Create programs a port and returns its handle. The speed request is
// validated against the capability profile rather than chip identity;
// loopback, when requested, uses the profile's preferred mode.
func (m *PortManager) Create(ctx context.Context, cfg PortConfig) (sdk.ObjectID, error) {
	if len(cfg.Lanes) == 0 {
		return sdk.NullObjectID, asicman.NewConfigurationError("port: no serdes lanes given")
	}
	if cfg.Speed > m.profile.MaxPortSpeed() {
		return sdk.NullObjectID, asicman.NewConfigurationError(
			"port: speed %d Mbps exceeds %s maximum %d Mbps",
			cfg.Speed, m.profile.Family(), m.profile.MaxPortSpeed())
	}

	// Ports join the default bridge; make sure it exists first.
	if _, err := m.registry.Bridges().Default(ctx); err != nil {
		return sdk.NullObjectID, fmt.Errorf("ensure default bridge: %w", err)
	}

	lanes := &sdk.U32List{Count: len(cfg.Lanes), Buf: append([]uint32(nil), cfg.Lanes...)}
	attrs := []sdk.Attribute{
		{ID: sdk.PortAttrHWLaneList, Value: lanes},
		{ID: sdk.PortAttrSpeed, Value: sdk.U32(cfg.Speed)},
		{ID: sdk.PortAttrAdminState, Value: sdk.Bool(cfg.AdminUp)},
	}
	if cfg.MTU != 0 {
		attrs = append(attrs, sdk.Attribute{ID: sdk.PortAttrMTU, Value: sdk.U32(cfg.MTU)})
	}
	if cfg.Loopback {
		attrs = append(attrs, sdk.Attribute{
			ID:    sdk.PortAttrLoopbackMode,
			Value: sdk.S32(m.profile.PreferredLoopbackMode()),
		})
	}

	id, err := m.apis.Port.Create(m.apis.SwitchID(), attrs)
	if err != nil {
		return sdk.NullObjectID, err
	}

	if err := m.store.SaveObject(ctx, store.Record{
		Category:  sdk.CategoryPort,
		Key:       store.EncodeOID(id),
		KeyKind:   "oid",
		SwitchID:  m.apis.SwitchID(),
		CreatedAt: time.Now(),
	}); err != nil {
		// The port exists in hardware but could not be recorded; back
		// it out so nothing is left behind for a future warm boot to
		// misinterpret.
		if rmErr := m.apis.Port.Remove(id); rmErr != nil {
			m.logger.Error("rollback remove failed", "key", id.String(), "error", rmErr)
		}
		return sdk.NullObjectID, fmt.Errorf("record port: %w", err)
	}

	m.mu.Lock()
	m.ports[id] = cfg
	m.mu.Unlock()

	m.logger.Info("created port", "key", id.String(), "speed_mbps", uint32(cfg.Speed), "lanes", len(cfg.Lanes))
	return id, nil
}

// Remove tears a port down. Only keys this manager created are
// accepted.
func (m *PortManager) Remove(ctx context.Context, id sdk.ObjectID) error {
	m.mu.Lock()
	_, owned := m.ports[id]
	m.mu.Unlock()
	if !owned {
		return asicman.ErrObjectNotOwned{Category: sdk.CategoryPort, Key: id.String()}
	}

	if err := m.apis.Port.Remove(id); err != nil {
		return err
	}
	if err := m.store.DeleteObject(ctx, sdk.CategoryPort, store.EncodeOID(id)); err != nil && err != store.ErrNotFound {
		return fmt.Errorf("unrecord port: %w", err)
	}

	m.mu.Lock()
	delete(m.ports, id)
	m.mu.Unlock()
	return nil
}

// SetAdminState flips the port's administrative state.
func (m *PortManager) SetAdminState(id sdk.ObjectID, up bool) error {
	if !m.Owns(id) {
		return asicman.ErrObjectNotOwned{Category: sdk.CategoryPort, Key: id.String()}
	}
	return m.apis.Port.SetAttribute(id, sdk.Attribute{ID: sdk.PortAttrAdminState, Value: sdk.Bool(up)})
}

// LoadState reloads a port's full attribute state in one recursive
// read. Used during warm-boot reconciliation. FEC mode is optional on
// older chips; an unset value reads back as the default.
func (m *PortManager) LoadState(id sdk.ObjectID) (PortState, error) {
	adminAttr := &sdk.Attribute{ID: sdk.PortAttrAdminState, Value: sdk.Bool(false)}
	speedAttr := &sdk.Attribute{ID: sdk.PortAttrSpeed, Value: sdk.U32(0)}
	lanesAttr := &sdk.Attribute{ID: sdk.PortAttrHWLaneList, Value: sdk.NewU32List(1)}
	mtuAttr := &sdk.Attribute{ID: sdk.PortAttrMTU, Value: sdk.U32(0)}
	numQAttr := &sdk.Attribute{ID: sdk.PortAttrNumQueues, Value: sdk.U32(0)}

	res, err := m.apis.Port.Get(id, engine.Group{Nodes: []engine.Node{
		engine.Scalar{Attr: adminAttr},
		engine.Scalar{Attr: speedAttr},
		engine.Scalar{Attr: lanesAttr},
		engine.Scalar{Attr: mtuAttr},
		engine.Optional{ID: sdk.PortAttrFECMode, Kind: sdk.KindS32},
		engine.Scalar{Attr: numQAttr},
	}})
	if err != nil {
		return PortState{}, err
	}

	group := res.(engine.GroupResult)
	st := PortState{
		AdminUp:  bool(group.Elems[0].(engine.ScalarResult).Value.(sdk.Bool)),
		Speed:    capability.PortSpeed(group.Elems[1].(engine.ScalarResult).Value.(sdk.U32)),
		Lanes:    group.Elems[2].(engine.ScalarResult).Value.(*sdk.U32List).Values(),
		MTU:      uint32(group.Elems[3].(engine.ScalarResult).Value.(sdk.U32)),
		FECMode:  int32(group.Elems[4].(engine.OptionalResult).Value.(sdk.S32)),
		NumQueue: uint32(group.Elems[5].(engine.ScalarResult).Value.(sdk.U32)),
	}
	return st, nil
}

// Stats reads the port's default counter set.
func (m *PortManager) Stats(id sdk.ObjectID) ([]uint64, error) {
	return m.apis.Port.Stats(id)
}

// Owns reports whether this manager created the key.
func (m *PortManager) Owns(id sdk.ObjectID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ports[id]
	return ok
}

// List returns the owned port handles.
func (m *PortManager) List() []sdk.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sdk.ObjectID, 0, len(m.ports))
	for id := range m.ports {
		out = append(out, id)
	}
	return out
}

// Reclaim repopulates ownership from the warm-boot store and verifies
// each port still answers on hardware.
func (m *PortManager) Reclaim(ctx context.Context) error {
	records, err := m.store.ListObjects(ctx, sdk.CategoryPort)
	if err != nil {
		return fmt.Errorf("list recorded ports: %w", err)
	}
	for _, rec := range records {
		id, err := store.DecodeOID(rec.Key)
		if err != nil {
			return err
		}
		state, err := m.LoadState(id)
		if err != nil {
			return fmt.Errorf("reload port %s: %w", id.String(), err)
		}
		m.mu.Lock()
		m.ports[id] = PortConfig{
			Lanes:   state.Lanes,
			Speed:   state.Speed,
			MTU:     state.MTU,
			AdminUp: state.AdminUp,
		}
		m.mu.Unlock()
		m.logger.Debug("reclaimed port", "key", id.String())
	}
	return nil
}

// Close removes every owned port.
func (m *PortManager) Close(ctx context.Context) error {
	for _, id := range m.List() {
		if err := m.Remove(ctx, id); err != nil {
			return fmt.Errorf("remove port %s: %w", id.String(), err)
		}
	}
	return nil
}
