package manager

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ferrous-networks/asicman"
	"github.com/ferrous-networks/asicman/engine"
	"github.com/ferrous-networks/asicman/sdk"
	"github.com/ferrous-networks/asicman/store"
)

// RouteManager owns route entries. Routes are the supplied-key
// category: the agent addresses them by (switch, virtual router,
// prefix) and creation returns nothing.
type RouteManager struct {
	apis     *engine.Table
	registry *Registry
	store    store.Store
	logger   *slog.Logger

	mu     sync.Mutex
	routes map[string]sdk.RouteEntry
}

func newRouteManager(apis *engine.Table, registry *Registry, st store.Store, logger *slog.Logger) *RouteManager {
	return &RouteManager{
		apis:     apis,
		registry: registry,
		store:    st,
		logger:   logger.With("component", "route-manager"),
		routes:   make(map[string]sdk.RouteEntry),
	}
}

// Add programs a forwarding route. The next hop must be a port this
// agent owns; the check goes through the registry back-reference, not
// through this manager's own state.
func (m *RouteManager) Add(ctx context.Context, vr sdk.ObjectID, prefix netip.Prefix, nextHopPort sdk.ObjectID) error {
	if !m.registry.PortsView().Owns(nextHopPort) {
		return asicman.ErrObjectNotOwned{Category: sdk.CategoryPort, Key: nextHopPort.String()}
	}

	entry := sdk.RouteEntry{
		SwitchID:      m.apis.SwitchID(),
		VirtualRouter: vr,
		Prefix:        prefix,
	}
	attrs := []sdk.Attribute{
		{ID: sdk.RouteAttrPacketAction, Value: sdk.S32(sdk.PacketActionForward)},
		{ID: sdk.RouteAttrNextHopID, Value: sdk.OID(nextHopPort)},
	}
	return m.add(ctx, entry, attrs)
}

// AddDrop programs a null route for the prefix.
func (m *RouteManager) AddDrop(ctx context.Context, vr sdk.ObjectID, prefix netip.Prefix) error {
	entry := sdk.RouteEntry{
		SwitchID:      m.apis.SwitchID(),
		VirtualRouter: vr,
		Prefix:        prefix,
	}
	attrs := []sdk.Attribute{
		{ID: sdk.RouteAttrPacketAction, Value: sdk.S32(sdk.PacketActionDrop)},
	}
	return m.add(ctx, entry, attrs)
}

func (m *RouteManager) add(ctx context.Context, entry sdk.RouteEntry, attrs []sdk.Attribute) error {
	if err := m.apis.Route.CreateEntry(entry, attrs); err != nil {
		return err
	}

	key := encodeRouteKey(entry)
	if err := m.store.SaveObject(ctx, store.Record{
		Category:  sdk.CategoryRoute,
		Key:       key,
		KeyKind:   "entry",
		SwitchID:  entry.SwitchID,
		CreatedAt: time.Now(),
	}); err != nil {
		if rmErr := m.apis.Route.Remove(entry); rmErr != nil {
			m.logger.Error("rollback remove failed", "key", entry.String(), "error", rmErr)
		}
		return fmt.Errorf("record route: %w", err)
	}

	m.mu.Lock()
	m.routes[key] = entry
	m.mu.Unlock()

	m.logger.Info("added route", "key", entry.String())
	return nil
}

// Remove withdraws a route.
func (m *RouteManager) Remove(ctx context.Context, vr sdk.ObjectID, prefix netip.Prefix) error {
	entry := sdk.RouteEntry{
		SwitchID:      m.apis.SwitchID(),
		VirtualRouter: vr,
		Prefix:        prefix,
	}
	key := encodeRouteKey(entry)

	m.mu.Lock()
	_, owned := m.routes[key]
	m.mu.Unlock()
	if !owned {
		return asicman.ErrObjectNotOwned{Category: sdk.CategoryRoute, Key: entry.String()}
	}

	if err := m.apis.Route.Remove(entry); err != nil {
		return err
	}
	if err := m.store.DeleteObject(ctx, sdk.CategoryRoute, key); err != nil && err != store.ErrNotFound {
		return fmt.Errorf("unrecord route: %w", err)
	}

	m.mu.Lock()
	delete(m.routes, key)
	m.mu.Unlock()

	m.logger.Info("removed route", "key", entry.String())
	return nil
}

// NextHop reads a route's packet action and next hop in one recursive
// read.
func (m *RouteManager) NextHop(vr sdk.ObjectID, prefix netip.Prefix) (action int32, nextHop sdk.ObjectID, err error) {
	entry := sdk.RouteEntry{
		SwitchID:      m.apis.SwitchID(),
		VirtualRouter: vr,
		Prefix:        prefix,
	}

	actionAttr := &sdk.Attribute{ID: sdk.RouteAttrPacketAction, Value: sdk.S32(0)}
	res, err := m.apis.Route.Get(entry, engine.Group{Nodes: []engine.Node{
		engine.Scalar{Attr: actionAttr},
		engine.Optional{ID: sdk.RouteAttrNextHopID, Kind: sdk.KindOID},
	}})
	if err != nil {
		return 0, sdk.NullObjectID, err
	}
	group := res.(engine.GroupResult)
	action = int32(group.Elems[0].(engine.ScalarResult).Value.(sdk.S32))
	nextHop = sdk.ObjectID(group.Elems[1].(engine.OptionalResult).Value.(sdk.OID))
	return action, nextHop, nil
}

// List returns the owned route entries.
func (m *RouteManager) List() []sdk.RouteEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sdk.RouteEntry, 0, len(m.routes))
	for _, e := range m.routes {
		out = append(out, e)
	}
	return out
}

// Reclaim repopulates route ownership from the warm-boot store.
func (m *RouteManager) Reclaim(ctx context.Context) error {
	records, err := m.store.ListObjects(ctx, sdk.CategoryRoute)
	if err != nil {
		return fmt.Errorf("list recorded routes: %w", err)
	}
	for _, rec := range records {
		entry, err := decodeRouteKey(rec.Key)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.routes[rec.Key] = entry
		m.mu.Unlock()
		m.logger.Debug("reclaimed route", "key", entry.String())
	}
	return nil
}

// Close withdraws every owned route.
func (m *RouteManager) Close(ctx context.Context) error {
	for _, entry := range m.List() {
		if err := m.Remove(ctx, entry.VirtualRouter, entry.Prefix); err != nil {
			return fmt.Errorf("remove route %s: %w", entry.String(), err)
		}
	}
	return nil
}

// encodeRouteKey renders a route entry as the store key. The format is
// parseable so warm boot can rebuild the entry.
func encodeRouteKey(e sdk.RouteEntry) string {
	return fmt.Sprintf("%x|%x|%s", uint64(e.SwitchID), uint64(e.VirtualRouter), e.Prefix)
}

func decodeRouteKey(s string) (sdk.RouteEntry, error) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 {
		return sdk.RouteEntry{}, fmt.Errorf("malformed route key %q", s)
	}
	switchID, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return sdk.RouteEntry{}, fmt.Errorf("malformed route key %q: %w", s, err)
	}
	vr, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return sdk.RouteEntry{}, fmt.Errorf("malformed route key %q: %w", s, err)
	}
	prefix, err := netip.ParsePrefix(parts[2])
	if err != nil {
		return sdk.RouteEntry{}, fmt.Errorf("malformed route key %q: %w", s, err)
	}
	return sdk.RouteEntry{
		SwitchID:      sdk.ObjectID(switchID),
		VirtualRouter: sdk.ObjectID(vr),
		Prefix:        prefix,
	}, nil
}
