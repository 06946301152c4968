package manager_test

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferrous-networks/asicman"
	"github.com/ferrous-networks/asicman/capability"
	"github.com/ferrous-networks/asicman/engine"
	"github.com/ferrous-networks/asicman/hwlock"
	"github.com/ferrous-networks/asicman/manager"
	"github.com/ferrous-networks/asicman/sdk"
	"github.com/ferrous-networks/asicman/sim"
	"github.com/ferrous-networks/asicman/store"
	"github.com/ferrous-networks/asicman/store/sqlite"
)

type fixture struct {
	hw       *sim.Hardware
	store    store.Store
	registry *manager.Registry
}

func newFixture(t *testing.T, family capability.ChipFamily) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewInMemory(ctx, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	hw := sim.New(nil)
	apis := engine.NewTable(hw, hwlock.New(), nil)
	return &fixture{
		hw:       hw,
		store:    st,
		registry: manager.NewRegistry(apis, capability.ProfileFor(family), st, nil),
	}
}

// newRegistry builds a second registry over the same hardware and
// store, as after an agent restart.
func (f *fixture) newRegistry(family capability.ChipFamily) *manager.Registry {
	apis := engine.NewTable(f.hw, hwlock.New(), nil)
	return manager.NewRegistry(apis, capability.ProfileFor(family), f.store, nil)
}

func mustCreatePort(t *testing.T, f *fixture, cfg manager.PortConfig) sdk.ObjectID {
	t.Helper()
	id, err := f.registry.Ports().Create(context.Background(), cfg)
	require.NoError(t, err)
	return id
}

func TestPortLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)

	id := mustCreatePort(t, f, manager.PortConfig{
		Lanes:   []uint32{1, 2, 3, 4},
		Speed:   capability.Speed100G,
		MTU:     9412,
		AdminUp: true,
	})
	assert.True(t, f.registry.Ports().Owns(id))
	assert.Equal(t, []sdk.ObjectID{id}, f.registry.Ports().List())

	// Creating the port must have brought up the default bridge.
	require.Len(t, f.registry.Bridges().List(), 1)

	state, err := f.registry.Ports().LoadState(id)
	require.NoError(t, err)
	assert.True(t, state.AdminUp)
	assert.Equal(t, capability.Speed100G, state.Speed)
	assert.Equal(t, []uint32{1, 2, 3, 4}, state.Lanes)
	assert.Equal(t, uint32(9412), state.MTU)
	assert.Equal(t, uint32(8), state.NumQueue)

	require.NoError(t, f.registry.Ports().Remove(ctx, id))
	assert.False(t, f.registry.Ports().Owns(id))
}

func TestPortCreateValidatesAgainstProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTrident2)

	// Trident2 tops out at 40G.
	_, err := f.registry.Ports().Create(ctx, manager.PortConfig{
		Lanes: []uint32{1},
		Speed: capability.Speed100G,
	})
	var cfgErr asicman.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))

	_, err = f.registry.Ports().Create(ctx, manager.PortConfig{Speed: capability.Speed10G})
	require.True(t, errors.As(err, &cfgErr))
}

func TestPortSetAdminState(t *testing.T) {
	f := newFixture(t, capability.ChipTomahawk)
	id := mustCreatePort(t, f, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed25G})

	require.NoError(t, f.registry.Ports().SetAdminState(id, true))
	state, err := f.registry.Ports().LoadState(id)
	require.NoError(t, err)
	assert.True(t, state.AdminUp)

	require.NoError(t, f.registry.Ports().SetAdminState(id, false))
	state, err = f.registry.Ports().LoadState(id)
	require.NoError(t, err)
	assert.False(t, state.AdminUp)
}

func TestPortRemoveRejectsForeignKey(t *testing.T) {
	f := newFixture(t, capability.ChipTomahawk)

	err := f.registry.Ports().Remove(context.Background(), sdk.ObjectID(0xdead))
	var notOwned asicman.ErrObjectNotOwned
	require.True(t, errors.As(err, &notOwned))
	assert.Equal(t, sdk.CategoryPort, notOwned.Category)
}

func TestPortCreateHardwareFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)

	f.hw.FailNext(sdk.CategoryPort, "create", sdk.StatusInsufficientResources)
	_, err := f.registry.Ports().Create(ctx, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed25G})

	var hwErr asicman.HardwareCallError
	require.True(t, errors.As(err, &hwErr))
	assert.Equal(t, sdk.StatusInsufficientResources, hwErr.Status)
	assert.Empty(t, f.registry.Ports().List())
}

// saveFailStore injects SaveObject failures to exercise the hardware
// rollback path.
type saveFailStore struct {
	store.Store
	failSaves int
}

func (s *saveFailStore) SaveObject(ctx context.Context, r store.Record) error {
	if s.failSaves > 0 {
		s.failSaves--
		return errors.New("disk full")
	}
	return s.Store.SaveObject(ctx, r)
}

func TestPortCreateRollsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()

	st, err := sqlite.NewInMemory(ctx, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	hw := sim.New(nil)
	apis := engine.NewTable(hw, hwlock.New(), nil)
	failing := &saveFailStore{Store: st}
	reg := manager.NewRegistry(apis, capability.ProfileFor(capability.ChipTomahawk), failing, nil)

	// Let the default bridge record land, fail the port record.
	_, err = reg.Bridges().Default(ctx)
	require.NoError(t, err)
	failing.failSaves = 1

	_, err = reg.Ports().Create(ctx, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed25G})
	require.Error(t, err)
	assert.Empty(t, reg.Ports().List())

	records, err := st.ListObjects(ctx, sdk.CategoryPort)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBridgePortList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)

	bridgeID, err := f.registry.Bridges().Default(ctx)
	require.NoError(t, err)

	p1 := mustCreatePort(t, f, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed25G})
	p2 := mustCreatePort(t, f, manager.PortConfig{Lanes: []uint32{2}, Speed: capability.Speed25G})

	require.NoError(t, f.hw.SetListAttribute(bridgeID, sdk.BridgeAttrPortList,
		&sdk.OIDList{Count: 2, Buf: []sdk.ObjectID{p1, p2}}))

	members, err := f.registry.Bridges().PortList(bridgeID)
	require.NoError(t, err)
	assert.Equal(t, []sdk.ObjectID{p1, p2}, members)
}

func TestBridgeDefaultIsCreatedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)

	first, err := f.registry.Bridges().Default(ctx)
	require.NoError(t, err)
	second, err := f.registry.Bridges().Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, f.registry.Bridges().List(), 1)
}

func TestQueueDiscovery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)
	portID := mustCreatePort(t, f, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed100G})

	queues, err := f.registry.Queues().LoadPortQueues(ctx, portID, false, capability.StreamTypeUnicast)
	require.NoError(t, err)
	require.Len(t, queues, 8)

	for i, qid := range queues {
		owner, ok := f.registry.Queues().PortOf(qid)
		require.True(t, ok)
		assert.Equal(t, portID, owner)

		queueType, index, err := f.registry.Queues().State(qid)
		require.NoError(t, err)
		assert.Equal(t, sdk.QueueTypeUnicast, queueType)
		assert.Equal(t, uint8(i), index)
	}
}

// Trident2 reports a default queue count of zero, so discovery starts
// with a single-element buffer and relies on the overflow regrow to
// fetch all eight queues.
func TestQueueDiscoveryGrowsUndersizedBuffer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTrident2)
	portID := mustCreatePort(t, f, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed40G})

	queues, err := f.registry.Queues().LoadPortQueues(ctx, portID, false, capability.StreamTypeUnicast)
	require.NoError(t, err)
	assert.Len(t, queues, 8)
}

func TestQueueDiscoveryRejectsUnsupportedStreamType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)
	portID := mustCreatePort(t, f, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed100G})

	var cfgErr asicman.ConfigurationError

	// Multicast queues exist on CPU ports only.
	_, err := f.registry.Queues().LoadPortQueues(ctx, portID, false, capability.StreamTypeMulticast)
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Error(), "front-panel")

	// The umbrella stream type has no default queue count anywhere.
	_, err = f.registry.Queues().LoadPortQueues(ctx, portID, false, capability.StreamTypeAll)
	require.Error(t, err)
}

func TestQueueDiscoveryRejectsForeignPort(t *testing.T) {
	f := newFixture(t, capability.ChipTomahawk)

	_, err := f.registry.Queues().LoadPortQueues(context.Background(), sdk.ObjectID(0xdead), false, capability.StreamTypeUnicast)
	var notOwned asicman.ErrObjectNotOwned
	require.True(t, errors.As(err, &notOwned))
}

func TestQueueSchedulerAndStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)
	portID := mustCreatePort(t, f, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed100G})

	queues, err := f.registry.Queues().LoadPortQueues(ctx, portID, false, capability.StreamTypeUnicast)
	require.NoError(t, err)
	qid := queues[0]

	require.NoError(t, f.registry.Queues().SetScheduler(qid, sdk.ObjectID(0x999)))
	require.Error(t, f.registry.Queues().SetScheduler(sdk.ObjectID(0xdead), sdk.ObjectID(0x999)))

	require.NoError(t, f.hw.BumpCounter(qid, sdk.QueueCounterDroppedPackets, 7))
	stats, err := f.registry.Queues().Stats(qid)
	require.NoError(t, err)
	require.Len(t, stats, len(engine.QueueDescriptor.DefaultCounters))
	assert.Equal(t, uint64(7), stats[2])
}

func TestRouteLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)
	portID := mustCreatePort(t, f, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed100G})

	vr := sdk.ObjectID(0x42)
	prefix := netip.MustParsePrefix("10.1.0.0/16")

	require.NoError(t, f.registry.Routes().Add(ctx, vr, prefix, portID))
	require.Len(t, f.registry.Routes().List(), 1)

	action, nextHop, err := f.registry.Routes().NextHop(vr, prefix)
	require.NoError(t, err)
	assert.Equal(t, sdk.PacketActionForward, action)
	assert.Equal(t, portID, nextHop)

	require.NoError(t, f.registry.Routes().Remove(ctx, vr, prefix))
	assert.Empty(t, f.registry.Routes().List())

	err = f.registry.Routes().Remove(ctx, vr, prefix)
	var notOwned asicman.ErrObjectNotOwned
	require.True(t, errors.As(err, &notOwned))
}

func TestRouteDropHasNoNextHop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)

	vr := sdk.ObjectID(0x42)
	prefix := netip.MustParsePrefix("192.0.2.0/24")
	require.NoError(t, f.registry.Routes().AddDrop(ctx, vr, prefix))

	action, nextHop, err := f.registry.Routes().NextHop(vr, prefix)
	require.NoError(t, err)
	assert.Equal(t, sdk.PacketActionDrop, action)
	assert.Equal(t, sdk.NullObjectID, nextHop)
}

func TestRouteRejectsForeignNextHop(t *testing.T) {
	f := newFixture(t, capability.ChipTomahawk)

	err := f.registry.Routes().Add(context.Background(), sdk.ObjectID(0x42),
		netip.MustParsePrefix("10.0.0.0/8"), sdk.ObjectID(0xdead))
	var notOwned asicman.ErrObjectNotOwned
	require.True(t, errors.As(err, &notOwned))
	assert.Equal(t, sdk.CategoryPort, notOwned.Category)
}

func TestPortStats(t *testing.T) {
	f := newFixture(t, capability.ChipTomahawk)
	portID := mustCreatePort(t, f, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed100G})

	require.NoError(t, f.hw.BumpCounter(portID, sdk.PortCounterInOctets, 1500))
	require.NoError(t, f.hw.BumpCounter(portID, sdk.PortCounterInPackets, 1))

	stats, err := f.registry.Ports().Stats(portID)
	require.NoError(t, err)
	require.Len(t, stats, len(engine.PortDescriptor.DefaultCounters))
	assert.Equal(t, uint64(1500), stats[0])
	assert.Equal(t, uint64(1), stats[2])
}

func TestWarmBootReclaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)

	portID := mustCreatePort(t, f, manager.PortConfig{
		Lanes:   []uint32{1, 2},
		Speed:   capability.Speed50G,
		AdminUp: true,
	})
	vr := sdk.ObjectID(0x42)
	prefix := netip.MustParsePrefix("10.1.0.0/16")
	require.NoError(t, f.registry.Routes().Add(ctx, vr, prefix, portID))

	// A second registry over the same hardware and store stands in for
	// a restarted agent.
	reborn := f.newRegistry(capability.ChipTomahawk)
	require.NoError(t, reborn.Reclaim(ctx))

	assert.True(t, reborn.Ports().Owns(portID))
	assert.Len(t, reborn.Bridges().List(), 1)
	require.Len(t, reborn.Routes().List(), 1)
	assert.Equal(t, prefix, reborn.Routes().List()[0].Prefix)

	// Queues were rediscovered from the reclaimed port.
	queues, err := reborn.Queues().LoadPortQueues(ctx, portID, false, capability.StreamTypeUnicast)
	require.NoError(t, err)
	assert.Len(t, queues, 8)

	// Reclaimed ownership is real ownership: the reborn registry can
	// mutate and remove.
	require.NoError(t, reborn.Routes().Remove(ctx, vr, prefix))
	require.NoError(t, reborn.Ports().Remove(ctx, portID))
}

func TestRegistryCloseRemovesEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, capability.ChipTomahawk)

	portID := mustCreatePort(t, f, manager.PortConfig{Lanes: []uint32{1}, Speed: capability.Speed100G})
	require.NoError(t, f.registry.Routes().Add(ctx, sdk.ObjectID(0x42),
		netip.MustParsePrefix("10.0.0.0/8"), portID))
	_, err := f.registry.Queues().LoadPortQueues(ctx, portID, false, capability.StreamTypeUnicast)
	require.NoError(t, err)

	require.NoError(t, f.registry.Close(ctx))

	assert.Empty(t, f.registry.Ports().List())
	assert.Empty(t, f.registry.Bridges().List())
	assert.Empty(t, f.registry.Routes().List())

	for _, cat := range []sdk.ObjectCategory{sdk.CategoryPort, sdk.CategoryBridge, sdk.CategoryRoute} {
		records, err := f.store.ListObjects(ctx, cat)
		require.NoError(t, err)
		assert.Empty(t, records, "category %s", cat)
	}
}
