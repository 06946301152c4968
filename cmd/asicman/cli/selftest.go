package cli

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ferrous-networks/asicman/capability"
	"github.com/ferrous-networks/asicman/engine"
	"github.com/ferrous-networks/asicman/hwlock"
	"github.com/ferrous-networks/asicman/manager"
	"github.com/ferrous-networks/asicman/sdk"
	"github.com/ferrous-networks/asicman/sim"
	"github.com/ferrous-networks/asicman/store"
	"github.com/ferrous-networks/asicman/store/sqlite"
)

// SelftestCmd brings up the full agent stack against a simulated ASIC:
// session lock, warm-boot store, engines, managers. It programs ports
// and routes, restarts the manager layer to exercise reclaim, and
// tears everything down. No hardware is touched.
type SelftestCmd struct {
	Ports int `name:"ports" help:"Number of ports to program." default:"4"`
}

// Run executes the selftest command.
func (c *SelftestCmd) Run(cli *CLI) error {
	ctx := context.Background()

	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	family, err := cfg.ChipFamily()
	if err != nil {
		return err
	}
	logger, err := cli.Logger()
	if err != nil {
		return err
	}

	// The selftest never shares state with a running agent: it uses a
	// private session lock and an in-memory store.
	workDir, err := os.MkdirTemp("", "asicman-selftest-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	guard, err := hwlock.AcquireSession(ctx, filepath.Join(workDir, "hw.lock"))
	if err != nil {
		return fmt.Errorf("acquire session lock: %w", err)
	}
	defer guard.Close()

	st, err := sqlite.NewInMemory(ctx, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	hw := sim.New(logger)
	if err := st.BeginSession(ctx, store.Session{
		UUID:      uuid.New(),
		Chip:      family.String(),
		SwitchID:  hw.SwitchID(),
		StartedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("begin session: %w", err)
	}

	profile := capability.ProfileFor(family)
	lock := hwlock.New()
	registry := manager.NewRegistry(engine.NewTable(hw, lock, logger), profile, st, logger)

	fmt.Printf("selftest: chip %s, %d ports\n", family, c.Ports)

	var ports []sdk.ObjectID
	for i := 0; i < c.Ports; i++ {
		id, err := registry.Ports().Create(ctx, manager.PortConfig{
			Lanes:   []uint32{uint32(i * 4), uint32(i*4 + 1), uint32(i*4 + 2), uint32(i*4 + 3)},
			Speed:   profile.MaxPortSpeed(),
			AdminUp: true,
		})
		if err != nil {
			return fmt.Errorf("create port %d: %w", i, err)
		}
		ports = append(ports, id)

		queues, err := registry.Queues().LoadPortQueues(ctx, id, false, capability.StreamTypeUnicast)
		if err != nil {
			return fmt.Errorf("discover queues on %s: %w", id, err)
		}
		fmt.Printf("  port %s: %d Mbps, %d queues\n", id, uint32(profile.MaxPortSpeed()), len(queues))
	}

	vr := sdk.ObjectID(0x10)
	prefix := netip.MustParsePrefix("10.0.0.0/8")
	if err := registry.Routes().Add(ctx, vr, prefix, ports[0]); err != nil {
		return fmt.Errorf("add route: %w", err)
	}
	action, nextHop, err := registry.Routes().NextHop(vr, prefix)
	if err != nil {
		return fmt.Errorf("read route: %w", err)
	}
	fmt.Printf("  route %s: action %d, next hop %s\n", prefix, action, nextHop)

	stats, err := registry.Ports().Stats(ports[0])
	if err != nil {
		return fmt.Errorf("read port stats: %w", err)
	}
	fmt.Printf("  port %s counters: %v\n", ports[0], stats)

	// Stand up a second manager layer over the same hardware and store
	// to prove warm-boot reclaim works.
	reborn := manager.NewRegistry(engine.NewTable(hw, lock, logger), profile, st, logger)
	if err := reborn.Reclaim(ctx); err != nil {
		return fmt.Errorf("reclaim: %w", err)
	}
	for _, id := range ports {
		if !reborn.Ports().Owns(id) {
			return fmt.Errorf("port %s lost across reclaim", id)
		}
	}
	fmt.Printf("  reclaim: %d ports, %d bridges, %d routes\n",
		len(reborn.Ports().List()), len(reborn.Bridges().List()), len(reborn.Routes().List()))

	if err := reborn.Close(ctx); err != nil {
		return fmt.Errorf("teardown: %w", err)
	}
	fmt.Println("selftest: ok")
	return nil
}
