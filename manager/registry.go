// Package manager composes one manager per hardware-object category
// over the shared vendor-access table. The Registry is the composition
// root: it owns every manager for the lifetime of a hardware session,
// wires each with the engine table and a back-reference to itself for
// cross-category lookups, and tears managers down in reverse
// construction order.
package manager

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ferrous-networks/asicman/capability"
	"github.com/ferrous-networks/asicman/engine"
	"github.com/ferrous-networks/asicman/sdk"
	"github.com/ferrous-networks/asicman/store"
)

// Registry owns one manager instance per object category. The category
// set is fixed and known at build time; there is no dynamic lookup by
// name.
type Registry struct {
	apis    *engine.Table
	profile *capability.Profile
	store   store.Store
	logger  *slog.Logger

	bridge *BridgeManager
	port   *PortManager
	queue  *QueueManager
	route  *RouteManager
}

// NewRegistry constructs every manager. Construction order encodes
// category dependency order: bridges before ports (ports join the
// default bridge), ports before queues (queues hang off ports), routes
// last (they resolve next hops against ports).
func NewRegistry(apis *engine.Table, profile *capability.Profile, st store.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		apis:    apis,
		profile: profile,
		store:   st,
		logger:  logger.With("component", "registry"),
	}
	r.bridge = newBridgeManager(apis, r, st, logger)
	r.port = newPortManager(apis, r, profile, st, logger)
	r.queue = newQueueManager(apis, r, profile, st, logger)
	r.route = newRouteManager(apis, r, st, logger)
	return r
}

// Bridges returns the bridge manager.
func (r *Registry) Bridges() *BridgeManager { return r.bridge }

// Ports returns the port manager.
func (r *Registry) Ports() *PortManager { return r.port }

// Queues returns the queue manager.
func (r *Registry) Queues() *QueueManager { return r.queue }

// Routes returns the route manager.
func (r *Registry) Routes() *RouteManager { return r.route }

// PortView is the read-only face of the port manager.
type PortView interface {
	Owns(id sdk.ObjectID) bool
	List() []sdk.ObjectID
}

// BridgeView is the read-only face of the bridge manager.
type BridgeView interface {
	List() []sdk.ObjectID
}

// PortsView returns the port manager as a read-only view.
func (r *Registry) PortsView() PortView { return r.port }

// BridgesView returns the bridge manager as a read-only view.
func (r *Registry) BridgesView() BridgeView { return r.bridge }

// Profile returns the capability profile managers consult.
func (r *Registry) Profile() *capability.Profile { return r.profile }

// Reclaim reloads every manager's owned objects from the warm-boot
// store, in construction order.
func (r *Registry) Reclaim(ctx context.Context) error {
	if err := r.bridge.Reclaim(ctx); err != nil {
		return err
	}
	if err := r.port.Reclaim(ctx); err != nil {
		return err
	}
	if err := r.queue.Reclaim(ctx); err != nil {
		return err
	}
	return r.route.Reclaim(ctx)
}

// Close removes every owned object, in reverse construction order:
// routes, queues, ports, bridges. Errors are collected; teardown
// continues past individual failures.
func (r *Registry) Close(ctx context.Context) error {
	return errors.Join(
		r.route.Close(ctx),
		r.queue.Close(ctx),
		r.port.Close(ctx),
		r.bridge.Close(ctx),
	)
}
