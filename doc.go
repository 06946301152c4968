// Package asicman is the hardware-abstraction layer of a network-switch
// control-plane agent. Higher-level configuration managers create,
// inspect, and tear down hardware objects (ports, bridges, routes,
// queues) through a vendor-neutral, attribute-based interface; per-chip
// differences in capability and object identification are hidden behind
// capability profiles and object descriptors.
//
// The layer is organised as:
//
//   - sdk: the vendor SDK contract (statuses, attributes, keys, the
//     four-primitive adapter interface)
//   - hwlock: the single process-wide lock serialising every vendor call
//   - engine: the generic create/remove/get/set/stats engine, one
//     instance per object category
//   - capability: per-chip-family feature and constant queries
//   - manager: the composition root owning one manager per category
//   - sim: an in-memory ASIC for tests and the diagnostic CLI
//   - store/sqlite: the warm-boot store of created objects
//
// This is a local, synchronous programming interface: calls block until
// the vendor SDK returns, there is no cancellation, and exactly one
// vendor call is in flight at any instant.
package asicman
