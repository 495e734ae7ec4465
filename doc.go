// Package revent implements a synchronous, in-process publish/subscribe
// hub for single-threaded object graphs. Named channels hold ordered
// subscribers; emitting on a channel invokes every subscriber on the
// calling goroutine, and a subscriber may recursively emit into the
// channels its node was granted. What makes the design interesting is
// that re-entrant corruption is ruled out before any dispatch happens:
// every subscription declares which channels it listens on and which it
// may emit into, the manager records those declarations as edges of a
// directed graph, and any subscription whose edges would close a cycle
// is rejected with the exact dispatch loop it would have created.
//
// Design decisions:
//   - Prove, don't check: safety of mutable re-entrant dispatch rests on
//     the permission graph staying acyclic, established at subscription
//     time, not on runtime borrow tracking during emits
//   - Atomic subscriptions: the graph is only mutated when a whole
//     proposal has passed; a rejected subscription leaves the hub
//     byte-for-byte unchanged
//   - Explicit scopes: there is no global "current hub" state; every
//     check compares manager references carried by the handles at hand
//   - Typed channels: a channel carries subscribers of one capability
//     interface, so dispatch is compile-time checked
//   - Identity-based removal: subscriptions are undone by handle, never
//     by value equality
//
// Component hierarchy:
//   - Hub: root aggregate owning the manager and named channels
//     ├── Manager: permission graph, scope stack, cycle search
//     ├── Channel[T]: ordered dispatch unit for capability T
//     │     └── Cell[T]: shared single-instance container
//     └── NodeScope/Grant: per-subscriber restricted emit views
//
// Example usage:
//
//	type Ticker interface{ Tick() }
//
//	hub := revent.New(revent.WithName("engine"))
//	tick := revent.NewChannel[Ticker](hub, "tick")
//
//	sub, err := revent.Subscribe(hub, revent.Definition[*revent.Hub, struct{}, Ticker, int]{
//	    Name:    "Clock",
//	    Listens: []string{"tick"},
//	    Build:   func(_ struct{}, start int) Ticker { return &clock{at: start} },
//	    Attach: func(_ *revent.Hub, cell *revent.Cell[Ticker]) error {
//	        return tick.Register(cell)
//	    },
//	}, 0)
//	if err != nil {
//	    return err
//	}
//	defer sub.Unsubscribe()
//
//	_ = tick.Emit(func(t Ticker) { t.Tick() })
//
// Aggregates with several channels are usually not written by hand; the
// revent-hub-gen tool turns a declarative JSON definition into the hub
// struct, its constructor, and per-channel grant helpers.
package revent
