package revent

import (
	"errors"
	"fmt"
	"slices"
)

// Channel is a named, ordered collection of subscribers implementing one
// capability T. It is the unit of dispatch: Emit applies a visitor to
// every registered subscriber in order, and a visited subscriber may in
// turn emit into the channels its node was granted.
//
// A Channel value is a view onto shared state. The handle owned by the
// hub may emit; clones produced by Grant for a subscriber's node may
// emit; any other view may not. All views share the same subscriber
// sequence and the same manager.
type Channel[T any] struct {
	state   *channelState[T]
	granted bool
}

type channelState[T any] struct {
	mgr   *Manager
	name  string
	cells []*Cell[T]
}

func (s *channelState[T]) Name() string { return s.name }
func (s *channelState[T]) Size() int    { return len(s.cells) }

// NewChannel creates the named channel on the owning aggregate and
// returns the hub's own emit-capable handle. Channel names are unique
// within a hub; a duplicate name is a programmer error and panics.
func NewChannel[T any](owner Aggregate, name string) *Channel[T] {
	core := owner.Core()
	state := &channelState[T]{mgr: core.mgr, name: name}
	if !core.channels.Add(name, state) {
		panic(fmt.Sprintf("revent: channel %q already exists in hub %q", name, core.name))
	}
	return &Channel[T]{state: state, granted: true}
}

// Name returns the channel's stable name.
func (c *Channel[T]) Name() string { return c.state.name }

// Size returns the number of currently registered subscribers.
func (c *Channel[T]) Size() int { return len(c.state.cells) }

// Emit applies visit once to every currently registered subscriber, in
// the channel's current order. A visited subscriber may re-enter Emit on
// other channels, or on this one; safety of that recursion is exactly
// what the manager's acyclic permission graph guarantees.
//
// Emitting fails with ErrNotGranted on a view that does not carry the
// emit capability and with ErrInactiveScope while the owning hub is
// mid-subscription, since uncommitted permissions must never drive a
// dispatch.
func (c *Channel[T]) Emit(visit func(T)) error {
	if err := c.dispatchable("emit"); err != nil {
		return err
	}
	for i := 0; i < len(c.state.cells); i++ {
		c.state.cells[i].borrow(visit)
	}
	return nil
}

// RemoveWhere applies pred to each subscriber in turn and removes every
// one for which it returns true. It is the bulk, conditional form of
// unsubscription and observes the same scope rules as Emit.
func (c *Channel[T]) RemoveWhere(pred func(T) bool) error {
	if err := c.dispatchable("remove from"); err != nil {
		return err
	}
	var err error
	kept := c.state.cells[:0]
	for _, cell := range c.state.cells {
		if cell.borrowBool(pred) {
			err = errors.Join(err, cell.release())
			continue
		}
		kept = append(kept, cell)
	}
	c.state.cells = kept
	return err
}

// Reorder sorts the subscriber sequence in place by cmp. Subsequent
// emits follow the new order until reordered again. The sort is stable:
// equal subscribers keep their relative insertion order.
func (c *Channel[T]) Reorder(cmp func(a, b T) int) error {
	if err := c.dispatchable("reorder"); err != nil {
		return err
	}
	slices.SortStableFunc(c.state.cells, func(x, y *Cell[T]) int {
		return cmp(x.value, y.value)
	})
	return nil
}

// Register appends the cell to the channel. It is only valid during the
// registration step of this hub's construction protocol, and only for
// channels the subscriber declared it listens on; anything else is a
// topology error.
func (c *Channel[T]) Register(cell *Cell[T]) error {
	scope, err := c.state.mgr.registrationScope()
	if err != nil {
		return fmt.Errorf("register into %q: %w", c.state.name, err)
	}
	if _, ok := scope.listens[c.state.name]; !ok {
		return fmt.Errorf("register into %q: channel is not in %s's listen set: %w",
			c.state.name, scope.subscriber, ErrNotGranted)
	}
	cell.retain()
	c.state.cells = append(c.state.cells, cell)
	scope.registered = append(scope.registered, registration{
		channel: c.state.name,
		cancel:  func() error { return c.Unregister(cell) },
	})
	return nil
}

// Unregister removes the exact entry for cell, matched by identity, and
// releases its reference. Removing a cell that is not present fails with
// ErrUnknownSubscription.
func (c *Channel[T]) Unregister(cell *Cell[T]) error {
	idx := slices.Index(c.state.cells, cell)
	if idx < 0 {
		return fmt.Errorf("unregister from %q: %w", c.state.name, ErrUnknownSubscription)
	}
	c.state.cells = slices.Delete(c.state.cells, idx, idx+1)
	return cell.release()
}

func (c *Channel[T]) dispatchable(op string) error {
	if !c.granted {
		return fmt.Errorf("%s %q: %w", op, c.state.name, ErrNotGranted)
	}
	if c.state.mgr.constructing() {
		return fmt.Errorf("%s %q: subscription in progress: %w", op, c.state.name, ErrInactiveScope)
	}
	return nil
}
