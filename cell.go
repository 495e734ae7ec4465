package revent

import "io"

// Cell is the shared-ownership container holding exactly one subscriber
// instance. Channels hold cells rather than instances so that the same
// subscriber can sit in several channels and be removed by identity.
//
// The cell performs no aliasing analysis of its own. Never observing two
// live mutable views of the same cell is a system-level invariant upheld
// by the manager's acyclic permission graph; the borrow flag exists only
// to turn a violation of that invariant into an immediate panic instead
// of silent state corruption.
type Cell[T any] struct {
	value T
	refs  int
	busy  bool
}

// newCell wraps value with a single reference: the construction
// protocol's own. Each channel registration adds one more.
func newCell[T any](value T) *Cell[T] {
	return &Cell[T]{value: value, refs: 1}
}

// borrow yields the one live mutable view of the subscriber to visit.
func (c *Cell[T]) borrow(visit func(T)) {
	if c.busy {
		panic("revent: subscriber cell is already borrowed; a dispatch cycle slipped past the manager")
	}
	c.busy = true
	defer func() { c.busy = false }()
	visit(c.value)
}

// borrowBool is borrow for predicates, used by conditional removal.
func (c *Cell[T]) borrowBool(pred func(T) bool) bool {
	if c.busy {
		panic("revent: subscriber cell is already borrowed; a dispatch cycle slipped past the manager")
	}
	c.busy = true
	defer func() { c.busy = false }()
	return pred(c.value)
}

func (c *Cell[T]) retain() {
	c.refs++
}

// release drops one reference. When the last reference goes, a
// subscriber implementing io.Closer is closed, which is how instances
// registered into zero channels get torn down as soon as construction
// finishes.
func (c *Cell[T]) release() error {
	c.refs--
	if c.refs > 0 {
		return nil
	}
	if closer, ok := any(c.value).(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
