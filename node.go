package revent

import "fmt"

// NodeScope is handed to a definition's Node callback while the
// subscriber's restricted view is being assembled. It knows which hub is
// constructing and which emit capabilities the subscriber declared, and
// it is worthless outside that one callback.
type NodeScope struct {
	mgr        *Manager
	subscriber string
	emits      map[string]struct{}
}

// Grant produces an emit-capable clone of ch for the node under
// construction. The clone shares the channel's underlying subscriber
// sequence; it has no identity of its own in the permission graph, whose
// edges are recorded by channel name.
//
// Granting fails with ErrNotGranted for a channel outside the declared
// emit set and with ErrInactiveScope for a channel belonging to a
// different hub than the one constructing.
func Grant[T any](scope *NodeScope, ch *Channel[T]) (*Channel[T], error) {
	if ch.state.mgr != scope.mgr {
		return nil, fmt.Errorf("grant %q to %s: channel belongs to a different hub: %w",
			ch.state.name, scope.subscriber, ErrInactiveScope)
	}
	if _, ok := scope.emits[ch.state.name]; !ok {
		return nil, fmt.Errorf("grant %q to %s: %w", ch.state.name, scope.subscriber, ErrNotGranted)
	}
	return &Channel[T]{state: ch.state, granted: true}, nil
}
