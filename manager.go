package revent

import (
	"fmt"

	"github.com/BourgondAries/revent/internal/graph"
)

// Manager is the sole authority over a hub's permission graph and over
// channel membership. One manager exists per hub and is shared by
// reference with every channel and node descending from it.
//
// The committed graph is always acyclic: proposed edges are checked for
// reachability before anything is committed, and the graph is only ever
// mutated inside commitEdges, so a failed subscription leaves the
// graph exactly as it was.
type Manager struct {
	graph  *graph.Graph
	scopes []*constructionScope
}

type scopePhase int

const (
	phaseProposing scopePhase = iota
	phaseRegistering
)

// constructionScope records one in-progress subscription: the
// subscriber's display name, the edges it proposes, and, once the edges
// are committed, the channel registrations it performs.
type constructionScope struct {
	subscriber string
	phase      scopePhase
	listens    map[string]struct{}
	proposed   []graph.Edge
	registered []registration
}

// registration remembers one channel insertion so the subscription
// handle can undo it by identity later.
type registration struct {
	channel string
	cancel  func() error
}

func newManager() *Manager {
	return &Manager{graph: graph.New()}
}

// constructing reports whether any subscription is mid-flight. Dispatch
// is forbidden while it is: uncommitted permissions must never drive an
// emit.
func (m *Manager) constructing() bool {
	return len(m.scopes) > 0
}

func (m *Manager) beginSubscription(name string, listens []string) {
	listenSet := make(map[string]struct{}, len(listens))
	for _, l := range listens {
		listenSet[l] = struct{}{}
	}
	m.scopes = append(m.scopes, &constructionScope{
		subscriber: name,
		listens:    listenSet,
	})
}

func (m *Manager) currentScope() *constructionScope {
	if len(m.scopes) == 0 {
		return nil
	}
	return m.scopes[len(m.scopes)-1]
}

// proposeEdges stages one listen->emit edge per (listen, emit) pair and
// verifies, against the committed graph only, that none of them would
// close a loop. Because the proposal is the full cross product, any
// cycle that could arise from committing it must already show up as a
// committed path from some emit channel back to some listen channel, so
// the per-pair reachability check is complete.
func (m *Manager) proposeEdges(listens, emits []string) error {
	scope := m.currentScope()
	if scope == nil || scope.phase != phaseProposing {
		return fmt.Errorf("propose edges: no subscription in progress: %w", ErrInactiveScope)
	}
	for _, listen := range listens {
		for _, emit := range emits {
			if steps := m.graph.PathTo(emit, listen); steps != nil {
				return m.cycleError(scope.subscriber, listen, steps)
			}
			scope.proposed = append(scope.proposed, graph.Edge{
				From: listen,
				To:   emit,
				Via:  scope.subscriber,
			})
		}
	}
	return nil
}

// cycleError assembles the canonical diagnostic for a rejected edge
// listen->emit. steps is the committed path leading from the emit
// channel back to the listen channel; for a self loop it is empty and
// the path collapses to "[name]a -> a".
func (m *Manager) cycleError(subscriber, listen string, steps []graph.Step) *CycleError {
	hops := []Hop{{Subscriber: subscriber, Channel: listen}}
	for _, step := range steps {
		hops = append(hops, Hop{Subscriber: step.Via, Channel: step.Channel})
	}
	return &CycleError{Hops: hops, Closes: listen}
}

// commitEdges is the single point at which the graph is mutated. The
// proposed edges are re-verified first: a nested subscription may have
// committed edges of its own since this scope proposed, and the
// invariant holds against the graph as it is now, not as it was.
func (m *Manager) commitEdges() error {
	scope := m.currentScope()
	if scope == nil || scope.phase != phaseProposing {
		return fmt.Errorf("commit edges: no subscription in progress: %w", ErrInactiveScope)
	}
	for _, edge := range scope.proposed {
		if steps := m.graph.PathTo(edge.To, edge.From); steps != nil {
			return m.cycleError(scope.subscriber, edge.From, steps)
		}
	}
	for _, edge := range scope.proposed {
		m.graph.AddEdge(edge.From, edge.To, edge.Via)
	}
	scope.phase = phaseRegistering
	return nil
}

// registrationScope returns the scope a channel registration belongs to.
// It fails when no subscription of this manager is in its registration
// step, which is also what rejects cells being wired into a foreign
// hub's channels.
func (m *Manager) registrationScope() (*constructionScope, error) {
	scope := m.currentScope()
	if scope == nil || scope.phase != phaseRegistering {
		return nil, ErrInactiveScope
	}
	return scope, nil
}

// finishSubscription pops the current scope and hands back the
// registrations it accumulated. Used for both the committed and the
// aborted exit: an aborted scope simply has nothing registered.
func (m *Manager) finishSubscription() []registration {
	scope := m.currentScope()
	if scope == nil {
		return nil
	}
	m.scopes = m.scopes[:len(m.scopes)-1]
	return scope.registered
}

// edges returns the committed permission edges in insertion order.
func (m *Manager) edges() []graph.Edge {
	return m.graph.Edges()
}
