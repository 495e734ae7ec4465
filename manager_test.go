package revent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BourgondAries/revent/internal/graph"
)

func TestManager_ProposeWithoutScope(t *testing.T) {
	m := newManager()

	err := m.proposeEdges([]string{"a"}, []string{"b"})
	assert.ErrorIs(t, err, ErrInactiveScope)
}

func TestManager_CommitWithoutScope(t *testing.T) {
	m := newManager()

	err := m.commitEdges()
	assert.ErrorIs(t, err, ErrInactiveScope)
}

func TestManager_RegistrationRequiresCommit(t *testing.T) {
	m := newManager()
	m.beginSubscription("X", []string{"a"})

	_, err := m.registrationScope()
	assert.ErrorIs(t, err, ErrInactiveScope, "registration before commit is out of protocol")

	require.NoError(t, m.proposeEdges([]string{"a"}, nil))
	require.NoError(t, m.commitEdges())

	scope, err := m.registrationScope()
	require.NoError(t, err)
	assert.Equal(t, "X", scope.subscriber)
}

func TestManager_EdgesCommittedAtomically(t *testing.T) {
	m := newManager()
	m.beginSubscription("X", []string{"a"})

	require.NoError(t, m.proposeEdges([]string{"a"}, []string{"b", "c"}))
	assert.Empty(t, m.edges(), "nothing is committed while proposing")

	require.NoError(t, m.commitEdges())
	assert.Equal(t, []graph.Edge{
		{From: "a", To: "b", Via: "X"},
		{From: "a", To: "c", Via: "X"},
	}, m.edges())
}

func TestManager_FailedProposalLeavesGraphUntouched(t *testing.T) {
	m := newManager()
	m.beginSubscription("Y", []string{"b"})
	require.NoError(t, m.proposeEdges([]string{"b"}, []string{"a"}))
	require.NoError(t, m.commitEdges())
	m.finishSubscription()

	m.beginSubscription("X", []string{"a"})
	err := m.proposeEdges([]string{"a"}, []string{"b"})
	require.Error(t, err)
	m.finishSubscription()

	assert.Equal(t, []graph.Edge{{From: "b", To: "a", Via: "Y"}}, m.edges())
}

// A nested subscription may commit edges between an outer scope's
// proposal and its commit; the commit-time re-check has to catch a loop
// that forms this way.
func TestManager_CommitRechecksAgainstNestedCommits(t *testing.T) {
	m := newManager()

	m.beginSubscription("Outer", []string{"a"})
	require.NoError(t, m.proposeEdges([]string{"a"}, []string{"b"}))

	m.beginSubscription("Inner", []string{"b"})
	require.NoError(t, m.proposeEdges([]string{"b"}, []string{"a"}))
	require.NoError(t, m.commitEdges())
	m.finishSubscription()

	err := m.commitEdges()
	require.Error(t, err)

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, "[Outer]a -> [Inner]b -> a", cycle.Path())
}

func TestManager_Constructing(t *testing.T) {
	m := newManager()
	assert.False(t, m.constructing())

	m.beginSubscription("X", nil)
	assert.True(t, m.constructing())

	m.finishSubscription()
	assert.False(t, m.constructing())
}
