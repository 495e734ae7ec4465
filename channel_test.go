package revent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probe records the order in which channel members get visited.
type probe struct {
	id  int
	log *[]int
}

func (p *probe) OnEvent() { *p.log = append(*p.log, p.id) }

func subscribeProbes(t *testing.T, h *trioHub, n int, log *[]int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := subscribeListener(h, "Probe", h.A, &probe{id: i, log: log})
		require.NoError(t, err)
	}
}

func TestEmit_VisitsEverySubscriberOnce(t *testing.T) {
	h := newTrioHub()
	var log []int
	subscribeProbes(t, h, 5, &log)

	require.NoError(t, h.A.Emit(func(e eventCap) { e.OnEvent() }))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, log, "insertion order, each exactly once")
}

func TestEmit_EmptyChannel(t *testing.T) {
	h := newTrioHub()

	visits := 0
	require.NoError(t, h.A.Emit(func(eventCap) { visits++ }))
	assert.Zero(t, visits)
}

func TestEmit_UngrantedView(t *testing.T) {
	h := newTrioHub()
	view := &Channel[eventCap]{state: h.A.state}

	err := view.Emit(func(eventCap) {})
	assert.ErrorIs(t, err, ErrNotGranted)
}

func TestRemoveWhere(t *testing.T) {
	h := newTrioHub()
	var log []int
	subscribeProbes(t, h, 5, &log)

	require.NoError(t, h.A.RemoveWhere(func(e eventCap) bool {
		return e.(*probe).id%2 == 1
	}))

	assert.Equal(t, 2, h.A.Size())
	log = log[:0]
	require.NoError(t, h.A.Emit(func(e eventCap) { e.OnEvent() }))
	assert.Equal(t, []int{2, 4}, log)
}

func TestRemoveWhere_ReleasesRemoved(t *testing.T) {
	h := newTrioHub()
	closed := false

	_, err := subscribeListener(h, "X", h.A, &closable{closed: &closed})
	require.NoError(t, err)

	require.NoError(t, h.A.RemoveWhere(func(eventCap) bool { return true }))
	assert.True(t, closed)
	assert.Equal(t, 0, h.A.Size())
}

func TestRegister_OutsideProtocol(t *testing.T) {
	h := newTrioHub()

	err := h.A.Register(newCell[eventCap](&counter{}))
	assert.ErrorIs(t, err, ErrInactiveScope)
	assert.Equal(t, 0, h.A.Size())
}

func TestUnregister_Unknown(t *testing.T) {
	h := newTrioHub()

	err := h.A.Unregister(newCell[eventCap](&counter{}))
	assert.ErrorIs(t, err, ErrUnknownSubscription)
}

func TestUnregister_MatchesByIdentityNotValue(t *testing.T) {
	h := newTrioHub()
	shared := &counter{}

	sub1, err := subscribeListener(h, "First", h.A, shared)
	require.NoError(t, err)
	_, err = subscribeListener(h, "Second", h.A, shared)
	require.NoError(t, err)

	require.NoError(t, sub1.Unsubscribe())
	assert.Equal(t, 1, h.A.Size(), "only the first registration's cell is removed")
}

func TestChannel_Name(t *testing.T) {
	h := newTrioHub()
	assert.Equal(t, "a", h.A.Name())
	assert.Equal(t, "b", h.B.Name())
}

func TestNewChannel_DuplicateNamePanics(t *testing.T) {
	h := newTrioHub()
	assert.Panics(t, func() { NewChannel[eventCap](h, "a") })
}

// score is the reorder fixture: a subscriber carrying one integer.
type score struct {
	n int
}

func (s *score) OnEvent() {}

type scoreHub struct {
	*Hub
	Scores *Channel[*score]
}

func TestReorder_Descending(t *testing.T) {
	h := &scoreHub{Hub: New(WithName("scores"))}
	h.Scores = NewChannel[*score](h, "scores")

	// Insert in a scrambled order.
	for i := 0; i < 10; i++ {
		_, err := Subscribe(h, Definition[*scoreHub, struct{}, *score, int]{
			Name:    "Score",
			Listens: []string{"scores"},
			Build:   func(_ struct{}, n int) *score { return &score{n: n} },
			Attach: func(_ *scoreHub, cell *Cell[*score]) error {
				return h.Scores.Register(cell)
			},
		}, (i*7)%10)
		require.NoError(t, err)
	}

	require.NoError(t, h.Scores.Reorder(func(a, b *score) int { return b.n - a.n }))

	var seen []int
	require.NoError(t, h.Scores.Emit(func(s *score) { seen = append(seen, s.n) }))
	require.Len(t, seen, 10)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i-1], seen[i], "emit order must be strictly descending after reorder")
	}
}
