package revent

// Test domain: a tiny notification fabric with three channels of one
// shared capability, which is all the permission-graph scenarios need,
// plus a scored channel for ordering tests.

type eventCap interface {
	OnEvent()
}

type trioHub struct {
	*Hub
	A *Channel[eventCap]
	B *Channel[eventCap]
	C *Channel[eventCap]
}

func newTrioHub() *trioHub {
	h := &trioHub{Hub: New(WithName("trio"))}
	h.A = NewChannel[eventCap](h, "a")
	h.B = NewChannel[eventCap](h, "b")
	h.C = NewChannel[eventCap](h, "c")
	return h
}

// counter records how many times it was visited.
type counter struct {
	calls int
}

func (c *counter) OnEvent() { c.calls++ }

// relay forwards every visit into its granted downstream channel.
type relay struct {
	out *Channel[eventCap]
}

func (r *relay) OnEvent() {
	_ = r.out.Emit(func(e eventCap) { e.OnEvent() })
}

type relayNode struct {
	out *Channel[eventCap]
}

// subscribeListener registers instance on ch with no emit capability.
func subscribeListener(h *trioHub, name string, ch *Channel[eventCap], instance eventCap) (Subscription, error) {
	return Subscribe(h, Definition[*trioHub, struct{}, eventCap, any]{
		Name:    name,
		Listens: []string{ch.Name()},
		Build:   func(_ struct{}, _ any) eventCap { return instance },
		Attach: func(_ *trioHub, cell *Cell[eventCap]) error {
			return ch.Register(cell)
		},
	}, nil)
}

// subscribeRelay registers a relay listening on from whose node grants
// it to.
func subscribeRelay(h *trioHub, name string, from, to *Channel[eventCap]) (Subscription, error) {
	return Subscribe(h, Definition[*trioHub, relayNode, eventCap, any]{
		Name:    name,
		Listens: []string{from.Name()},
		Emits:   []string{to.Name()},
		Node: func(_ *trioHub, scope *NodeScope) (relayNode, error) {
			out, err := Grant(scope, to)
			return relayNode{out: out}, err
		},
		Build: func(node relayNode, _ any) eventCap {
			return &relay{out: node.out}
		},
		Attach: func(_ *trioHub, cell *Cell[eventCap]) error {
			return from.Register(cell)
		},
	}, nil)
}

// closable flips a flag when its last reference goes away.
type closable struct {
	closed *bool
}

func (c *closable) OnEvent() {}

func (c *closable) Close() error {
	*c.closed = true
	return nil
}
