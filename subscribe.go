package revent

import (
	"errors"
	"log/slog"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/BourgondAries/revent/pkg/slogx"
	"github.com/BourgondAries/revent/pkg/uuidx"
)

// Definition is the subscriber contract the construction protocol
// consumes. H is the aggregate type the subscriber is built against, N
// its restricted node view, T the instance type, and I the build input.
//
// Listens and Emits are the subscriber's declared capabilities; they are
// immutable for the lifetime of the registration and are what the
// permission graph records. Node derives the granted channel views,
// Build produces the instance, and Attach registers the cell into every
// listened channel. Node and Attach are usually generated.
type Definition[H Aggregate, N, T, I any] struct {
	Name    string
	Listens []string
	Emits   []string
	Node    func(hub H, scope *NodeScope) (N, error)
	Build   func(node N, input I) T
	Attach  func(hub H, cell *Cell[T]) error
}

func (d Definition[H, N, T, I]) validate() error {
	var err error
	if d.Name == "" {
		err = errors.Join(err, errors.New("definition name is required"))
	}
	if d.Build == nil {
		err = errors.Join(err, errors.New("definition build function is required"))
	}
	return err
}

// Subscribe runs the construction protocol for one subscriber: it
// assembles the node view, proposes the declared listen x emit edges,
// commits them if no dispatch cycle would result, builds the instance,
// and registers it into its listened channels. On any failure before
// commit, the hub is left byte-for-byte unchanged: no edges, no channel
// membership, no instance.
func Subscribe[H Aggregate, N, T, I any](hub H, def Definition[H, N, T, I], input I) (Subscription, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	core := hub.Core()
	mgr := core.mgr

	mgr.beginSubscription(def.Name, def.Listens)

	scope := &NodeScope{mgr: mgr, subscriber: def.Name, emits: emitSet(def.Emits)}
	var node N
	if def.Node != nil {
		built, err := def.Node(hub, scope)
		if err != nil {
			mgr.finishSubscription()
			return nil, err
		}
		node = built
	}

	if err := mgr.proposeEdges(def.Listens, def.Emits); err != nil {
		mgr.finishSubscription()
		core.log.Debug("rejected subscription",
			slog.String("subscriber", def.Name), slogx.Error(err))
		return nil, err
	}
	if err := mgr.commitEdges(); err != nil {
		mgr.finishSubscription()
		core.log.Debug("rejected subscription",
			slog.String("subscriber", def.Name), slogx.Error(err))
		return nil, err
	}

	cell := newCell(def.Build(node, input))

	if def.Attach != nil {
		if err := def.Attach(hub, cell); err != nil {
			for _, reg := range mgr.finishSubscription() {
				err = errors.Join(err, reg.cancel())
			}
			err = errors.Join(err, cell.release())
			return nil, err
		}
	}

	registrations := mgr.finishSubscription()
	// Drop the construction protocol's own reference. An instance that
	// attached to no channel is torn down right here.
	if err := cell.release(); err != nil {
		return nil, err
	}

	core.log.Debug("committed subscription",
		slog.String("hub", core.name),
		slog.String("subscriber", def.Name),
		slog.Int("channels", len(registrations)))

	return &subscription{
		id:            uuidx.NewString(),
		subscriber:    def.Name,
		createdAt:     strfmt.DateTime(time.Now()),
		registrations: registrations,
	}, nil
}

func emitSet(emits []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emits))
	for _, e := range emits {
		set[e] = struct{}{}
	}
	return set
}
