package revent

import (
	"log/slog"

	"github.com/fogfish/opts"
	"github.com/tidwall/sjson"

	"github.com/BourgondAries/revent/internal/registry"
)

// Aggregate is anything that can stand in for a hub: either a *Hub
// itself or a user aggregate (typically generated) embedding one.
type Aggregate interface {
	Core() *Hub
}

// channelInfo is the view of a channel the hub keeps for bookkeeping;
// the typed handle stays with whoever created the channel.
type channelInfo interface {
	Name() string
	Size() int
}

// Hub is the root aggregate. It owns the manager and the registry of
// named channels, and everything descending from it (channels, nodes,
// subscriptions) lives exactly as long as it does.
type Hub struct {
	name     string
	log      *slog.Logger
	mgr      *Manager
	channels registry.Registry[channelInfo]
}

var (
	WithName   = opts.ForName[Hub, string]("name")
	WithLogger = opts.ForName[Hub, *slog.Logger]("log")
)

// New creates a hub with the provided options.
func New(options ...opts.Option[Hub]) *Hub {
	hub := &Hub{
		name:     "hub",
		log:      slog.Default(),
		mgr:      newManager(),
		channels: registry.New[channelInfo](),
	}
	if err := opts.Apply(hub, options); err != nil {
		panic(err)
	}
	return hub
}

// Core returns the hub itself, satisfying Aggregate so that bare hubs
// and embedding aggregates are interchangeable.
func (h *Hub) Core() *Hub { return h }

// Name returns the hub's display name.
func (h *Hub) Name() string { return h.name }

// Channels returns the names of all channels in creation order.
func (h *Hub) Channels() []string {
	return h.channels.Names()
}

// Size reports the number of subscribers currently registered in the
// named channel, and whether the channel exists at all.
func (h *Hub) Size(channel string) (int, bool) {
	info, ok := h.channels.Get(channel)
	if !ok {
		return 0, false
	}
	return info.Size(), true
}

// Edge is one committed permission: some subscriber (Via) listening on
// From may dispatch into To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Via  string `json:"via"`
}

// Snapshot is a point-in-time view of a hub's channels and committed
// permission graph, for tooling and debugging.
type Snapshot struct {
	Hub      string
	Channels []string
	Edges    []Edge
}

// Snapshot captures the hub's current topology.
func (h *Hub) Snapshot() Snapshot {
	committed := h.mgr.edges()
	edges := make([]Edge, 0, len(committed))
	for _, e := range committed {
		edges = append(edges, Edge{From: e.From, To: e.To, Via: e.Via})
	}
	return Snapshot{
		Hub:      h.name,
		Channels: h.channels.Names(),
		Edges:    edges,
	}
}

var snapshotJSON = []byte(`{"type":"snapshot"}`)

// MarshalJSON implements custom JSON marshaling for Snapshot
func (s Snapshot) MarshalJSON() ([]byte, error) {
	result := snapshotJSON

	var err error
	result, err = sjson.SetBytes(result, "hub", s.Hub)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "channels", s.Channels)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "edges", s.Edges)
	return result, err
}
