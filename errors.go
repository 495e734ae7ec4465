package revent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	// ErrCycle reports that a subscription was rejected because its
	// declared capabilities would close a dispatch loop. The concrete
	// error is always a *CycleError carrying the offending path.
	ErrCycle = errors.New("recursion detected")

	// ErrInactiveScope reports an operation attempted outside its owning
	// hub's construction or dispatch scope, including handles that were
	// mixed in from a different hub.
	ErrInactiveScope = errors.New("manager is not active for this scope")

	// ErrUnknownSubscription reports an unregister for a handle that is
	// not currently present in the target channel. Double removal is a
	// programmer error, not a silent no-op.
	ErrUnknownSubscription = errors.New("subscription not present in channel")

	// ErrNotGranted reports use of a channel capability the subscriber
	// never declared.
	ErrNotGranted = errors.New("channel capability was not granted")
)

// Hop is one step of a cycle diagnostic: a subscriber and the channel it
// listens on.
type Hop struct {
	Subscriber string `json:"subscriber"`
	Channel    string `json:"channel"`
}

// CycleError describes the dispatch loop a rejected subscription would
// have created. Hops starts at the subscriber being constructed and
// follows committed permission edges until Closes, the channel that
// completes the loop, is reached again.
type CycleError struct {
	Hops   []Hop
	Closes string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("recursion detected: %s", e.Path())
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// Path renders the loop in its canonical form, e.g.
// "[AToB]a -> [BToA]b -> a". Tooling matches on this text verbatim.
func (e *CycleError) Path() string {
	var sb strings.Builder
	for _, hop := range e.Hops {
		sb.WriteString("[")
		sb.WriteString(hop.Subscriber)
		sb.WriteString("]")
		sb.WriteString(hop.Channel)
		sb.WriteString(" -> ")
	}
	sb.WriteString(e.Closes)
	return sb.String()
}

var cycleJSON = []byte(`{"type":"cycle"}`)

// MarshalJSON implements custom JSON marshaling for CycleError
func (e *CycleError) MarshalJSON() ([]byte, error) {
	result := cycleJSON

	var err error
	result, err = sjson.SetBytes(result, "closes", e.Closes)
	if err != nil {
		return nil, err
	}

	for i, hop := range e.Hops {
		result, err = sjson.SetBytes(result, fmt.Sprintf("hops.%d.subscriber", i), hop.Subscriber)
		if err != nil {
			return nil, err
		}
		result, err = sjson.SetBytes(result, fmt.Sprintf("hops.%d.channel", i), hop.Channel)
		if err != nil {
			return nil, err
		}
	}

	result, err = sjson.SetBytes(result, "path", e.Path())
	return result, err
}

// UnmarshalJSON implements custom JSON unmarshaling for CycleError
func (e *CycleError) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "cycle" {
		return fmt.Errorf("missing or invalid type, expected 'cycle'")
	}

	closes := gjson.GetBytes(data, "closes")
	if !closes.Exists() {
		return fmt.Errorf("missing required field 'closes'")
	}
	e.Closes = closes.String()

	e.Hops = nil
	for _, hop := range gjson.GetBytes(data, "hops").Array() {
		e.Hops = append(e.Hops, Hop{
			Subscriber: hop.Get("subscriber").String(),
			Channel:    hop.Get("channel").String(),
		})
	}
	return nil
}
