package revent

import (
	"errors"

	"github.com/go-openapi/strfmt"
)

// Subscription is the identity token returned from a successful
// subscription. It is the only way to remove that exact instance again;
// value equality of subscribers plays no part.
type Subscription interface {
	ID() string
	Subscriber() string
	CreatedAt() strfmt.DateTime
	// Unsubscribe removes the instance from every channel it was
	// registered into. Unsubscribing a second time fails with
	// ErrUnknownSubscription. The permission graph is left untouched:
	// it records declared capabilities, not current membership.
	Unsubscribe() error
}

type subscription struct {
	id            string
	subscriber    string
	createdAt     strfmt.DateTime
	registrations []registration
}

func (s *subscription) ID() string                 { return s.id }
func (s *subscription) Subscriber() string         { return s.subscriber }
func (s *subscription) CreatedAt() strfmt.DateTime { return s.createdAt }

func (s *subscription) Unsubscribe() error {
	var err error
	for _, reg := range s.registrations {
		if cerr := reg.cancel(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}
