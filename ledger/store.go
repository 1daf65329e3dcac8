package ledger

import (
	"context"

	"github.com/pkg/errors"
)

type Aggregate struct {
	Id       AccountId       `json:"id"`
	Events   []RecordedEvent `json:"events,omitempty"`
	Revision Revision        `json:"revision"`
}

type EventLoader = func(ctx context.Context, id AccountId) (Aggregate, error)

// EventStore persists account event streams. Commit applies every change or
// none of them; a change whose expected revision does not match the stored
// head fails the whole commit with RevisionConflict.
type EventStore interface {
	Load(ctx context.Context, id AccountId) (Aggregate, error)
	Commit(ctx context.Context, changes ...Change) error
}

var RevisionConflict = errors.New("revision-conflict")

var ErrInvalidChange = errors.New("invalid change")

type Change struct {
	Account AccountId
	Options PublishOptions
	Events  []DomainEvent
}

func NewChange(account AccountId, options PublishOptions, events ...DomainEvent) Change {
	return Change{Account: account, Options: options, Events: events}
}

type PublishOptions struct {
	RecordedEventMetadata
	// ExpectedRevision is empty for "any revision". InitialRevision requires
	// that the account has no events yet.
	ExpectedRevision Revision
}

type PublishOption func(modifier *PublishOptions)

func Options(options ...PublishOption) PublishOptions {
	modifiers := &PublishOptions{}
	for _, option := range options {
		option(modifiers)
	}

	return *modifiers
}

func WithExpectedRevision(expectedRevision Revision) PublishOption {
	return func(modifier *PublishOptions) {
		modifier.ExpectedRevision = expectedRevision
	}
}

func WithCorrelationId(correlationId CorrelationID) PublishOption {
	return func(modifier *PublishOptions) {
		modifier.RecordedEventMetadata.CorrelationId = correlationId
	}
}

func WithCausationId(correlationId CorrelationID, causationId EventID) PublishOption {
	return func(modifier *PublishOptions) {
		modifier.RecordedEventMetadata.CausationId = causationId
		modifier.RecordedEventMetadata.CorrelationId = correlationId
	}
}

// ValidateChanges rejects empty commits, changes without events and
// accounts that appear more than once.
func ValidateChanges(changes []Change) error {
	if len(changes) == 0 {
		return errors.Wrap(ErrInvalidChange, "attempted to commit an empty list of changes")
	}

	seen := make(map[EncodedAccountId]bool, len(changes))
	for _, change := range changes {
		id := change.Account.Encode()
		if len(change.Events) == 0 {
			return errors.Wrapf(ErrInvalidChange, "no events for %s", id)
		}
		if seen[id] {
			return errors.Wrapf(ErrInvalidChange, "%s appears more than once", id)
		}
		seen[id] = true
	}

	return nil
}

func RevisionOf(events []RecordedEvent) Revision {
	count := len(events)
	if count == 0 {
		return InitialRevision
	}

	return events[count-1].Revision
}
