package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/wire"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-greetings/ledger"
)

var Set = wire.NewSet(
	NewEventStore,
	wire.Bind(new(ledger.EventStore), new(*EventStore)),
)

// EventStore keeps account streams in process. Commits hold a single lock so
// the revision checks and the appends of one commit are atomic.
type EventStore struct {
	lk        sync.RWMutex
	revisions *ledger.RevisionGenerator
	streams   map[ledger.EncodedAccountId][]ledger.RecordedEvent
}

func NewEventStore() *EventStore {
	return &EventStore{
		revisions: ledger.NewRevisionGenerator(),
		streams:   make(map[ledger.EncodedAccountId][]ledger.RecordedEvent),
	}
}

func (s *EventStore) Load(_ context.Context, id ledger.AccountId) (ledger.Aggregate, error) {
	s.lk.RLock()
	defer s.lk.RUnlock()

	stream := s.streams[id.Encode()]
	events := make([]ledger.RecordedEvent, len(stream))
	copy(events, stream)

	return ledger.Aggregate{Id: id, Events: events, Revision: ledger.RevisionOf(events)}, nil
}

func (s *EventStore) Commit(_ context.Context, changes ...ledger.Change) error {
	if err := ledger.ValidateChanges(changes); err != nil {
		return err
	}

	s.lk.Lock()
	defer s.lk.Unlock()

	for _, change := range changes {
		if change.Options.ExpectedRevision == "" {
			continue
		}

		current := ledger.RevisionOf(s.streams[change.Account.Encode()])
		if current != change.Options.ExpectedRevision {
			return errors.Wrapf(ledger.RevisionConflict, "%s is at %s, expected %s", change.Account, current, change.Options.ExpectedRevision)
		}
	}

	now := time.Now()
	recorded := make([][]ledger.RecordedEvent, len(changes))
	for i, change := range changes {
		events, err := s.revisions.Record(now, change)
		if err != nil {
			return err
		}
		recorded[i] = events
	}

	for i, change := range changes {
		id := change.Account.Encode()
		s.streams[id] = append(s.streams[id], recorded[i]...)
	}

	return nil
}
