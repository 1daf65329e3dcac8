package ledger

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
var entropyLock sync.Mutex

func NewEventStoreValidationSuite(ctx context.Context, store EventStore) *EventStoreValidationSuite {
	return &EventStoreValidationSuite{
		store: store,
		ctx:   ctx,
		faker: faker.New(),
	}
}

// EventStoreValidationSuite checks the behaviour every EventStore must share.
type EventStoreValidationSuite struct {
	store EventStore
	ctx   context.Context
	faker faker.Faker
}

type StoreValidationEvent struct {
	TestStringValue string `json:"test_string_value"`
	TestIntValue    int    `json:"test_int_value"`
}

func (s *EventStoreValidationSuite) Run(t *testing.T) {
	t.Run("loads an initial revision", s.LoadInitial)
	t.Run("loads a revision with events", s.LoadsRevisionWithEvents)
	t.Run("commits a single event", s.CommitsSingleEvent)
	t.Run("commits multiple events in a single change", s.CommitsMultipleEvents)
	t.Run("commits several accounts together", s.CommitsSeveralAccounts)
	t.Run("returns a revision conflict with an initial revision", s.RevisionConflictOnInitialRevision)
	t.Run("returns a revision conflict on subsequent revision", s.RevisionConflictOnSubsequentRevision)
	t.Run("applies nothing when one change conflicts", s.ConflictIsAtomic)
	t.Run("accepts the expected revision", s.AcceptsExpectedRevision)
	t.Run("rejects empty commits", s.RejectsEmptyCommits)
	t.Run("supports causation id", s.Causation)
}

func (s *EventStoreValidationSuite) MakeTestAccountId() AccountId {
	entropyLock.Lock()
	defer entropyLock.Unlock()

	return AccountId{
		Type: "go-test",
		Key:  ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String(),
	}
}

func (s *EventStoreValidationSuite) MakeTestEvent() StoreValidationEvent {
	return StoreValidationEvent{
		TestStringValue: s.faker.Lorem().Sentence(10),
		TestIntValue:    s.faker.Int(),
	}
}

func (s *EventStoreValidationSuite) MakeTestEvents(count int) []DomainEvent {
	events := make([]DomainEvent, count)
	for i := 0; i < count; i++ {
		events[i] = s.MakeTestEvent()
	}

	return events
}

func (s *EventStoreValidationSuite) publish(id AccountId, options PublishOptions, events ...DomainEvent) error {
	return s.store.Commit(s.ctx, NewChange(id, options, events...))
}

func (s *EventStoreValidationSuite) LoadInitial(t *testing.T) {
	id := s.MakeTestAccountId()
	aggregate, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)

	assert.Empty(t, aggregate.Events)
	assert.Equal(t, InitialRevision, aggregate.Revision)
	assert.EqualValues(t, id, aggregate.Id)
}

func (s *EventStoreValidationSuite) CommitsSingleEvent(t *testing.T) {
	id := s.MakeTestAccountId()
	err := s.publish(id, Options(), s.MakeTestEvent())

	assert.NoError(t, err)
}

func (s *EventStoreValidationSuite) CommitsMultipleEvents(t *testing.T) {
	id := s.MakeTestAccountId()
	require.NoError(t, s.publish(id, Options(), s.MakeTestEvents(17)...))

	aggregate, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)
	assert.Len(t, aggregate.Events, 17)
}

func (s *EventStoreValidationSuite) LoadsRevisionWithEvents(t *testing.T) {
	id := s.MakeTestAccountId()
	event := s.MakeTestEvent()

	require.NoError(t, s.publish(id, Options(), event))

	aggregate, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)

	require.Len(t, aggregate.Events, 1)
	assert.EqualValues(t, id, aggregate.Id)
	assert.Equal(t, aggregate.Events[0].Revision, aggregate.Revision)
	assert.Equal(t, EventTypeOf(event), aggregate.Events[0].EventType)

	var decoded StoreValidationEvent
	require.NoError(t, UnmarshalFromData(aggregate.Events[0].Data, &decoded))
	assert.Equal(t, event, decoded)
}

func (s *EventStoreValidationSuite) CommitsSeveralAccounts(t *testing.T) {
	first := s.MakeTestAccountId()
	second := s.MakeTestAccountId()

	err := s.store.Commit(
		s.ctx,
		NewChange(first, Options(WithExpectedRevision(InitialRevision)), s.MakeTestEvent()),
		NewChange(second, Options(WithExpectedRevision(InitialRevision)), s.MakeTestEvents(2)...),
	)
	require.NoError(t, err)

	a, err := s.store.Load(s.ctx, first)
	require.NoError(t, err)
	b, err := s.store.Load(s.ctx, second)
	require.NoError(t, err)

	assert.Len(t, a.Events, 1)
	assert.Len(t, b.Events, 2)
}

func (s *EventStoreValidationSuite) RevisionConflictOnInitialRevision(t *testing.T) {
	id := s.MakeTestAccountId()
	event := s.MakeTestEvent()

	require.NoError(t, s.publish(id, Options(), event))

	err := s.publish(id, Options(WithExpectedRevision(InitialRevision)), event)
	assert.ErrorIs(t, err, RevisionConflict)
}

func (s *EventStoreValidationSuite) RevisionConflictOnSubsequentRevision(t *testing.T) {
	id := s.MakeTestAccountId()
	event := s.MakeTestEvent()

	require.NoError(t, s.publish(id, Options(), event))

	first, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)

	require.NoError(t, s.publish(id, Options(), event))

	err = s.publish(id, Options(WithExpectedRevision(first.Revision)), event)
	assert.ErrorIs(t, err, RevisionConflict)
}

func (s *EventStoreValidationSuite) ConflictIsAtomic(t *testing.T) {
	fresh := s.MakeTestAccountId()
	existing := s.MakeTestAccountId()

	require.NoError(t, s.publish(existing, Options(), s.MakeTestEvent()))

	err := s.store.Commit(
		s.ctx,
		NewChange(fresh, Options(WithExpectedRevision(InitialRevision)), s.MakeTestEvent()),
		NewChange(existing, Options(WithExpectedRevision(InitialRevision)), s.MakeTestEvent()),
	)
	assert.ErrorIs(t, err, RevisionConflict)

	untouched, err := s.store.Load(s.ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, InitialRevision, untouched.Revision)
	assert.Empty(t, untouched.Events)

	unchanged, err := s.store.Load(s.ctx, existing)
	require.NoError(t, err)
	assert.Len(t, unchanged.Events, 1)
}

func (s *EventStoreValidationSuite) AcceptsExpectedRevision(t *testing.T) {
	id := s.MakeTestAccountId()

	require.NoError(t, s.publish(id, Options(WithExpectedRevision(InitialRevision)), s.MakeTestEvent()))

	first, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)

	require.NoError(t, s.publish(id, Options(WithExpectedRevision(first.Revision)), s.MakeTestEvent()))

	second, err := s.store.Load(s.ctx, id)
	require.NoError(t, err)
	assert.Len(t, second.Events, 2)
	assert.NotEqual(t, first.Revision, second.Revision)
}

func (s *EventStoreValidationSuite) RejectsEmptyCommits(t *testing.T) {
	assert.ErrorIs(t, s.store.Commit(s.ctx), ErrInvalidChange)
	assert.ErrorIs(t, s.store.Commit(s.ctx, NewChange(s.MakeTestAccountId(), Options())), ErrInvalidChange)
}

func (s *EventStoreValidationSuite) Last(id AccountId) (*RecordedEvent, error) {
	loaded, err := s.store.Load(s.ctx, id)
	if err != nil {
		return nil, err
	}

	length := len(loaded.Events)
	if length == 0 {
		return nil, errors.New("no events found")
	}

	return &loaded.Events[length-1], nil
}

func (s *EventStoreValidationSuite) Causation(t *testing.T) {
	id := s.MakeTestAccountId()
	event := s.MakeTestEvent()

	require.NoError(t, s.publish(id, Options(), event))

	first, err := s.Last(id)
	require.NoError(t, err)

	correlationId := CorrelationID(strings.Join([]string{"event/", first.EventID.String()}, ""))

	require.NoError(t, s.publish(id, Options(WithCausationId(correlationId, first.EventID)), event))

	second, err := s.Last(id)
	require.NoError(t, err)

	assert.Equal(t, correlationId, second.Metadata.CorrelationId)
	assert.Equal(t, first.EventID, second.Metadata.CausationId)
}
