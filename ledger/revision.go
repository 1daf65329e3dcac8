package ledger

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Revision string

// InitialRevision is the revision of an account with no events.
const InitialRevision = Revision("00000000000000000000000000")

func (revision Revision) String() string {
	return string(revision)
}

func (revision Revision) Timestamp() Timestamp {
	v := ulid.MustParse(string(revision))
	return TimestampFromTime(ulid.Time(v.Time()))
}

type RevisionGenerator struct {
	lk      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewRevisionGenerator() *RevisionGenerator {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)

	return &RevisionGenerator{
		entropy: entropy,
	}
}

func (g *RevisionGenerator) NewRevision(t time.Time) Revision {
	g.lk.Lock()
	defer g.lk.Unlock()

	return Revision(ulid.MustNew(ulid.Timestamp(t), g.entropy).String())
}

// Record turns a change into recorded events, one fresh revision per event.
// The change's head revision is the revision of its last event.
func (g *RevisionGenerator) Record(now time.Time, change Change) ([]RecordedEvent, error) {
	timestamp := TimestampFromTime(now)
	recorded := make([]RecordedEvent, len(change.Events))

	for index, event := range change.Events {
		data, err := MarshalToData(event)
		if err != nil {
			return nil, err
		}

		revision := g.NewRevision(now)
		recorded[index] = RecordedEvent{
			AccountId: change.Account,
			Revision:  revision,
			EventID:   EventID(revision),
			EventType: EventTypeOf(event),
			Timestamp: timestamp,
			Metadata:  change.Options.RecordedEventMetadata,
			Data:      data,
		}
	}

	return recorded, nil
}
