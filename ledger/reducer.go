package ledger

import "github.com/pkg/errors"

type Initializer[T any] interface {
	Initialize(evt *RecordedEvent) (*T, error)
}

// InitializerFunction builds state from the first event of an account,
// decoding its payload as E.
type InitializerFunction[T any, E any] func(evt *E) (*T, error)

func (f InitializerFunction[T, E]) Initialize(evt *RecordedEvent) (*T, error) {
	event, err := decodeEvent[E](evt)
	if err != nil {
		return nil, err
	}

	return f(event)
}

type Reducer[T any] interface {
	Reduce(state *T, evt *RecordedEvent) error
}

// ReducerFunction folds one later event, decoded as E, into state.
type ReducerFunction[T any, E any] func(state *T, evt *E) error

func (f ReducerFunction[T, E]) Reduce(state *T, evt *RecordedEvent) error {
	event, err := decodeEvent[E](evt)
	if err != nil {
		return err
	}

	return f(state, event)
}

func decodeEvent[E any](evt *RecordedEvent) (*E, error) {
	var event E
	if err := UnmarshalFromData(evt.Data, &event); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s at %s", evt.EventType, evt.Revision)
	}

	return &event, nil
}
