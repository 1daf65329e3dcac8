package ledger

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

type Initializers[T any] map[EventType]Initializer[T]

type Reducers[T any] map[EventType]Reducer[T]

type Renderer[T any] struct {
	Type         EntityType
	Initializers Initializers[T]
	Reducers     Reducers[T]
}

func (r *Renderer[T]) Render(ctx context.Context, aggregate Aggregate) (Entity[T], error) {
	_, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("render %s", r.Type))
	defer span.End()

	var state *T
	var err error

	for i := range aggregate.Events {
		event := &aggregate.Events[i]

		if state == nil {
			initializer := r.Initializers[event.EventType]
			if nil == initializer {
				continue
			}

			state, err = initializer.Initialize(event)
			if err != nil {
				return Entity[T]{}, errors.Wrap(err, fmt.Sprintf("failed to initialize state with %s", event.EventType))
			}
			continue
		}

		reducer := r.Reducers[event.EventType]
		if nil == reducer {
			continue
		}

		if err := reducer.Reduce(state, event); err != nil {
			return Entity[T]{}, errors.Wrap(err, fmt.Sprintf("failed to process update with %s", event.EventType))
		}
	}

	return Entity[T]{
		Account:  aggregate.Id,
		Revision: aggregate.Revision,
		Type:     r.Type,
		State:    state,
	}, nil
}
