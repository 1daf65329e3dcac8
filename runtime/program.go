package runtime

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/weegigs/wee-greetings/chain"
)

type Program interface {
	ID() chain.PublicKey
	Invoke(ctx context.Context, ic *InvokeContext, ix Instruction) error
}

type Handler func(ctx context.Context, ic *InvokeContext, ix Instruction) error

// Router dispatches instructions on their leading discriminator.
type Router struct {
	names    map[Discriminator]string
	handlers map[Discriminator]Handler
}

func NewRouter() *Router {
	return &Router{
		names:    make(map[Discriminator]string),
		handlers: make(map[Discriminator]Handler),
	}
}

func (r *Router) Handle(name string, handler Handler) *Router {
	discriminator := InstructionDiscriminator(name)
	if r.handlers[discriminator] != nil {
		panic(fmt.Sprintf("multiple handlers registered for instruction %s", name))
	}

	r.names[discriminator] = name
	r.handlers[discriminator] = handler

	return r
}

func (r *Router) Route(ctx context.Context, ic *InvokeContext, ix Instruction) error {
	discriminator, ok := ix.Discriminator()
	if !ok {
		return errors.Wrap(ErrInvalidInstruction, "instruction data is shorter than a discriminator")
	}

	handler := r.handlers[discriminator]
	if handler == nil {
		return errors.Wrapf(ErrInvalidInstruction, "unknown instruction %x", discriminator[:])
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("invoke %s", r.names[discriminator]))
	defer span.End()

	return handler(ctx, ic, ix)
}
