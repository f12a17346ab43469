package application

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/mateusmacedo/go-schedule/pkg/domain"
)

// NamedEvent é qualquer evento, sem o tipo do payload.
type NamedEvent interface {
	EventName() string
}

type EventHandler[T any] interface {
	Handle(ctx context.Context, event domain.Event[T]) error
}

type EventHandlerFunc[T any] func(ctx context.Context, event domain.Event[T]) error

func (f EventHandlerFunc[T]) Handle(ctx context.Context, event domain.Event[T]) error {
	return f(ctx, event)
}

type RawEventHandler func(ctx context.Context, event NamedEvent) error

// EventBus entrega cada evento a todos os manipuladores registrados para o nome.
type EventBus interface {
	RegisterHandler(eventName string, handler RawEventHandler)
	Publish(ctx context.Context, event NamedEvent) error
}

func RegisterEventHandler[T any](bus EventBus, eventName string, handler EventHandler[T]) {
	bus.RegisterHandler(eventName, func(ctx context.Context, event NamedEvent) error {
		typed, ok := event.(domain.Event[T])
		if !ok {
			return errors.Wrapf(ErrUnexpectedType, "event %s: got %T", eventName, event)
		}
		return handler.Handle(ctx, typed)
	})
}
