package application

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/mateusmacedo/go-schedule/pkg/domain"
)

// NamedQuery é qualquer consulta, sem o tipo do payload.
type NamedQuery interface {
	QueryName() string
}

// QueryHandler define a interface para manipuladores de consulta.
type QueryHandler[T any, R any] interface {
	Handle(ctx context.Context, query domain.Query[T]) (R, error)
}

type QueryHandlerFunc[T any, R any] func(ctx context.Context, query domain.Query[T]) (R, error)

func (f QueryHandlerFunc[T, R]) Handle(ctx context.Context, query domain.Query[T]) (R, error) {
	return f(ctx, query)
}

type RawQueryHandler func(ctx context.Context, query NamedQuery) (any, error)

// QueryBus define a interface para o barramento de consultas.
type QueryBus interface {
	RegisterHandler(queryName string, handler RawQueryHandler)
	Dispatch(ctx context.Context, query NamedQuery) (any, error)
}

func RegisterQueryHandler[T any, R any](bus QueryBus, queryName string, handler QueryHandler[T, R]) {
	bus.RegisterHandler(queryName, func(ctx context.Context, query NamedQuery) (any, error) {
		typed, ok := query.(domain.Query[T])
		if !ok {
			return nil, errors.Wrapf(ErrUnexpectedType, "query %s: got %T", queryName, query)
		}
		return handler.Handle(ctx, typed)
	})
}

func DispatchQuery[T any, R any](ctx context.Context, bus QueryBus, query domain.Query[T]) (R, error) {
	var zero R
	result, err := bus.Dispatch(ctx, query)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(R)
	if !ok {
		return zero, errors.Wrapf(ErrUnexpectedType, "query %s: result %T", query.QueryName(), result)
	}
	return typed, nil
}
