package application

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/mateusmacedo/go-schedule/pkg/domain"
)

// ErrNoHandler é retornado quando nenhum manipulador foi registrado para o nome.
var ErrNoHandler = errors.New("no handler registered")

// ErrUnexpectedType indica que o barramento recebeu um comando ou resultado de tipo inesperado.
var ErrUnexpectedType = errors.New("unexpected message type")

// NamedCommand é qualquer comando, sem o tipo do payload.
type NamedCommand interface {
	CommandName() string
	Metadata() domain.Metadata
}

// CommandHandler define a interface para manipuladores de comando.
type CommandHandler[T any, R any] interface {
	Handle(ctx context.Context, command domain.Command[T]) (R, error)
}

// CommandHandlerFunc adapta uma função a CommandHandler.
type CommandHandlerFunc[T any, R any] func(ctx context.Context, command domain.Command[T]) (R, error)

func (f CommandHandlerFunc[T, R]) Handle(ctx context.Context, command domain.Command[T]) (R, error) {
	return f(ctx, command)
}

// RawCommandHandler é a forma sem tipos que o barramento armazena.
type RawCommandHandler func(ctx context.Context, command NamedCommand) (any, error)

// CommandBus define a interface para o barramento de comandos.
type CommandBus interface {
	RegisterHandler(commandName string, handler RawCommandHandler)
	Dispatch(ctx context.Context, command NamedCommand) (any, error)
}

// RegisterCommandHandler registra um manipulador tipado no barramento.
func RegisterCommandHandler[T any, R any](bus CommandBus, commandName string, handler CommandHandler[T, R]) {
	bus.RegisterHandler(commandName, func(ctx context.Context, command NamedCommand) (any, error) {
		typed, ok := command.(domain.Command[T])
		if !ok {
			return nil, errors.Wrapf(ErrUnexpectedType, "command %s: got %T", commandName, command)
		}
		return handler.Handle(ctx, typed)
	})
}

// DispatchCommand despacha o comando e converte o resultado para R.
func DispatchCommand[T any, R any](ctx context.Context, bus CommandBus, command domain.Command[T]) (R, error) {
	var zero R
	result, err := bus.Dispatch(ctx, command)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(R)
	if !ok {
		return zero, errors.Wrapf(ErrUnexpectedType, "command %s: result %T", command.CommandName(), result)
	}
	return typed, nil
}
