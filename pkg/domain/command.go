package domain

// Command representa uma intenção de alterar o estado do sistema.
type Command[T any] interface {
	CommandName() string
	Payload() T
	Metadata() Metadata
}

type command[T any] struct {
	name     string
	payload  T
	metadata Metadata
}

func (c command[T]) CommandName() string {
	return c.name
}

func (c command[T]) Payload() T {
	return c.payload
}

func (c command[T]) Metadata() Metadata {
	return c.metadata
}

// NewCommand cria um comando nomeado com o payload e os metadados informados.
func NewCommand[T any](name string, payload T, metadata Metadata) Command[T] {
	if metadata == nil {
		metadata = Metadata{}
	}
	return command[T]{name: name, payload: payload, metadata: metadata}
}
