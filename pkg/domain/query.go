package domain

// Query representa uma consulta no sistema.
type Query[T any] interface {
	QueryName() string
	Payload() T
}

type query[T any] struct {
	name    string
	payload T
}

func (q query[T]) QueryName() string {
	return q.name
}

func (q query[T]) Payload() T {
	return q.payload
}

// NewQuery cria uma consulta nomeada.
func NewQuery[T any](name string, payload T) Query[T] {
	return query[T]{name: name, payload: payload}
}
