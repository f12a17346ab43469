package domain

import "time"

// Event representa um evento no sistema.
type Event[T any] interface {
	EventName() string
	Payload() T
	OccurredAt() time.Time
}

type event[T any] struct {
	name       string
	payload    T
	occurredAt time.Time
}

func (e event[T]) EventName() string {
	return e.name
}

func (e event[T]) Payload() T {
	return e.payload
}

func (e event[T]) OccurredAt() time.Time {
	return e.occurredAt
}

// NewEvent cria um evento datado em UTC no momento da chamada.
func NewEvent[T any](name string, payload T) Event[T] {
	return event[T]{name: name, payload: payload, occurredAt: time.Now().UTC()}
}
