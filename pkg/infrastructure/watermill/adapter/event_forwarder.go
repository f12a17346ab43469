package adapter

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cockroachdb/errors"

	"github.com/mateusmacedo/go-schedule/pkg/application"
	"github.com/mateusmacedo/go-schedule/pkg/domain"
)

const metadataEventName = "event_name"

// EventForwarder republica eventos de domínio num tópico externo.
type EventForwarder struct {
	publisher message.Publisher
	topic     string
	logger    application.AppLogger
}

func NewEventForwarder(publisher message.Publisher, topic string, logger application.AppLogger) *EventForwarder {
	return &EventForwarder{publisher: publisher, topic: topic, logger: logger}
}

type eventEnvelope[T any] struct {
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    T         `json:"payload"`
}

// ForwardEvent registra o encaminhamento do evento no barramento.
func ForwardEvent[T any](bus application.EventBus, f *EventForwarder, eventName string) {
	application.RegisterEventHandler[T](bus, eventName, application.EventHandlerFunc[T](
		func(ctx context.Context, event domain.Event[T]) error {
			return forward(ctx, f, event)
		},
	))
}

func forward[T any](ctx context.Context, f *EventForwarder, event domain.Event[T]) error {
	payload, err := application.MarshalPayload(eventEnvelope[T]{
		Name:       event.EventName(),
		OccurredAt: event.OccurredAt(),
		Payload:    event.Payload(),
	})
	if err != nil {
		return errors.Wrapf(err, "encoding event %s", event.EventName())
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metadataEventName, event.EventName())
	if err := f.publisher.Publish(f.topic, msg); err != nil {
		application.LogError(ctx, f.logger, "error forwarding event", err, map[string]interface{}{
			"event_name": event.EventName(),
		})
		return errors.Wrap(err, "publishing event")
	}
	return nil
}
