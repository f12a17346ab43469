package adapter

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cockroachdb/errors"

	"github.com/mateusmacedo/go-schedule/pkg/application"
	"github.com/mateusmacedo/go-schedule/pkg/domain"
)

const (
	metadataCommandName = "command_name"
	metadataMessageID   = "message_id"
)

type commandDecoder func(payload []byte, metadata domain.Metadata) (application.NamedCommand, error)

// CommandQueue publica comandos num tópico e os consome um a um,
// repassando cada um ao barramento em processo.
type CommandQueue struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	bus        application.CommandBus
	topic      string
	logger     application.AppLogger

	mu       sync.RWMutex
	decoders map[string]commandDecoder
	done     chan struct{}
}

func NewCommandQueue(publisher message.Publisher, subscriber message.Subscriber, bus application.CommandBus, topic string, logger application.AppLogger) *CommandQueue {
	return &CommandQueue{
		publisher:  publisher,
		subscriber: subscriber,
		bus:        bus,
		topic:      topic,
		logger:     logger,
		decoders:   make(map[string]commandDecoder),
	}
}

// RegisterQueuedCommand habilita o comando para trafegar pela fila.
func RegisterQueuedCommand[T any](q *CommandQueue, commandName string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.decoders[commandName] = func(payload []byte, metadata domain.Metadata) (application.NamedCommand, error) {
		var data T
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, errors.Wrapf(err, "decoding %s payload", commandName)
		}
		return domain.NewCommand(commandName, data, metadata), nil
	}
}

func (q *CommandQueue) decoder(commandName string) (commandDecoder, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	d, ok := q.decoders[commandName]
	return d, ok
}

// EnqueueCommand serializa o payload do comando e o publica na fila.
func EnqueueCommand[T any](ctx context.Context, q *CommandQueue, command domain.Command[T]) (string, error) {
	payload, err := application.MarshalPayload(command.Payload())
	if err != nil {
		return "", errors.Wrapf(err, "encoding %s payload", command.CommandName())
	}
	return q.EnqueueRaw(ctx, command.CommandName(), payload, command.Metadata())
}

// EnqueueRaw publica um payload JSON já serializado. O payload é validado
// contra o tipo registrado antes da publicação.
func (q *CommandQueue) EnqueueRaw(ctx context.Context, commandName string, payload []byte, metadata domain.Metadata) (string, error) {
	decode, ok := q.decoder(commandName)
	if !ok {
		return "", errors.Wrapf(application.ErrNoHandler, "command %s is not queueable", commandName)
	}
	if _, err := decode(payload, metadata); err != nil {
		return "", err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	for k, v := range metadata {
		msg.Metadata.Set(k, v)
	}
	msg.Metadata.Set(metadataCommandName, commandName)

	if err := q.publisher.Publish(q.topic, msg); err != nil {
		application.LogError(ctx, q.logger, "error publishing command", err, map[string]interface{}{
			"command_name": commandName,
		})
		return "", errors.Wrap(err, "publishing command")
	}

	application.LogInfo(ctx, q.logger, "command enqueued", map[string]interface{}{
		"command_name": commandName,
		"message_id":   msg.UUID,
	})
	return msg.UUID, nil
}

// Start assina o tópico e processa as mensagens em segundo plano até ctx ser cancelado.
func (q *CommandQueue) Start(ctx context.Context) error {
	messages, err := q.subscriber.Subscribe(ctx, q.topic)
	if err != nil {
		return errors.Wrapf(err, "subscribing to %s", q.topic)
	}

	q.done = make(chan struct{})
	go func() {
		defer close(q.done)
		for msg := range messages {
			q.process(ctx, msg)
		}
	}()
	return nil
}

// Done fecha quando o consumo termina. Só é válido após Start.
func (q *CommandQueue) Done() <-chan struct{} {
	return q.done
}

func (q *CommandQueue) process(ctx context.Context, msg *message.Message) {
	commandName := msg.Metadata.Get(metadataCommandName)
	fields := map[string]interface{}{
		"command_name": commandName,
		"message_id":   msg.UUID,
	}

	decode, ok := q.decoder(commandName)
	if !ok {
		application.LogError(ctx, q.logger, "dropping message for unknown command", nil, fields)
		msg.Ack()
		return
	}

	metadata := domain.Metadata{metadataMessageID: msg.UUID}
	for k, v := range msg.Metadata {
		if k != metadataCommandName {
			metadata[k] = v
		}
	}

	command, err := decode(msg.Payload, metadata)
	if err != nil {
		application.LogError(ctx, q.logger, "dropping undecodable command", err, fields)
		msg.Ack()
		return
	}

	result, err := q.bus.Dispatch(ctx, command)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			msg.Nack()
			return
		}
		application.LogError(ctx, q.logger, "queued command failed", err, fields)
		msg.Ack()
		return
	}

	fields["result"] = result
	application.LogInfo(ctx, q.logger, "queued command handled", fields)
	msg.Ack()
}
