package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mateusmacedo/go-schedule/pkg/application"
	"github.com/mateusmacedo/go-schedule/pkg/domain"
)

type simpleCommandBus struct {
	handlers map[string]application.RawCommandHandler
	mu       sync.RWMutex
	logger   application.AppLogger
	metrics  *Metrics
}

// NewSimpleCommandBus cria um barramento síncrono em processo. metrics pode ser nil.
func NewSimpleCommandBus(logger application.AppLogger, metrics *Metrics) application.CommandBus {
	return &simpleCommandBus{
		handlers: make(map[string]application.RawCommandHandler),
		logger:   logger,
		metrics:  metrics,
	}
}

func (bus *simpleCommandBus) RegisterHandler(commandName string, handler application.RawCommandHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[commandName] = handler
}

func (bus *simpleCommandBus) Dispatch(ctx context.Context, command application.NamedCommand) (any, error) {
	name := command.CommandName()

	bus.mu.RLock()
	handler, found := bus.handlers[name]
	bus.mu.RUnlock()

	if !found {
		return nil, errors.Wrapf(application.ErrNoHandler, "command %s", name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	begin := time.Now()
	result, err := handler(ctx, command)
	if bus.metrics != nil {
		bus.metrics.CommandsTotal.WithLabelValues(name, outcome(err)).Inc()
		bus.metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(begin).Seconds())
	}

	fields := map[string]interface{}{
		"command_name":   name,
		"correlation_id": command.Metadata().Get(domain.MetadataCorrelationID),
		"took":           time.Since(begin).String(),
	}
	if err != nil {
		application.LogError(ctx, bus.logger, "command failed", err, fields)
		return nil, err
	}
	application.LogDebug(ctx, bus.logger, "command handled", fields)
	return result, nil
}
