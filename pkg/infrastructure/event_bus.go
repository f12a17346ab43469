package infrastructure

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/mateusmacedo/go-schedule/pkg/application"
)

// simpleEventBus entrega eventos aos manipuladores em goroutines e aguarda todos.
type simpleEventBus struct {
	handlers map[string][]application.RawEventHandler
	mu       sync.RWMutex
	logger   application.AppLogger
	metrics  *Metrics
}

func NewSimpleEventBus(logger application.AppLogger, metrics *Metrics) application.EventBus {
	return &simpleEventBus{
		handlers: make(map[string][]application.RawEventHandler),
		logger:   logger,
		metrics:  metrics,
	}
}

func (bus *simpleEventBus) RegisterHandler(eventName string, handler application.RawEventHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[eventName] = append(bus.handlers[eventName], handler)
}

func (bus *simpleEventBus) Publish(ctx context.Context, event application.NamedEvent) error {
	name := event.EventName()

	bus.mu.RLock()
	handlers := append([]application.RawEventHandler(nil), bus.handlers[name]...)
	bus.mu.RUnlock()

	if bus.metrics != nil {
		bus.metrics.EventsTotal.WithLabelValues(name).Inc()
	}
	if len(handlers) == 0 {
		application.LogDebug(ctx, bus.logger, "no handler registered for event", map[string]interface{}{
			"event_name": name,
		})
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(handlers))
	for i, handler := range handlers {
		wg.Add(1)
		go func(i int, h application.RawEventHandler) {
			defer wg.Done()
			errs[i] = h(ctx, event)
		}(i, handler)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		application.LogError(ctx, bus.logger, "event publishing interrupted", ctx.Err(), map[string]interface{}{
			"event_name": name,
		})
		return ctx.Err()
	case <-done:
	}

	var combined error
	for _, err := range errs {
		if err != nil {
			combined = errors.CombineErrors(combined, err)
		}
	}
	if combined != nil {
		application.LogError(ctx, bus.logger, "error handling event", combined, map[string]interface{}{
			"event_name": name,
		})
		return combined
	}
	return nil
}
