package infrastructure

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/mateusmacedo/go-schedule/pkg/application"
)

type simpleQueryBus struct {
	handlers map[string]application.RawQueryHandler
	mu       sync.RWMutex
	metrics  *Metrics
}

func NewSimpleQueryBus(metrics *Metrics) application.QueryBus {
	return &simpleQueryBus{
		handlers: make(map[string]application.RawQueryHandler),
		metrics:  metrics,
	}
}

func (bus *simpleQueryBus) RegisterHandler(queryName string, handler application.RawQueryHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[queryName] = handler
}

func (bus *simpleQueryBus) Dispatch(ctx context.Context, query application.NamedQuery) (any, error) {
	bus.mu.RLock()
	handler, found := bus.handlers[query.QueryName()]
	bus.mu.RUnlock()

	if !found {
		return nil, errors.Wrapf(application.ErrNoHandler, "query %s", query.QueryName())
	}

	type response struct {
		result any
		err    error
	}
	done := make(chan response, 1)

	go func() {
		result, err := handler(ctx, query)
		done <- response{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		bus.observe(query.QueryName(), ctx.Err())
		return nil, ctx.Err()
	case resp := <-done:
		bus.observe(query.QueryName(), resp.err)
		return resp.result, resp.err
	}
}

func (bus *simpleQueryBus) observe(name string, err error) {
	if bus.metrics != nil {
		bus.metrics.QueriesTotal.WithLabelValues(name, outcome(err)).Inc()
	}
}
