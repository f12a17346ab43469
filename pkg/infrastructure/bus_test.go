package infrastructure_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/go-schedule/pkg/application"
	"github.com/mateusmacedo/go-schedule/pkg/domain"
	"github.com/mateusmacedo/go-schedule/pkg/infrastructure"
)

type greet struct{ Name string }

func TestCommandBusDispatch(t *testing.T) {
	metrics := infrastructure.NewMetrics(prometheus.NewRegistry())
	bus := infrastructure.NewSimpleCommandBus(application.NopLogger{}, metrics)

	application.RegisterCommandHandler[greet, string](bus, "Greet", application.CommandHandlerFunc[greet, string](
		func(_ context.Context, c domain.Command[greet]) (string, error) {
			if c.Payload().Name == "" {
				return "", errors.New("name required")
			}
			return "olá " + c.Payload().Name + " " + c.Metadata().Get(domain.MetadataCorrelationID), nil
		}))

	meta := domain.Metadata{}.With(domain.MetadataCorrelationID, "c-1")
	got, err := application.DispatchCommand[greet, string](context.Background(), bus, domain.NewCommand("Greet", greet{Name: "Ana"}, meta))
	require.NoError(t, err)
	assert.Equal(t, "olá Ana c-1", got)

	_, err = application.DispatchCommand[greet, string](context.Background(), bus, domain.NewCommand("Greet", greet{}, nil))
	assert.EqualError(t, err, "name required")

	_, err = application.DispatchCommand[greet, string](context.Background(), bus, domain.NewCommand("Missing", greet{}, nil))
	assert.True(t, errors.Is(err, application.ErrNoHandler))

	_, err = application.DispatchCommand[greet, int](context.Background(), bus, domain.NewCommand("Greet", greet{Name: "Rui"}, nil))
	assert.True(t, errors.Is(err, application.ErrUnexpectedType))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues("Greet", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CommandsTotal.WithLabelValues("Greet", "error")))
}

func TestQueryBusHonorsContext(t *testing.T) {
	bus := infrastructure.NewSimpleQueryBus(nil)
	release := make(chan struct{})
	defer close(release)

	application.RegisterQueryHandler[greet, string](bus, "Slow", application.QueryHandlerFunc[greet, string](
		func(context.Context, domain.Query[greet]) (string, error) {
			<-release
			return "tarde", nil
		}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := application.DispatchQuery[greet, string](ctx, bus, domain.NewQuery("Slow", greet{}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEventBusFansOut(t *testing.T) {
	metrics := infrastructure.NewMetrics(nil)
	bus := infrastructure.NewSimpleEventBus(application.NopLogger{}, metrics)

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		application.RegisterEventHandler[greet](bus, "Greeted", application.EventHandlerFunc[greet](
			func(_ context.Context, e domain.Event[greet]) error {
				assert.Equal(t, "Ana", e.Payload().Name)
				calls.Add(1)
				return nil
			}))
	}
	bus.RegisterHandler("Greeted", func(context.Context, application.NamedEvent) error {
		return errors.New("handler failed")
	})

	err := bus.Publish(context.Background(), domain.NewEvent("Greeted", greet{Name: "Ana"}))
	assert.EqualError(t, err, "handler failed")
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EventsTotal.WithLabelValues("Greeted")))

	require.NoError(t, bus.Publish(context.Background(), domain.NewEvent("Nobody", greet{})))
}

func TestCommandMetadata(t *testing.T) {
	md := infrastructure.CommandMetadata(context.Background(), func() string { return "gen-1" })
	assert.Equal(t, "gen-1", md.Get(domain.MetadataCorrelationID))
	assert.Empty(t, md.Get(domain.MetadataRequestID))

	ctx := infrastructure.WithRequestID(context.Background(), "req-9")
	md = infrastructure.CommandMetadata(ctx, func() string { return "unused" })
	assert.Equal(t, "req-9", md.Get(domain.MetadataRequestID))
	assert.Equal(t, "req-9", md.Get(domain.MetadataCorrelationID))
}
