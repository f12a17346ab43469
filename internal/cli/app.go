package cli

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mateusmacedo/go-schedule/internal/config"
	"github.com/mateusmacedo/go-schedule/internal/schedule"
	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
	"github.com/mateusmacedo/go-schedule/internal/schedule/infrastructure"
	pkgApp "github.com/mateusmacedo/go-schedule/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-schedule/pkg/infrastructure"
	"github.com/mateusmacedo/go-schedule/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/mateusmacedo/go-schedule/pkg/infrastructure/zaplogger/adapter"
)

const appName = "go-schedule"

type store interface {
	domain.UnitOfWork
	Close() error
}

type memoryStore struct {
	*infrastructure.InMemoryStore
}

func (memoryStore) Close() error { return nil }

type app struct {
	cfg       *config.Config
	logger    pkgApp.AppLogger
	registry  *prometheus.Registry
	store     store
	transport *adapter.Transport
	queue     *adapter.CommandQueue
	slice     *schedule.ScheduleSlice
}

func newLogger(cfg *config.Config) (pkgApp.AppLogger, error) {
	return zapAdapter.NewZapAppLogger(zapAdapter.Config{App: appName, Level: cfg.LogLevel})
}

func openStore(ctx context.Context, cfg *config.Config, logger pkgApp.AppLogger, migrate bool) (store, error) {
	if cfg.Store == config.StoreMemory {
		return memoryStore{infrastructure.NewInMemoryStore(logger)}, nil
	}
	gormStore, err := infrastructure.NewGormStore(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := gormStore.Migrate(ctx); err != nil {
			_ = gormStore.Close()
			return nil, err
		}
	}
	return gormStore, nil
}

// newApp monta as dependências. Com withQueue a fila de comandos e o
// encaminhamento de eventos ficam ligados ao transporte configurado.
func newApp(ctx context.Context, cfg *config.Config, withQueue bool) (*app, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "logger")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := pkgInfra.NewMetrics(registry)

	st, err := openStore(ctx, cfg, logger, withQueue)
	if err != nil {
		return nil, errors.Wrap(err, "store")
	}

	commandBus := pkgInfra.NewSimpleCommandBus(logger, metrics)
	queryBus := pkgInfra.NewSimpleQueryBus(metrics)
	eventBus := pkgInfra.NewSimpleEventBus(logger, metrics)

	a := &app{cfg: cfg, logger: logger, registry: registry, store: st}

	if withQueue {
		hostname, _ := os.Hostname()
		transport, err := adapter.NewTransport(adapter.TransportConfig{
			Kind:          cfg.QueueTransport,
			RedisAddr:     cfg.RedisAddr,
			KafkaBrokers:  cfg.KafkaBrokers,
			ConsumerGroup: appName,
			Consumer:      hostname,
		}, adapter.NewWatermillLoggerAdapter(logger))
		if err != nil {
			_ = st.Close()
			return nil, errors.Wrap(err, "queue transport")
		}
		a.transport = transport
		a.queue = adapter.NewCommandQueue(transport.Publisher, transport.Subscriber, commandBus, cfg.QueueTopic, logger)
		schedule.ForwardEvents(eventBus, adapter.NewEventForwarder(transport.Publisher, cfg.EventsTopic, logger))
	}

	a.slice = schedule.NewScheduleSlice(
		commandBus,
		queryBus,
		eventBus,
		st,
		a.queue,
		pkgInfra.GenerateUUID,
		logger,
		cfg.RequestTimeout,
	)
	if cfg.CommandRate > 0 {
		a.slice.LimitEnqueue(cfg.CommandRate, cfg.CommandBurst)
	}
	return a, nil
}

func (a *app) Close() error {
	var combined error
	if a.transport != nil {
		combined = errors.CombineErrors(combined, a.transport.Close())
	}
	return errors.CombineErrors(combined, a.store.Close())
}
