package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/go-schedule/internal/schedule/application"
	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
	"github.com/mateusmacedo/go-schedule/internal/schedule/infrastructure"
	pkgApp "github.com/mateusmacedo/go-schedule/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-schedule/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-schedule/pkg/infrastructure"
)

type eventRecorder struct {
	mu    sync.Mutex
	names []string
}

func (r *eventRecorder) record(_ context.Context, event pkgApp.NamedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, event.EventName())
	return nil
}

func (r *eventRecorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

type buses struct {
	commands pkgApp.CommandBus
	queries  pkgApp.QueryBus
	events   *eventRecorder
}

func newBuses() buses {
	logger := pkgApp.NopLogger{}
	eventBus := pkgInfra.NewSimpleEventBus(logger, nil)
	recorder := &eventRecorder{}
	for _, name := range []string{
		application.LocationCreatedEvent,
		application.VoyageCreatedEvent,
		application.TicketSoldEvent,
		application.AvailabilityChangedEvent,
		application.ScheduleCreatedEvent,
		application.ScheduleDeletedEvent,
	} {
		eventBus.RegisterHandler(name, recorder.record)
	}

	b := buses{
		commands: pkgInfra.NewSimpleCommandBus(logger, nil),
		queries:  pkgInfra.NewSimpleQueryBus(nil),
		events:   recorder,
	}
	application.NewHandlers(infrastructure.NewInMemoryStore(logger), eventBus, logger).Register(b.commands, b.queries)
	return b
}

func dispatch[T any, R any](t *testing.T, b buses, name string, payload T) R {
	t.Helper()
	meta := pkgDomain.Metadata{}.With(pkgDomain.MetadataCorrelationID, "corr-1")
	result, err := pkgApp.DispatchCommand[T, R](context.Background(), b.commands, pkgDomain.NewCommand(name, payload, meta))
	require.NoError(t, err)
	return result
}

func TestHandlersScheduleFlow(t *testing.T) {
	b := newBuses()

	origin := dispatch[application.CreateLocationData, domain.LocationEntry](t, b, application.CreateLocationCommand,
		application.CreateLocationData{Title: "Faro", Latitude: 37.01, Longitude: -7.93})
	destination := dispatch[application.CreateLocationData, domain.LocationEntry](t, b, application.CreateLocationCommand,
		application.CreateLocationData{Title: "Évora", Latitude: 38.57, Longitude: -7.91})
	entry := dispatch[application.CreateScheduleData, domain.ScheduleEntry](t, b, application.CreateScheduleCommand,
		application.CreateScheduleData{Date: scheduleDay})

	departure := scheduleDay.Start().Add(7 * time.Hour)
	voyage := dispatch[application.AddVoyageToScheduleData, domain.Voyage](t, b, application.AddVoyageToScheduleCommand,
		application.AddVoyageToScheduleData{
			ScheduleID: entry.ID,
			CreateVoyageData: application.CreateVoyageData{
				Departure: departure, Arrival: departure.Add(2 * time.Hour),
				OriginID: origin.ID, DestinationID: destination.ID,
				MarketingNumber: 12, VehicleNumber: "AB-12",
			},
		})
	dispatch[application.SetAvailabilityData, domain.Availability](t, b, application.SetAvailabilityCommand,
		application.SetAvailabilityData{ScheduleID: entry.ID, VoyageID: voyage.ID, RemainingSeats: 20, Bookings: 0})
	dispatch[application.CreateTicketData, domain.Ticket](t, b, application.CreateTicketCommand,
		application.CreateTicketData{VoyageID: voyage.ID, TicketData: application.TicketData{Price: 9.5}})

	summary, err := pkgApp.DispatchQuery[application.GetScheduleSummaryData, application.ScheduleSummary](context.Background(), b.queries,
		pkgDomain.NewQuery(application.GetScheduleSummaryQuery, application.GetScheduleSummaryData{Date: scheduleDay}))
	require.NoError(t, err)
	assert.Equal(t, scheduleDay, summary.Date)
	assert.Equal(t, 1, summary.TotalVoyages)
	assert.Equal(t, 20, summary.TotalSeats)
	assert.Equal(t, 1, summary.SoldSeats)

	load, err := pkgApp.DispatchQuery[application.GetVoyageLoadData, domain.Load](context.Background(), b.queries,
		pkgDomain.NewQuery(application.GetVoyageLoadQuery, application.GetVoyageLoadData{Date: scheduleDay, VoyageID: voyage.ID}))
	require.NoError(t, err)
	assert.Equal(t, domain.Load{TotalSeats: 20, SoldSeats: 1, RemainingSeats: 20}, load)

	deleted := dispatch[application.DeleteScheduleData, int64](t, b, application.DeleteScheduleCommand,
		application.DeleteScheduleData{ScheduleID: entry.ID})
	assert.Equal(t, entry.ID, deleted)

	assert.ElementsMatch(t, []string{
		application.LocationCreatedEvent,
		application.LocationCreatedEvent,
		application.ScheduleCreatedEvent,
		application.VoyageCreatedEvent,
		application.AvailabilityChangedEvent,
		application.TicketSoldEvent,
		application.ScheduleDeletedEvent,
	}, b.events.seen())
}

func TestHandlersFailedCommandPublishesNothing(t *testing.T) {
	b := newBuses()

	_, err := pkgApp.DispatchCommand[application.CreateVoyageData, domain.Voyage](context.Background(), b.commands,
		pkgDomain.NewCommand(application.CreateVoyageCommand, application.CreateVoyageData{
			Departure: scheduleDay.Start(), Arrival: scheduleDay.End(),
			OriginID: 1, DestinationID: 2, VehicleNumber: "X",
		}, nil))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, b.events.seen())
}

func TestHandlersRejectCanceledContext(t *testing.T) {
	b := newBuses()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.commands.Dispatch(ctx, pkgDomain.NewCommand(application.CreateLocationCommand,
		application.CreateLocationData{Title: "Beja"}, nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandlersWrongPayloadType(t *testing.T) {
	b := newBuses()

	_, err := b.commands.Dispatch(context.Background(), pkgDomain.NewCommand(application.CreateLocationCommand, "Beja", nil))
	assert.True(t, errors.Is(err, pkgApp.ErrUnexpectedType))
}
