package schedule

import (
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/mateusmacedo/go-schedule/internal/schedule/application"
	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
	"github.com/mateusmacedo/go-schedule/internal/schedule/infrastructure"
	pkgApp "github.com/mateusmacedo/go-schedule/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-schedule/pkg/domain"
	"github.com/mateusmacedo/go-schedule/pkg/infrastructure/watermill/adapter"
)

type ScheduleSlice struct {
	handlers    *application.Handlers
	httpHandler *infrastructure.ScheduleHTTPHandler
}

// NewScheduleSlice registra os manipuladores nos barramentos. queue pode ser nil
// quando a fila de comandos não está em uso.
func NewScheduleSlice(
	commandBus pkgApp.CommandBus,
	queryBus pkgApp.QueryBus,
	eventBus pkgApp.EventBus,
	uow domain.UnitOfWork,
	queue *adapter.CommandQueue,
	idGenerator pkgDomain.IDGenerator[string],
	logger pkgApp.AppLogger,
	requestTimeout time.Duration,
) *ScheduleSlice {
	handlers := application.NewHandlers(uow, eventBus, logger)
	handlers.Register(commandBus, queryBus)

	if queue != nil {
		RegisterQueuedCommands(queue)
	}

	httpHandler := infrastructure.NewScheduleHTTPHandler(commandBus, queryBus, queue, idGenerator, logger, requestTimeout)

	return &ScheduleSlice{
		handlers:    handlers,
		httpHandler: httpHandler,
	}
}

func (s *ScheduleSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}

// LimitEnqueue limita quantos comandos por segundo entram na fila via HTTP.
func (s *ScheduleSlice) LimitEnqueue(perSecond float64, burst int) {
	s.httpHandler.LimitEnqueue(rate.Limit(perSecond), burst)
}

func (s *ScheduleSlice) Schedules() *application.ScheduleService {
	return s.handlers.Schedules()
}

// RegisterQueuedCommands habilita todos os comandos para POST /commands/{name}.
func RegisterQueuedCommands(q *adapter.CommandQueue) {
	adapter.RegisterQueuedCommand[application.CreateLocationData](q, application.CreateLocationCommand)
	adapter.RegisterQueuedCommand[application.UpdateLocationData](q, application.UpdateLocationCommand)
	adapter.RegisterQueuedCommand[application.DeleteLocationData](q, application.DeleteLocationCommand)
	adapter.RegisterQueuedCommand[application.CreateVoyageData](q, application.CreateVoyageCommand)
	adapter.RegisterQueuedCommand[application.UpdateVoyageData](q, application.UpdateVoyageCommand)
	adapter.RegisterQueuedCommand[application.DeleteVoyageData](q, application.DeleteVoyageCommand)
	adapter.RegisterQueuedCommand[application.CreateTicketData](q, application.CreateTicketCommand)
	adapter.RegisterQueuedCommand[application.AddTicketsData](q, application.AddTicketsCommand)
	adapter.RegisterQueuedCommand[application.UpdateTicketStatusData](q, application.UpdateTicketStatusCommand)
	adapter.RegisterQueuedCommand[application.DeleteTicketData](q, application.DeleteTicketCommand)
	adapter.RegisterQueuedCommand[application.SetAvailabilityData](q, application.SetAvailabilityCommand)
	adapter.RegisterQueuedCommand[application.UpdateAvailabilityData](q, application.UpdateAvailabilityCommand)
	adapter.RegisterQueuedCommand[application.SeatsData](q, application.BookSeatsCommand)
	adapter.RegisterQueuedCommand[application.SeatsData](q, application.ReleaseSeatsCommand)
	adapter.RegisterQueuedCommand[application.CreateScheduleData](q, application.CreateScheduleCommand)
	adapter.RegisterQueuedCommand[application.AddVoyageToScheduleData](q, application.AddVoyageToScheduleCommand)
	adapter.RegisterQueuedCommand[application.DeleteScheduleData](q, application.DeleteScheduleCommand)
}

// ForwardEvents republica os eventos do domínio no tópico externo.
func ForwardEvents(bus pkgApp.EventBus, f *adapter.EventForwarder) {
	adapter.ForwardEvent[application.LocationCreated](bus, f, application.LocationCreatedEvent)
	adapter.ForwardEvent[application.VoyageCreated](bus, f, application.VoyageCreatedEvent)
	adapter.ForwardEvent[application.TicketSold](bus, f, application.TicketSoldEvent)
	adapter.ForwardEvent[application.TicketStatusChanged](bus, f, application.TicketStatusChangedEvent)
	adapter.ForwardEvent[application.AvailabilityChanged](bus, f, application.AvailabilityChangedEvent)
	adapter.ForwardEvent[application.ScheduleCreated](bus, f, application.ScheduleCreatedEvent)
	adapter.ForwardEvent[application.ScheduleDeleted](bus, f, application.ScheduleDeletedEvent)
}
