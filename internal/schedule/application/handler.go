package application

import (
	"context"

	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
	pkgApp "github.com/mateusmacedo/go-schedule/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-schedule/pkg/domain"
)

// Handlers liga comandos e consultas aos serviços e publica os eventos resultantes.
type Handlers struct {
	locations    *LocationService
	voyages      *VoyageService
	tickets      *TicketService
	availability *AvailabilityService
	schedules    *ScheduleService
	eventBus     pkgApp.EventBus
	logger       pkgApp.AppLogger
}

func NewHandlers(uow domain.UnitOfWork, eventBus pkgApp.EventBus, logger pkgApp.AppLogger) *Handlers {
	return &Handlers{
		locations:    NewLocationService(uow),
		voyages:      NewVoyageService(uow),
		tickets:      NewTicketService(uow),
		availability: NewAvailabilityService(uow),
		schedules:    NewScheduleService(uow),
		eventBus:     eventBus,
		logger:       logger,
	}
}

func commandHandler[T any, R any](h *Handlers, action string, fn func(context.Context, T) (R, error)) pkgApp.CommandHandler[T, R] {
	return pkgApp.CommandHandlerFunc[T, R](func(ctx context.Context, command pkgDomain.Command[T]) (R, error) {
		var zero R
		if ctx.Err() != nil {
			pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
			return zero, ctx.Err()
		}

		fields := map[string]interface{}{
			"command":        command.CommandName(),
			"correlation_id": command.Metadata().Get(pkgDomain.MetadataCorrelationID),
		}
		result, err := fn(ctx, command.Payload())
		if err != nil {
			pkgApp.LogError(ctx, h.logger, "Erro ao "+action, err, fields)
			return zero, err
		}

		pkgApp.LogInfo(ctx, h.logger, "Comando executado", fields)
		return result, nil
	})
}

func queryHandler[T any, R any](h *Handlers, fn func(context.Context, T) (R, error)) pkgApp.QueryHandler[T, R] {
	return pkgApp.QueryHandlerFunc[T, R](func(ctx context.Context, query pkgDomain.Query[T]) (R, error) {
		var zero R
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		result, err := fn(ctx, query.Payload())
		if err != nil {
			pkgApp.LogDebug(ctx, h.logger, "Consulta falhou", map[string]interface{}{"query": query.QueryName(), "error": err.Error()})
			return zero, err
		}
		return result, nil
	})
}

// publish não desfaz o comando: a alteração já foi confirmada quando o evento sai.
func publish[T any](ctx context.Context, h *Handlers, name string, payload T) {
	if err := h.eventBus.Publish(ctx, pkgDomain.NewEvent(name, payload)); err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao publicar evento", err, map[string]interface{}{"event": name})
	}
}

func loggingEventHandler[T any](logger pkgApp.AppLogger) pkgApp.EventHandler[T] {
	return pkgApp.EventHandlerFunc[T](func(ctx context.Context, event pkgDomain.Event[T]) error {
		if ctx.Err() != nil {
			pkgApp.LogError(ctx, logger, "Contexto cancelado", ctx.Err(), nil)
			return ctx.Err()
		}
		pkgApp.LogInfo(ctx, logger, "Evento recebido", map[string]interface{}{
			"event":       event.EventName(),
			"occurred_at": event.OccurredAt(),
			"payload":     event.Payload(),
		})
		return nil
	})
}

// Register inscreve todos os manipuladores nos barramentos.
func (h *Handlers) Register(commands pkgApp.CommandBus, queries pkgApp.QueryBus) {
	pkgApp.RegisterCommandHandler(commands, CreateLocationCommand, commandHandler(h, "criar localização", h.createLocation))
	pkgApp.RegisterCommandHandler(commands, UpdateLocationCommand, commandHandler(h, "atualizar localização", h.updateLocation))
	pkgApp.RegisterCommandHandler(commands, DeleteLocationCommand, commandHandler(h, "remover localização", h.deleteLocation))
	pkgApp.RegisterCommandHandler(commands, CreateVoyageCommand, commandHandler(h, "criar viagem", h.createVoyage))
	pkgApp.RegisterCommandHandler(commands, UpdateVoyageCommand, commandHandler(h, "atualizar viagem", h.updateVoyage))
	pkgApp.RegisterCommandHandler(commands, DeleteVoyageCommand, commandHandler(h, "remover viagem", h.deleteVoyage))
	pkgApp.RegisterCommandHandler(commands, CreateTicketCommand, commandHandler(h, "vender bilhete", h.createTicket))
	pkgApp.RegisterCommandHandler(commands, AddTicketsCommand, commandHandler(h, "vender bilhetes", h.addTickets))
	pkgApp.RegisterCommandHandler(commands, UpdateTicketStatusCommand, commandHandler(h, "atualizar bilhete", h.updateTicketStatus))
	pkgApp.RegisterCommandHandler(commands, DeleteTicketCommand, commandHandler(h, "remover bilhete", h.deleteTicket))
	pkgApp.RegisterCommandHandler(commands, SetAvailabilityCommand, commandHandler(h, "definir disponibilidade", h.setAvailability))
	pkgApp.RegisterCommandHandler(commands, UpdateAvailabilityCommand, commandHandler(h, "atualizar disponibilidade", h.updateAvailability))
	pkgApp.RegisterCommandHandler(commands, BookSeatsCommand, commandHandler(h, "reservar assentos", h.bookSeats))
	pkgApp.RegisterCommandHandler(commands, ReleaseSeatsCommand, commandHandler(h, "liberar assentos", h.releaseSeats))
	pkgApp.RegisterCommandHandler(commands, CreateScheduleCommand, commandHandler(h, "criar agendamento", h.createSchedule))
	pkgApp.RegisterCommandHandler(commands, AddVoyageToScheduleCommand, commandHandler(h, "agendar viagem", h.addVoyageToSchedule))
	pkgApp.RegisterCommandHandler(commands, DeleteScheduleCommand, commandHandler(h, "remover agendamento", h.deleteSchedule))

	pkgApp.RegisterQueryHandler(queries, GetLocationQuery, queryHandler(h, h.getLocation))
	pkgApp.RegisterQueryHandler(queries, ListLocationsQuery, queryHandler(h, h.listLocations))
	pkgApp.RegisterQueryHandler(queries, GetVoyageQuery, queryHandler(h, h.getVoyage))
	pkgApp.RegisterQueryHandler(queries, ListVoyagesByOriginQuery, queryHandler(h, h.listVoyagesByOrigin))
	pkgApp.RegisterQueryHandler(queries, ListActiveTicketsQuery, queryHandler(h, h.listActiveTickets))
	pkgApp.RegisterQueryHandler(queries, GetAvailabilityQuery, queryHandler(h, h.getAvailability))
	pkgApp.RegisterQueryHandler(queries, GetScheduleSummaryQuery, queryHandler(h, h.getScheduleSummary))
	pkgApp.RegisterQueryHandler(queries, GetVoyageLoadQuery, queryHandler(h, h.getVoyageLoad))
	pkgApp.RegisterQueryHandler(queries, ListSchedulesQuery, queryHandler(h, h.listSchedules))

	pkgApp.RegisterEventHandler(h.eventBus, LocationCreatedEvent, loggingEventHandler[LocationCreated](h.logger))
	pkgApp.RegisterEventHandler(h.eventBus, VoyageCreatedEvent, loggingEventHandler[VoyageCreated](h.logger))
	pkgApp.RegisterEventHandler(h.eventBus, TicketSoldEvent, loggingEventHandler[TicketSold](h.logger))
	pkgApp.RegisterEventHandler(h.eventBus, TicketStatusChangedEvent, loggingEventHandler[TicketStatusChanged](h.logger))
	pkgApp.RegisterEventHandler(h.eventBus, AvailabilityChangedEvent, loggingEventHandler[AvailabilityChanged](h.logger))
	pkgApp.RegisterEventHandler(h.eventBus, ScheduleCreatedEvent, loggingEventHandler[ScheduleCreated](h.logger))
	pkgApp.RegisterEventHandler(h.eventBus, ScheduleDeletedEvent, loggingEventHandler[ScheduleDeleted](h.logger))
}

// Schedules expõe o serviço de agendamento para relatórios fora dos barramentos.
func (h *Handlers) Schedules() *ScheduleService {
	return h.schedules
}

func (h *Handlers) createLocation(ctx context.Context, data CreateLocationData) (domain.LocationEntry, error) {
	entry, err := h.locations.Create(ctx, data)
	if err != nil {
		return domain.LocationEntry{}, err
	}
	publish(ctx, h, LocationCreatedEvent, LocationCreated{Location: entry})
	return entry, nil
}

func (h *Handlers) updateLocation(ctx context.Context, data UpdateLocationData) (domain.LocationEntry, error) {
	return h.locations.Update(ctx, data)
}

func (h *Handlers) deleteLocation(ctx context.Context, data DeleteLocationData) (int64, error) {
	return data.LocationID, h.locations.Delete(ctx, data.LocationID)
}

func (h *Handlers) createVoyage(ctx context.Context, data CreateVoyageData) (domain.Voyage, error) {
	voyage, err := h.voyages.Create(ctx, data)
	if err != nil {
		return domain.Voyage{}, err
	}
	publish(ctx, h, VoyageCreatedEvent, VoyageCreated{Voyage: voyage})
	return voyage, nil
}

func (h *Handlers) updateVoyage(ctx context.Context, data UpdateVoyageData) (domain.Voyage, error) {
	return h.voyages.Reschedule(ctx, data)
}

func (h *Handlers) deleteVoyage(ctx context.Context, data DeleteVoyageData) (int64, error) {
	return data.VoyageID, h.voyages.Delete(ctx, data.VoyageID)
}

func (h *Handlers) createTicket(ctx context.Context, data CreateTicketData) (domain.Ticket, error) {
	ticket, err := h.tickets.Create(ctx, data)
	if err != nil {
		return domain.Ticket{}, err
	}
	publish(ctx, h, TicketSoldEvent, TicketSold{Ticket: ticket})
	return ticket, nil
}

func (h *Handlers) addTickets(ctx context.Context, data AddTicketsData) ([]domain.Ticket, error) {
	tickets, err := h.schedules.AddTickets(ctx, data.VoyageID, data.Tickets)
	if err != nil {
		return nil, err
	}
	for _, t := range tickets {
		publish(ctx, h, TicketSoldEvent, TicketSold{Ticket: t})
	}
	return tickets, nil
}

func (h *Handlers) updateTicketStatus(ctx context.Context, data UpdateTicketStatusData) (domain.Ticket, error) {
	ticket, err := h.tickets.UpdateStatus(ctx, data)
	if err != nil {
		return domain.Ticket{}, err
	}
	publish(ctx, h, TicketStatusChangedEvent, TicketStatusChanged{Ticket: ticket})
	return ticket, nil
}

func (h *Handlers) deleteTicket(ctx context.Context, data DeleteTicketData) (int64, error) {
	return data.TicketID, h.tickets.Delete(ctx, data.TicketID)
}

func (h *Handlers) setAvailability(ctx context.Context, data SetAvailabilityData) (domain.Availability, error) {
	var (
		availability domain.Availability
		err          error
	)
	if data.ScheduleID != 0 {
		availability, err = h.schedules.SetAvailability(ctx, data)
	} else {
		availability, err = h.availability.Set(ctx, data)
	}
	if err != nil {
		return domain.Availability{}, err
	}
	publish(ctx, h, AvailabilityChangedEvent, AvailabilityChanged{Availability: availability})
	return availability, nil
}

func (h *Handlers) availabilityChanged(ctx context.Context, availability domain.Availability, err error) (domain.Availability, error) {
	if err != nil {
		return domain.Availability{}, err
	}
	publish(ctx, h, AvailabilityChangedEvent, AvailabilityChanged{Availability: availability})
	return availability, nil
}

func (h *Handlers) updateAvailability(ctx context.Context, data UpdateAvailabilityData) (domain.Availability, error) {
	availability, err := h.availability.Update(ctx, data)
	return h.availabilityChanged(ctx, availability, err)
}

func (h *Handlers) bookSeats(ctx context.Context, data SeatsData) (domain.Availability, error) {
	availability, err := h.availability.Book(ctx, data.VoyageID, data.Seats)
	return h.availabilityChanged(ctx, availability, err)
}

func (h *Handlers) releaseSeats(ctx context.Context, data SeatsData) (domain.Availability, error) {
	availability, err := h.availability.Release(ctx, data.VoyageID, data.Seats)
	return h.availabilityChanged(ctx, availability, err)
}

func (h *Handlers) createSchedule(ctx context.Context, data CreateScheduleData) (domain.ScheduleEntry, error) {
	entry, err := h.schedules.Create(ctx, data.Date)
	if err != nil {
		return domain.ScheduleEntry{}, err
	}
	publish(ctx, h, ScheduleCreatedEvent, ScheduleCreated{Schedule: entry})
	return entry, nil
}

func (h *Handlers) addVoyageToSchedule(ctx context.Context, data AddVoyageToScheduleData) (domain.Voyage, error) {
	voyage, err := h.schedules.AddVoyage(ctx, data)
	if err != nil {
		return domain.Voyage{}, err
	}
	publish(ctx, h, VoyageCreatedEvent, VoyageCreated{Voyage: voyage, ScheduleID: data.ScheduleID})
	return voyage, nil
}

func (h *Handlers) deleteSchedule(ctx context.Context, data DeleteScheduleData) (int64, error) {
	if err := h.schedules.Delete(ctx, data.ScheduleID); err != nil {
		return 0, err
	}
	publish(ctx, h, ScheduleDeletedEvent, ScheduleDeleted{ScheduleID: data.ScheduleID})
	return data.ScheduleID, nil
}

func (h *Handlers) getLocation(ctx context.Context, data GetLocationData) (domain.LocationEntry, error) {
	return h.locations.Get(ctx, data.LocationID)
}

func (h *Handlers) listLocations(ctx context.Context, _ ListLocationsData) ([]domain.LocationEntry, error) {
	return h.locations.List(ctx)
}

func (h *Handlers) getVoyage(ctx context.Context, data GetVoyageData) (domain.Voyage, error) {
	return h.voyages.Get(ctx, data.VoyageID)
}

func (h *Handlers) listVoyagesByOrigin(ctx context.Context, data ListVoyagesByOriginData) ([]domain.Voyage, error) {
	return h.voyages.ListByOrigin(ctx, data.OriginID)
}

func (h *Handlers) listActiveTickets(ctx context.Context, data ListActiveTicketsData) ([]domain.Ticket, error) {
	return h.tickets.ListActive(ctx, data.VoyageID)
}

func (h *Handlers) getAvailability(ctx context.Context, data GetAvailabilityData) (domain.Availability, error) {
	return h.availability.Get(ctx, data.VoyageID)
}

func (h *Handlers) getScheduleSummary(ctx context.Context, data GetScheduleSummaryData) (ScheduleSummary, error) {
	summary, err := h.schedules.Summary(ctx, data.Date)
	if err != nil {
		return ScheduleSummary{}, err
	}
	return ScheduleSummary{Date: data.Date, Summary: summary}, nil
}

func (h *Handlers) getVoyageLoad(ctx context.Context, data GetVoyageLoadData) (domain.Load, error) {
	return h.schedules.Load(ctx, data.Date, data.VoyageID)
}

func (h *Handlers) listSchedules(ctx context.Context, data ListSchedulesData) ([]domain.ScheduleEntry, error) {
	return h.schedules.ListBetween(ctx, data.From, data.To)
}
