package application

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

type LocationService struct {
	uow domain.UnitOfWork
}

func NewLocationService(uow domain.UnitOfWork) *LocationService {
	return &LocationService{uow: uow}
}

func (s *LocationService) Create(ctx context.Context, data CreateLocationData) (domain.LocationEntry, error) {
	location, err := domain.NewLocation(data.Title, data.Latitude, data.Longitude)
	if err != nil {
		return domain.LocationEntry{}, err
	}
	var entry domain.LocationEntry
	err = s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		entry, err = repos.Locations.Save(ctx, location)
		return err
	})
	return entry, err
}

func (s *LocationService) Get(ctx context.Context, id int64) (domain.LocationEntry, error) {
	var entry domain.LocationEntry
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		entry, err = repos.Locations.FindByID(ctx, id)
		return err
	})
	return entry, err
}

func (s *LocationService) List(ctx context.Context) ([]domain.LocationEntry, error) {
	var entries []domain.LocationEntry
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		entries, err = repos.Locations.FindAll(ctx)
		return err
	})
	return entries, err
}

// Update altera o título quando informado; as coordenadas só mudam quando ambas vierem.
func (s *LocationService) Update(ctx context.Context, data UpdateLocationData) (domain.LocationEntry, error) {
	var entry domain.LocationEntry
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		entry, err = repos.Locations.FindByID(ctx, data.LocationID)
		if err != nil {
			return err
		}
		location := entry.Location
		if data.Title != nil && *data.Title != "" {
			if location, err = location.WithTitle(*data.Title); err != nil {
				return err
			}
		}
		if data.Latitude != nil && data.Longitude != nil {
			if location, err = location.WithCoordinates(*data.Latitude, *data.Longitude); err != nil {
				return err
			}
		}
		entry.Location = location
		return repos.Locations.Update(ctx, entry)
	})
	return entry, err
}

func (s *LocationService) Delete(ctx context.Context, id int64) error {
	return s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Locations.FindByID(ctx, id); err != nil {
			return err
		}
		return repos.Locations.Delete(ctx, id)
	})
}

type VoyageService struct {
	uow domain.UnitOfWork
}

func NewVoyageService(uow domain.UnitOfWork) *VoyageService {
	return &VoyageService{uow: uow}
}

func newVoyage(ctx context.Context, repos domain.Repositories, data CreateVoyageData) (domain.Voyage, domain.VoyageLink, error) {
	origin, err := repos.Locations.FindByID(ctx, data.OriginID)
	if err != nil {
		return domain.Voyage{}, domain.VoyageLink{}, errors.Wrap(err, "origin")
	}
	destination, err := repos.Locations.FindByID(ctx, data.DestinationID)
	if err != nil {
		return domain.Voyage{}, domain.VoyageLink{}, errors.Wrap(err, "destination")
	}
	voyage, err := domain.NewVoyage(data.Departure, data.Arrival, origin.Location, destination.Location,
		data.MarketingNumber, data.VehicleNumber)
	if err != nil {
		return domain.Voyage{}, domain.VoyageLink{}, err
	}
	return voyage, domain.VoyageLink{OriginID: origin.ID, DestinationID: destination.ID}, nil
}

func (s *VoyageService) Create(ctx context.Context, data CreateVoyageData) (domain.Voyage, error) {
	var voyage domain.Voyage
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		v, link, err := newVoyage(ctx, repos, data)
		if err != nil {
			return err
		}
		voyage, err = repos.Voyages.Save(ctx, v, link)
		return err
	})
	return voyage, err
}

func (s *VoyageService) Get(ctx context.Context, id int64) (domain.Voyage, error) {
	var voyage domain.Voyage
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		voyage, _, err = repos.Voyages.FindByID(ctx, id)
		return err
	})
	return voyage, err
}

func (s *VoyageService) ListByOrigin(ctx context.Context, originID int64) ([]domain.Voyage, error) {
	var voyages []domain.Voyage
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		voyages, err = repos.Voyages.FindByOrigin(ctx, originID)
		return err
	})
	return voyages, err
}

// Reschedule altera os horários informados. Uma viagem agendada não pode sair do dia do agendamento.
func (s *VoyageService) Reschedule(ctx context.Context, data UpdateVoyageData) (domain.Voyage, error) {
	var voyage domain.Voyage
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		current, link, err := repos.Voyages.FindByID(ctx, data.VoyageID)
		if err != nil {
			return err
		}
		var departure, arrival time.Time
		if data.Departure != nil {
			departure = *data.Departure
		}
		if data.Arrival != nil {
			arrival = *data.Arrival
		}
		voyage, err = current.Reschedule(departure, arrival)
		if err != nil {
			return err
		}
		if link.ScheduleID != 0 {
			entry, err := repos.Schedules.FindByID(ctx, link.ScheduleID)
			if err != nil {
				return err
			}
			if err := domain.NewScheduleFor(entry.Date).AddVoyage(voyage); err != nil {
				return err
			}
		}
		return repos.Voyages.Update(ctx, voyage, link)
	})
	return voyage, err
}

func deleteVoyage(ctx context.Context, repos domain.Repositories, id int64) error {
	if err := repos.Tickets.DeleteByVoyage(ctx, id); err != nil {
		return err
	}
	if err := repos.Availability.DeleteByVoyage(ctx, id); err != nil {
		return err
	}
	return repos.Voyages.Delete(ctx, id)
}

// Delete remove a viagem junto com sua disponibilidade e seus bilhetes.
func (s *VoyageService) Delete(ctx context.Context, id int64) error {
	return s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, _, err := repos.Voyages.FindByID(ctx, id); err != nil {
			return err
		}
		return deleteVoyage(ctx, repos, id)
	})
}

type TicketService struct {
	uow domain.UnitOfWork
}

func NewTicketService(uow domain.UnitOfWork) *TicketService {
	return &TicketService{uow: uow}
}

func (s *TicketService) Create(ctx context.Context, data CreateTicketData) (domain.Ticket, error) {
	ticket, err := domain.NewTicket(data.VoyageID, data.Price, data.activeOrDefault())
	if err != nil {
		return domain.Ticket{}, err
	}
	err = s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, _, err := repos.Voyages.FindByID(ctx, data.VoyageID); err != nil {
			return err
		}
		ticket, err = repos.Tickets.Save(ctx, ticket)
		return err
	})
	return ticket, err
}

func (s *TicketService) Get(ctx context.Context, id int64) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		ticket, err = repos.Tickets.FindByID(ctx, id)
		return err
	})
	return ticket, err
}

// ListActive devolve os bilhetes ativos; voyageID zero lista todos.
func (s *TicketService) ListActive(ctx context.Context, voyageID int64) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if voyageID == 0 {
			var err error
			tickets, err = repos.Tickets.FindActive(ctx)
			return err
		}
		all, err := repos.Tickets.FindByVoyage(ctx, voyageID)
		if err != nil {
			return err
		}
		tickets = make([]domain.Ticket, 0, len(all))
		for _, t := range all {
			if t.IsActive {
				tickets = append(tickets, t)
			}
		}
		return nil
	})
	return tickets, err
}

func (s *TicketService) ListByVoyage(ctx context.Context, voyageID int64) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, _, err := repos.Voyages.FindByID(ctx, voyageID); err != nil {
			return err
		}
		var err error
		tickets, err = repos.Tickets.FindByVoyage(ctx, voyageID)
		return err
	})
	return tickets, err
}

func (s *TicketService) UpdateStatus(ctx context.Context, data UpdateTicketStatusData) (domain.Ticket, error) {
	if data.IsActive == nil {
		return domain.Ticket{}, errors.Wrap(domain.ErrInvalidInput, "is_active is required")
	}
	var ticket domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		ticket, err = repos.Tickets.FindByID(ctx, data.TicketID)
		if err != nil {
			return err
		}
		if *data.IsActive {
			ticket = ticket.Reactivate()
		} else {
			ticket = ticket.Void()
		}
		return repos.Tickets.Update(ctx, ticket)
	})
	return ticket, err
}

func (s *TicketService) Delete(ctx context.Context, id int64) error {
	return s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Tickets.FindByID(ctx, id); err != nil {
			return err
		}
		return repos.Tickets.Delete(ctx, id)
	})
}

type AvailabilityService struct {
	uow domain.UnitOfWork
}

func NewAvailabilityService(uow domain.UnitOfWork) *AvailabilityService {
	return &AvailabilityService{uow: uow}
}

func setAvailability(ctx context.Context, repos domain.Repositories, a domain.Availability) error {
	if _, _, err := repos.Voyages.FindByID(ctx, a.VoyageID); err != nil {
		return err
	}
	_, err := repos.Availability.FindByVoyage(ctx, a.VoyageID)
	switch {
	case err == nil:
		return errors.Wrapf(domain.ErrConflict, "availability for voyage %d already set", a.VoyageID)
	case !isNotFound(err):
		return err
	}
	return repos.Availability.Save(ctx, a)
}

// Set cria a disponibilidade da viagem. O total de assentos fica fixo a partir daqui.
func (s *AvailabilityService) Set(ctx context.Context, data SetAvailabilityData) (domain.Availability, error) {
	availability, err := domain.NewAvailability(data.VoyageID, data.RemainingSeats, data.Bookings, data.activeOrDefault())
	if err != nil {
		return domain.Availability{}, err
	}
	err = s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		return setAvailability(ctx, repos, availability)
	})
	return availability, err
}

func (s *AvailabilityService) Get(ctx context.Context, voyageID int64) (domain.Availability, error) {
	var availability domain.Availability
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		availability, err = repos.Availability.FindByVoyage(ctx, voyageID)
		return err
	})
	return availability, err
}

// Update aplica uma alteração parcial. Quando só um contador vem, o outro é
// recalculado para preservar o total.
func (s *AvailabilityService) Update(ctx context.Context, data UpdateAvailabilityData) (domain.Availability, error) {
	return s.modify(ctx, data.VoyageID, func(current domain.Availability) (domain.Availability, error) {
		remaining, bookings := current.RemainingSeats, current.Bookings
		switch {
		case data.RemainingSeats != nil && data.Bookings != nil:
			remaining, bookings = *data.RemainingSeats, *data.Bookings
		case data.RemainingSeats != nil:
			remaining = *data.RemainingSeats
			bookings = current.TotalSeats() - remaining
		case data.Bookings != nil:
			bookings = *data.Bookings
			remaining = current.TotalSeats() - bookings
		}
		next, err := current.Adjust(remaining, bookings)
		if err != nil {
			return domain.Availability{}, err
		}
		if data.IsActive != nil {
			next.IsActive = *data.IsActive
		}
		return next, nil
	})
}

func (s *AvailabilityService) Book(ctx context.Context, voyageID int64, seats int) (domain.Availability, error) {
	return s.modify(ctx, voyageID, func(current domain.Availability) (domain.Availability, error) {
		return current.Book(seats)
	})
}

func (s *AvailabilityService) Release(ctx context.Context, voyageID int64, seats int) (domain.Availability, error) {
	return s.modify(ctx, voyageID, func(current domain.Availability) (domain.Availability, error) {
		return current.Release(seats)
	})
}

func (s *AvailabilityService) modify(ctx context.Context, voyageID int64, fn func(domain.Availability) (domain.Availability, error)) (domain.Availability, error) {
	var availability domain.Availability
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		current, err := repos.Availability.FindByVoyage(ctx, voyageID)
		if err != nil {
			return err
		}
		availability, err = fn(current)
		if err != nil {
			return err
		}
		return repos.Availability.Update(ctx, availability)
	})
	return availability, err
}

type ScheduleService struct {
	uow domain.UnitOfWork
}

func NewScheduleService(uow domain.UnitOfWork) *ScheduleService {
	return &ScheduleService{uow: uow}
}

func (s *ScheduleService) Create(ctx context.Context, date domain.Date) (domain.ScheduleEntry, error) {
	if date.IsZero() {
		return domain.ScheduleEntry{}, errors.Wrap(domain.ErrInvalidInput, "schedule date is required")
	}
	var entry domain.ScheduleEntry
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		_, err := repos.Schedules.FindByDate(ctx, date)
		switch {
		case err == nil:
			return errors.Wrapf(domain.ErrConflict, "schedule for %s already exists", date)
		case !isNotFound(err):
			return err
		}
		entry, err = repos.Schedules.Save(ctx, date)
		return err
	})
	return entry, err
}

func (s *ScheduleService) Get(ctx context.Context, id int64) (domain.ScheduleEntry, error) {
	var entry domain.ScheduleEntry
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		entry, err = repos.Schedules.FindByID(ctx, id)
		return err
	})
	return entry, err
}

func (s *ScheduleService) GetByDate(ctx context.Context, date domain.Date) (domain.ScheduleEntry, error) {
	var entry domain.ScheduleEntry
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		entry, err = repos.Schedules.FindByDate(ctx, date)
		return err
	})
	return entry, err
}

func (s *ScheduleService) ListBetween(ctx context.Context, from, to domain.Date) ([]domain.ScheduleEntry, error) {
	if to.Before(from) {
		return nil, errors.Wrapf(domain.ErrInvalidInput, "range %s..%s is inverted", from, to)
	}
	var entries []domain.ScheduleEntry
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		entries, err = repos.Schedules.FindBetween(ctx, from, to)
		return err
	})
	return entries, err
}

// AddVoyage cria uma viagem dentro do agendamento, validada pelo agregado do dia.
func (s *ScheduleService) AddVoyage(ctx context.Context, data AddVoyageToScheduleData) (domain.Voyage, error) {
	var voyage domain.Voyage
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		entry, err := repos.Schedules.FindByID(ctx, data.ScheduleID)
		if err != nil {
			return err
		}
		agg, err := buildSchedule(ctx, repos, entry)
		if err != nil {
			return err
		}
		v, link, err := newVoyage(ctx, repos, data.CreateVoyageData)
		if err != nil {
			return err
		}
		link.ScheduleID = entry.ID
		voyage, err = repos.Voyages.Save(ctx, v, link)
		if err != nil {
			return err
		}
		// a data é conferida pelo agregado; em caso de erro a unidade de trabalho desfaz o Save
		return agg.AddVoyage(voyage)
	})
	if err != nil {
		return domain.Voyage{}, err
	}
	return voyage, nil
}

// SetAvailability registra a disponibilidade de uma viagem do agendamento.
func (s *ScheduleService) SetAvailability(ctx context.Context, data SetAvailabilityData) (domain.Availability, error) {
	availability, err := domain.NewAvailability(data.VoyageID, data.RemainingSeats, data.Bookings, data.activeOrDefault())
	if err != nil {
		return domain.Availability{}, err
	}
	err = s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		entry, err := repos.Schedules.FindByID(ctx, data.ScheduleID)
		if err != nil {
			return err
		}
		agg, err := buildSchedule(ctx, repos, entry)
		if err != nil {
			return err
		}
		if _, ok := agg.AvailabilityFor(availability.VoyageID); ok {
			return errors.Wrapf(domain.ErrConflict, "availability for voyage %d already set", availability.VoyageID)
		}
		if err := agg.AddAvailability(availability); err != nil {
			return err
		}
		return repos.Availability.Save(ctx, availability)
	})
	return availability, err
}

// AddTickets grava todos os bilhetes ou nenhum.
func (s *ScheduleService) AddTickets(ctx context.Context, voyageID int64, tickets []TicketData) ([]domain.Ticket, error) {
	if len(tickets) == 0 {
		return nil, errors.Wrap(domain.ErrInvalidInput, "at least one ticket is required")
	}
	var saved []domain.Ticket
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, _, err := repos.Voyages.FindByID(ctx, voyageID); err != nil {
			return err
		}
		saved = make([]domain.Ticket, 0, len(tickets))
		for i, data := range tickets {
			ticket, err := domain.NewTicket(voyageID, data.Price, data.activeOrDefault())
			if err != nil {
				return errors.Wrapf(err, "ticket %d", i)
			}
			ticket, err = repos.Tickets.Save(ctx, ticket)
			if err != nil {
				return err
			}
			saved = append(saved, ticket)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func buildSchedule(ctx context.Context, repos domain.Repositories, entry domain.ScheduleEntry) (*domain.Schedule, error) {
	voyages, err := repos.Voyages.FindBySchedule(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	agg := domain.NewScheduleFor(entry.Date)
	for _, v := range voyages {
		if err := agg.AddVoyage(v); err != nil {
			return nil, err
		}
	}
	for _, v := range voyages {
		a, err := repos.Availability.FindByVoyage(ctx, v.ID)
		switch {
		case err == nil:
			if err := agg.AddAvailability(a); err != nil {
				return nil, err
			}
		case !isNotFound(err):
			return nil, err
		}
		tickets, err := repos.Tickets.FindByVoyage(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range tickets {
			if err := agg.AddTicket(t); err != nil {
				return nil, err
			}
		}
	}
	return agg, nil
}

// Build monta o agregado do dia a partir do que está persistido.
func (s *ScheduleService) Build(ctx context.Context, date domain.Date) (*domain.Schedule, error) {
	var agg *domain.Schedule
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		entry, err := repos.Schedules.FindByDate(ctx, date)
		if err != nil {
			return err
		}
		agg, err = buildSchedule(ctx, repos, entry)
		return err
	})
	return agg, err
}

func (s *ScheduleService) Summary(ctx context.Context, date domain.Date) (domain.Summary, error) {
	agg, err := s.Build(ctx, date)
	if err != nil {
		return domain.Summary{}, err
	}
	return agg.Summary(), nil
}

func (s *ScheduleService) Load(ctx context.Context, date domain.Date, voyageID int64) (domain.Load, error) {
	agg, err := s.Build(ctx, date)
	if err != nil {
		return domain.Load{}, err
	}
	return agg.Load(voyageID)
}

// Delete remove o agendamento e, em cascata, suas viagens.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	return s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Schedules.FindByID(ctx, id); err != nil {
			return err
		}
		voyages, err := repos.Voyages.FindBySchedule(ctx, id)
		if err != nil {
			return err
		}
		for _, v := range voyages {
			if err := deleteVoyage(ctx, repos, v.ID); err != nil {
				return err
			}
		}
		return repos.Schedules.Delete(ctx, id)
	})
}
