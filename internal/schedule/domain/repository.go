package domain

import (
	"context"
	"time"
)

// ScheduleEntry é um agendamento persistido, único por data.
type ScheduleEntry struct {
	ID   int64 `json:"id"`
	Date Date  `json:"date"`
}

type LocationRepository interface {
	Save(ctx context.Context, location Location) (LocationEntry, error)
	FindByID(ctx context.Context, id int64) (LocationEntry, error)
	FindAll(ctx context.Context) ([]LocationEntry, error)
	Update(ctx context.Context, entry LocationEntry) error
	Delete(ctx context.Context, id int64) error
}

type VoyageRepository interface {
	// Save atribui o id e devolve a viagem persistida.
	Save(ctx context.Context, voyage Voyage, link VoyageLink) (Voyage, error)
	FindByID(ctx context.Context, id int64) (Voyage, VoyageLink, error)
	FindByOrigin(ctx context.Context, originID int64) ([]Voyage, error)
	FindDepartingBetween(ctx context.Context, start, end time.Time) ([]Voyage, error)
	FindBySchedule(ctx context.Context, scheduleID int64) ([]Voyage, error)
	Update(ctx context.Context, voyage Voyage, link VoyageLink) error
	Delete(ctx context.Context, id int64) error
}

type TicketRepository interface {
	Save(ctx context.Context, ticket Ticket) (Ticket, error)
	FindByID(ctx context.Context, id int64) (Ticket, error)
	FindByVoyage(ctx context.Context, voyageID int64) ([]Ticket, error)
	FindActive(ctx context.Context) ([]Ticket, error)
	Update(ctx context.Context, ticket Ticket) error
	Delete(ctx context.Context, id int64) error
	DeleteByVoyage(ctx context.Context, voyageID int64) error
}

type AvailabilityRepository interface {
	Save(ctx context.Context, availability Availability) error
	FindByVoyage(ctx context.Context, voyageID int64) (Availability, error)
	Update(ctx context.Context, availability Availability) error
	DeleteByVoyage(ctx context.Context, voyageID int64) error
}

type ScheduleRepository interface {
	Save(ctx context.Context, date Date) (ScheduleEntry, error)
	FindByID(ctx context.Context, id int64) (ScheduleEntry, error)
	FindByDate(ctx context.Context, date Date) (ScheduleEntry, error)
	FindBetween(ctx context.Context, from, to Date) ([]ScheduleEntry, error)
	Delete(ctx context.Context, id int64) error
}

// Repositories reúne os repositórios de uma mesma unidade de trabalho.
type Repositories struct {
	Locations    LocationRepository
	Voyages      VoyageRepository
	Tickets      TicketRepository
	Availability AvailabilityRepository
	Schedules    ScheduleRepository
}

// UnitOfWork executa fn de forma atômica: confirma se fn retornar nil, desfaz caso contrário.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
