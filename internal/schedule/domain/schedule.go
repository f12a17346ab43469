package domain

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// Load é o retrato de ocupação de uma viagem.
type Load struct {
	TotalSeats     int `json:"total_seats"`
	SoldSeats      int `json:"sold_seats"`
	RemainingSeats int `json:"remaining_seats"`
}

// Summary agrega os números de todas as viagens do agendamento.
type Summary struct {
	TotalVoyages int `json:"total_voyages"`
	TotalTickets int `json:"total_tickets"`
	TotalSeats   int `json:"total_seats"`
	SoldSeats    int `json:"sold_seats"`
}

// Schedule agrupa viagens, disponibilidade e bilhetes de um dia.
// A iteração segue a ordem de inserção. Não é seguro para uso concorrente.
type Schedule struct {
	date    Date
	hasDate bool

	voyages     map[int64]Voyage
	voyageOrder []int64

	availability      map[int64]Availability
	availabilityOrder []int64

	tickets     map[int64]Ticket
	ticketOrder []int64
}

func NewSchedule() *Schedule {
	return &Schedule{
		voyages:      make(map[int64]Voyage),
		availability: make(map[int64]Availability),
		tickets:      make(map[int64]Ticket),
	}
}

func NewScheduleFor(date Date) *Schedule {
	s := NewSchedule()
	s.date = date
	s.hasDate = true
	return s
}

func (s *Schedule) Date() (Date, bool) {
	return s.date, s.hasDate
}

// SetDate fixa a data. Falha se alguma viagem já incluída parte em outro dia.
func (s *Schedule) SetDate(date Date) error {
	for _, id := range s.voyageOrder {
		if got := DateOf(s.voyages[id].Departure); got != date {
			return errors.Wrapf(ErrConsistency, "voyage %d departs on %s, not %s", id, got, date)
		}
	}
	s.date = date
	s.hasDate = true
	return nil
}

func (s *Schedule) AddVoyage(v Voyage) error {
	if !v.HasID() {
		return errors.Wrap(ErrConsistency, "voyage has no id")
	}
	if s.hasDate {
		if got := DateOf(v.Departure); got != s.date {
			return errors.Wrapf(ErrConsistency, "voyage %d departs on %s, schedule is for %s", v.ID, got, s.date)
		}
	}
	if _, ok := s.voyages[v.ID]; !ok {
		s.voyageOrder = append(s.voyageOrder, v.ID)
	}
	s.voyages[v.ID] = v
	return nil
}

func (s *Schedule) AddAvailability(a Availability) error {
	if _, ok := s.voyages[a.VoyageID]; !ok {
		return errors.Wrapf(ErrReference, "voyage %d not found", a.VoyageID)
	}
	if _, ok := s.availability[a.VoyageID]; !ok {
		s.availabilityOrder = append(s.availabilityOrder, a.VoyageID)
	}
	s.availability[a.VoyageID] = a
	return nil
}

func (s *Schedule) AddTicket(t Ticket) error {
	if _, ok := s.voyages[t.VoyageID]; !ok {
		return errors.Wrapf(ErrReference, "voyage %d not found", t.VoyageID)
	}
	if !t.HasID() {
		return errors.Wrapf(ErrConsistency, "ticket for voyage %d has no id", t.VoyageID)
	}
	if _, ok := s.tickets[t.ID]; !ok {
		s.ticketOrder = append(s.ticketOrder, t.ID)
	}
	s.tickets[t.ID] = t
	return nil
}

// VoyagesInRange devolve as viagens com partida em [start, end].
func (s *Schedule) VoyagesInRange(start, end time.Time) []Voyage {
	out := make([]Voyage, 0)
	for _, id := range s.voyageOrder {
		v := s.voyages[id]
		if v.Departure.Before(start) || v.Departure.After(end) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *Schedule) Voyage(id int64) (Voyage, bool) {
	v, ok := s.voyages[id]
	return v, ok
}

func (s *Schedule) AvailabilityFor(voyageID int64) (Availability, bool) {
	a, ok := s.availability[voyageID]
	return a, ok
}

func (s *Schedule) TicketsFor(voyageID int64) []Ticket {
	out := make([]Ticket, 0)
	for _, id := range s.ticketOrder {
		if t := s.tickets[id]; t.VoyageID == voyageID {
			out = append(out, t)
		}
	}
	return out
}

func (s *Schedule) soldSeats(voyageID int64) int {
	sold := 0
	for _, t := range s.tickets {
		if t.VoyageID == voyageID && t.IsActive {
			sold++
		}
	}
	return sold
}

// Load reporta a ocupação da viagem. RemainingSeats vem do registro de
// disponibilidade, sem recálculo a partir dos bilhetes vendidos.
func (s *Schedule) Load(voyageID int64) (Load, error) {
	a, ok := s.availability[voyageID]
	if !ok {
		return Load{}, errors.Wrapf(ErrReference, "no availability for voyage %d", voyageID)
	}
	return Load{
		TotalSeats:     a.TotalSeats(),
		SoldSeats:      s.soldSeats(voyageID),
		RemainingSeats: a.RemainingSeats,
	}, nil
}

func (s *Schedule) Summary() Summary {
	sum := Summary{
		TotalVoyages: len(s.voyages),
		TotalTickets: len(s.tickets),
	}
	for _, a := range s.availability {
		sum.TotalSeats += a.TotalSeats()
	}
	for _, id := range s.voyageOrder {
		sum.SoldSeats += s.soldSeats(id)
	}
	return sum
}

func (s *Schedule) Voyages() []Voyage {
	out := make([]Voyage, 0, len(s.voyageOrder))
	for _, id := range s.voyageOrder {
		out = append(out, s.voyages[id])
	}
	return out
}

func (s *Schedule) Availabilities() []Availability {
	out := make([]Availability, 0, len(s.availabilityOrder))
	for _, id := range s.availabilityOrder {
		out = append(out, s.availability[id])
	}
	return out
}

func (s *Schedule) Tickets() []Ticket {
	out := make([]Ticket, 0, len(s.ticketOrder))
	for _, id := range s.ticketOrder {
		out = append(out, s.tickets[id])
	}
	return out
}

func (s *Schedule) String() string {
	date := "undated"
	if s.hasDate {
		date = s.date.String()
	}
	return fmt.Sprintf("Schedule for %s: %d voyages, %d availabilities, %d tickets",
		date, len(s.voyages), len(s.availability), len(s.tickets))
}
