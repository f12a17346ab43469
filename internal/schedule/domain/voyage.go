package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Voyage é uma viagem entre duas localizações. ID é zero até ser persistida.
type Voyage struct {
	ID              int64     `json:"id"`
	Departure       time.Time `json:"departure"`
	Arrival         time.Time `json:"arrival"`
	Origin          Location  `json:"origin"`
	Destination     Location  `json:"destination"`
	MarketingNumber int       `json:"marketing_number"`
	VehicleNumber   string    `json:"vehicle_number"`
}

// NewVoyage cria uma viagem ainda não persistida, com horários em UTC.
// A chegada deve ser posterior à partida.
func NewVoyage(departure, arrival time.Time, origin, destination Location, marketingNumber int, vehicleNumber string) (Voyage, error) {
	if err := checkTimes(departure, arrival); err != nil {
		return Voyage{}, err
	}
	vehicleNumber = strings.TrimSpace(vehicleNumber)
	if vehicleNumber == "" {
		return Voyage{}, errors.Wrap(ErrInvalidInput, "vehicle number is empty")
	}
	return Voyage{
		Departure:       departure.UTC(),
		Arrival:         arrival.UTC(),
		Origin:          origin,
		Destination:     destination,
		MarketingNumber: marketingNumber,
		VehicleNumber:   vehicleNumber,
	}, nil
}

func checkTimes(departure, arrival time.Time) error {
	if departure.IsZero() || arrival.IsZero() {
		return errors.Wrap(ErrInvalidInput, "departure and arrival are required")
	}
	if !arrival.After(departure) {
		return errors.Wrapf(ErrInvalidInput, "arrival %s is not after departure %s",
			arrival.UTC().Format(time.RFC3339), departure.UTC().Format(time.RFC3339))
	}
	return nil
}

func (v Voyage) HasID() bool {
	return v.ID != 0
}

func (v Voyage) Duration() time.Duration {
	return v.Arrival.Sub(v.Departure)
}

// Reschedule devolve uma cópia com novos horários. Horário zero mantém o atual.
func (v Voyage) Reschedule(departure, arrival time.Time) (Voyage, error) {
	if departure.IsZero() {
		departure = v.Departure
	}
	if arrival.IsZero() {
		arrival = v.Arrival
	}
	if err := checkTimes(departure, arrival); err != nil {
		return Voyage{}, err
	}
	v.Departure = departure.UTC()
	v.Arrival = arrival.UTC()
	return v, nil
}

func (v Voyage) String() string {
	return fmt.Sprintf("Voyage (id=%d, %s -> %s, origin=%s, destination=%s, marketing_number=%d, vehicle_number=%s)",
		v.ID, v.Departure.Format(time.RFC3339), v.Arrival.Format(time.RFC3339),
		v.Origin.Title, v.Destination.Title, v.MarketingNumber, v.VehicleNumber)
}

// VoyageLink guarda as referências de armazenamento da viagem.
type VoyageLink struct {
	OriginID      int64
	DestinationID int64
	// ScheduleID é zero quando a viagem não pertence a nenhum agendamento.
	ScheduleID int64
}
