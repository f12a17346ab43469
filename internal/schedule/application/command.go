package application

import (
	"time"

	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
)

// Nomes dos comandos aceitos pelo barramento e pela fila.
const (
	CreateLocationCommand      = "CreateLocation"
	UpdateLocationCommand      = "UpdateLocation"
	DeleteLocationCommand      = "DeleteLocation"
	CreateVoyageCommand        = "CreateVoyage"
	UpdateVoyageCommand        = "UpdateVoyage"
	DeleteVoyageCommand        = "DeleteVoyage"
	CreateTicketCommand        = "CreateTicket"
	UpdateTicketStatusCommand  = "UpdateTicketStatus"
	DeleteTicketCommand        = "DeleteTicket"
	SetAvailabilityCommand     = "SetAvailability"
	UpdateAvailabilityCommand  = "UpdateAvailability"
	CreateScheduleCommand      = "CreateSchedule"
	AddVoyageToScheduleCommand = "AddVoyageToSchedule"
	DeleteScheduleCommand      = "DeleteSchedule"
	AddTicketsCommand          = "AddTickets"
	BookSeatsCommand           = "BookSeats"
	ReleaseSeatsCommand        = "ReleaseSeats"
)

type CreateLocationData struct {
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type UpdateLocationData struct {
	LocationID int64    `json:"location_id"`
	Title      *string  `json:"title,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

type DeleteLocationData struct {
	LocationID int64 `json:"location_id"`
}

type CreateVoyageData struct {
	Departure       time.Time `json:"departure"`
	Arrival         time.Time `json:"arrival"`
	OriginID        int64     `json:"origin_id"`
	DestinationID   int64     `json:"destination_id"`
	MarketingNumber int       `json:"marketing_number"`
	VehicleNumber   string    `json:"vehicle_number"`
}

type UpdateVoyageData struct {
	VoyageID  int64      `json:"voyage_id"`
	Departure *time.Time `json:"departure,omitempty"`
	Arrival   *time.Time `json:"arrival,omitempty"`
}

type DeleteVoyageData struct {
	VoyageID int64 `json:"voyage_id"`
}

// TicketData descreve um bilhete; IsActive ausente significa ativo.
type TicketData struct {
	Price    float64 `json:"price"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (d TicketData) activeOrDefault() bool {
	return d.IsActive == nil || *d.IsActive
}

type CreateTicketData struct {
	VoyageID int64 `json:"voyage_id"`
	TicketData
}

// AddTicketsData vende vários bilhetes da mesma viagem numa única transação.
type AddTicketsData struct {
	VoyageID int64        `json:"voyage_id"`
	Tickets  []TicketData `json:"tickets"`
}

// UpdateTicketStatusData exige is_active; ausente é entrada inválida.
type UpdateTicketStatusData struct {
	TicketID int64 `json:"ticket_id"`
	IsActive *bool `json:"is_active"`
}

type DeleteTicketData struct {
	TicketID int64 `json:"ticket_id"`
}

// SetAvailabilityData com ScheduleID valida a viagem contra o agendamento informado.
type SetAvailabilityData struct {
	ScheduleID     int64 `json:"schedule_id,omitempty"`
	VoyageID       int64 `json:"voyage_id"`
	RemainingSeats int   `json:"remaining_seats"`
	Bookings       int   `json:"bookings"`
	IsActive       *bool `json:"is_active,omitempty"`
}

func (d SetAvailabilityData) activeOrDefault() bool {
	return d.IsActive == nil || *d.IsActive
}

type UpdateAvailabilityData struct {
	VoyageID       int64 `json:"voyage_id"`
	RemainingSeats *int  `json:"remaining_seats,omitempty"`
	Bookings       *int  `json:"bookings,omitempty"`
	IsActive       *bool `json:"is_active,omitempty"`
}

type SeatsData struct {
	VoyageID int64 `json:"voyage_id"`
	Seats    int   `json:"seats"`
}

type CreateScheduleData struct {
	Date domain.Date `json:"schedule_date"`
}

type AddVoyageToScheduleData struct {
	ScheduleID int64 `json:"schedule_id"`
	CreateVoyageData
}

type DeleteScheduleData struct {
	ScheduleID int64 `json:"schedule_id"`
}
