package application

import "github.com/mateusmacedo/go-schedule/internal/schedule/domain"

const (
	LocationCreatedEvent     = "LocationCreated"
	VoyageCreatedEvent       = "VoyageCreated"
	TicketSoldEvent          = "TicketSold"
	TicketStatusChangedEvent = "TicketStatusChanged"
	AvailabilityChangedEvent = "AvailabilityChanged"
	ScheduleCreatedEvent     = "ScheduleCreated"
	ScheduleDeletedEvent     = "ScheduleDeleted"
)

type LocationCreated struct {
	Location domain.LocationEntry `json:"location"`
}

type VoyageCreated struct {
	Voyage     domain.Voyage `json:"voyage"`
	ScheduleID int64         `json:"schedule_id,omitempty"`
}

type TicketSold struct {
	Ticket domain.Ticket `json:"ticket"`
}

type TicketStatusChanged struct {
	Ticket domain.Ticket `json:"ticket"`
}

type AvailabilityChanged struct {
	Availability domain.Availability `json:"availability"`
}

type ScheduleCreated struct {
	Schedule domain.ScheduleEntry `json:"schedule"`
}

type ScheduleDeleted struct {
	ScheduleID int64 `json:"schedule_id"`
}
