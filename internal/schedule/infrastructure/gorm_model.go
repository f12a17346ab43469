package infrastructure

import (
	"time"

	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
)

type locationModel struct {
	ID        int64   `gorm:"primaryKey"`
	Title     string  `gorm:"not null"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
}

func (locationModel) TableName() string { return "locations" }

func (m locationModel) toEntry() domain.LocationEntry {
	return domain.LocationEntry{
		ID: m.ID,
		Location: domain.Location{
			Title:       m.Title,
			Coordinates: domain.Coordinates{Latitude: m.Latitude, Longitude: m.Longitude},
		},
	}
}

func locationModelFrom(entry domain.LocationEntry) locationModel {
	return locationModel{
		ID:        entry.ID,
		Title:     entry.Location.Title,
		Latitude:  entry.Location.Coordinates.Latitude,
		Longitude: entry.Location.Coordinates.Longitude,
	}
}

type scheduleModel struct {
	ID           int64     `gorm:"primaryKey"`
	ScheduleDate time.Time `gorm:"type:date;uniqueIndex;not null"`
}

func (scheduleModel) TableName() string { return "schedules" }

func (m scheduleModel) toEntry() domain.ScheduleEntry {
	return domain.ScheduleEntry{ID: m.ID, Date: domain.DateOf(m.ScheduleDate)}
}

type voyageModel struct {
	VoyageID        int64          `gorm:"column:voyage_id;primaryKey"`
	DepDatetimeUTC  time.Time      `gorm:"column:dep_datetime_utc;not null;index"`
	ArrDatetimeUTC  time.Time      `gorm:"column:arr_datetime_utc;not null"`
	OriginID        int64          `gorm:"not null;index"`
	Origin          locationModel  `gorm:"foreignKey:OriginID;constraint:OnDelete:RESTRICT"`
	DestinationID   int64          `gorm:"not null"`
	Destination     locationModel  `gorm:"foreignKey:DestinationID;constraint:OnDelete:RESTRICT"`
	MarketingNumber int            `gorm:"not null"`
	VehicleNumber   string         `gorm:"not null"`
	ScheduleID      *int64         `gorm:"index"`
	Schedule        *scheduleModel `gorm:"foreignKey:ScheduleID;constraint:OnDelete:RESTRICT"`

	// tickets(voyage_id) e availability(voyage_id) referenciam voyages.
	Tickets      []ticketModel      `gorm:"foreignKey:VoyageID;references:VoyageID;constraint:OnDelete:CASCADE"`
	Availability *availabilityModel `gorm:"foreignKey:VoyageID;references:VoyageID;constraint:OnDelete:CASCADE"`
}

func (voyageModel) TableName() string { return "voyages" }

func (m voyageModel) toDomain() (domain.Voyage, domain.VoyageLink) {
	link := domain.VoyageLink{OriginID: m.OriginID, DestinationID: m.DestinationID}
	if m.ScheduleID != nil {
		link.ScheduleID = *m.ScheduleID
	}
	return domain.Voyage{
		ID:              m.VoyageID,
		Departure:       m.DepDatetimeUTC.UTC(),
		Arrival:         m.ArrDatetimeUTC.UTC(),
		Origin:          m.Origin.toEntry().Location,
		Destination:     m.Destination.toEntry().Location,
		MarketingNumber: m.MarketingNumber,
		VehicleNumber:   m.VehicleNumber,
	}, link
}

func voyageModelFrom(v domain.Voyage, link domain.VoyageLink) voyageModel {
	m := voyageModel{
		VoyageID:        v.ID,
		DepDatetimeUTC:  v.Departure.UTC(),
		ArrDatetimeUTC:  v.Arrival.UTC(),
		OriginID:        link.OriginID,
		DestinationID:   link.DestinationID,
		MarketingNumber: v.MarketingNumber,
		VehicleNumber:   v.VehicleNumber,
	}
	if link.ScheduleID != 0 {
		id := link.ScheduleID
		m.ScheduleID = &id
	}
	return m
}

type ticketModel struct {
	TicketID int64   `gorm:"column:ticket_id;primaryKey"`
	Price    float64 `gorm:"not null"`
	VoyageID int64   `gorm:"column:voyage_id;not null;index"`
	IsActive bool    `gorm:"not null"`
}

func (ticketModel) TableName() string { return "tickets" }

func (m ticketModel) toDomain() domain.Ticket {
	return domain.Ticket{ID: m.TicketID, Price: m.Price, VoyageID: m.VoyageID, IsActive: m.IsActive}
}

func ticketModelFrom(t domain.Ticket) ticketModel {
	return ticketModel{TicketID: t.ID, Price: t.Price, VoyageID: t.VoyageID, IsActive: t.IsActive}
}

type availabilityModel struct {
	VoyageID       int64 `gorm:"column:voyage_id;primaryKey;autoIncrement:false"`
	RemainingSeats int   `gorm:"not null"`
	Bookings       int   `gorm:"not null"`
	IsActive       bool  `gorm:"not null"`
}

func (availabilityModel) TableName() string { return "availability" }

func (m availabilityModel) toDomain() domain.Availability {
	return domain.Availability{
		VoyageID:       m.VoyageID,
		RemainingSeats: m.RemainingSeats,
		Bookings:       m.Bookings,
		IsActive:       m.IsActive,
	}
}

func availabilityModelFrom(a domain.Availability) availabilityModel {
	return availabilityModel{
		VoyageID:       a.VoyageID,
		RemainingSeats: a.RemainingSeats,
		Bookings:       a.Bookings,
		IsActive:       a.IsActive,
	}
}

func models() []interface{} {
	return []interface{}{
		&locationModel{},
		&scheduleModel{},
		&voyageModel{},
		&ticketModel{},
		&availabilityModel{},
	}
}
