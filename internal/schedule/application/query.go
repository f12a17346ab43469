package application

import "github.com/mateusmacedo/go-schedule/internal/schedule/domain"

const (
	GetLocationQuery         = "GetLocation"
	ListLocationsQuery       = "ListLocations"
	GetVoyageQuery           = "GetVoyage"
	ListVoyagesByOriginQuery = "ListVoyagesByOrigin"
	ListActiveTicketsQuery   = "ListActiveTickets"
	GetAvailabilityQuery     = "GetAvailability"
	GetScheduleSummaryQuery  = "GetScheduleSummary"
	GetVoyageLoadQuery       = "GetVoyageLoad"
	ListSchedulesQuery       = "ListSchedules"
)

type GetLocationData struct {
	LocationID int64
}

type ListLocationsData struct{}

type GetVoyageData struct {
	VoyageID int64
}

type ListVoyagesByOriginData struct {
	OriginID int64
}

// ListActiveTicketsData com VoyageID zero lista os bilhetes ativos de todas as viagens.
type ListActiveTicketsData struct {
	VoyageID int64
}

type GetAvailabilityData struct {
	VoyageID int64
}

type GetScheduleSummaryData struct {
	Date domain.Date
}

type GetVoyageLoadData struct {
	Date     domain.Date
	VoyageID int64
}

type ListSchedulesData struct {
	From domain.Date
	To   domain.Date
}

// ScheduleSummary é o resumo do agregado acompanhado da data consultada.
type ScheduleSummary struct {
	Date domain.Date `json:"schedule_date"`
	domain.Summary
}
