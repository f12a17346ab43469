package infrastructure

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/mateusmacedo/go-schedule/internal/schedule/application"
	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
	pkgApp "github.com/mateusmacedo/go-schedule/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-schedule/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-schedule/pkg/infrastructure"
	"github.com/mateusmacedo/go-schedule/pkg/infrastructure/watermill/adapter"
)

const defaultRequestTimeout = 10 * time.Second

type ScheduleHTTPHandler struct {
	commandBus  pkgApp.CommandBus
	queryBus    pkgApp.QueryBus
	queue       *adapter.CommandQueue
	idGenerator pkgDomain.IDGenerator[string]
	logger      pkgApp.AppLogger
	timeout     time.Duration
	limiter     *rate.Limiter
}

// NewScheduleHTTPHandler cria o handler HTTP. queue pode ser nil, e nesse caso
// POST /commands/{name} responde 503.
func NewScheduleHTTPHandler(
	commandBus pkgApp.CommandBus,
	queryBus pkgApp.QueryBus,
	queue *adapter.CommandQueue,
	idGenerator pkgDomain.IDGenerator[string],
	logger pkgApp.AppLogger,
	timeout time.Duration,
) *ScheduleHTTPHandler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &ScheduleHTTPHandler{
		commandBus:  commandBus,
		queryBus:    queryBus,
		queue:       queue,
		idGenerator: idGenerator,
		logger:      logger,
		timeout:     timeout,
	}
}

// LimitEnqueue limita a taxa de POST /commands/{name}; acima dela a resposta é 429.
func (h *ScheduleHTTPHandler) LimitEnqueue(limit rate.Limit, burst int) {
	h.limiter = rate.NewLimiter(limit, burst)
}

// Sob /schedules, {schedule} é o id nas rotas de escrita e a data (YYYY-MM-DD) nos relatórios.
func (h *ScheduleHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Route("/locations", func(r chi.Router) {
		r.Post("/", h.HandleCreateLocation)
		r.Get("/", h.HandleListLocations)
		r.Get("/{locationID}", h.HandleGetLocation)
		r.Patch("/{locationID}", h.HandleUpdateLocation)
		r.Delete("/{locationID}", h.HandleDeleteLocation)
	})
	router.Route("/voyages", func(r chi.Router) {
		r.Post("/", h.HandleCreateVoyage)
		r.Get("/", h.HandleListVoyagesByOrigin)
		r.Get("/{voyageID}", h.HandleGetVoyage)
		r.Patch("/{voyageID}", h.HandleUpdateVoyage)
		r.Delete("/{voyageID}", h.HandleDeleteVoyage)
		r.Post("/{voyageID}/tickets", h.HandleCreateTickets)
		r.Get("/{voyageID}/tickets", h.HandleListActiveTickets)
		r.Put("/{voyageID}/availability", h.HandleSetAvailability)
		r.Patch("/{voyageID}/availability", h.HandleUpdateAvailability)
		r.Get("/{voyageID}/availability", h.HandleGetAvailability)
		r.Post("/{voyageID}/availability/book", h.HandleBookSeats)
		r.Post("/{voyageID}/availability/release", h.HandleReleaseSeats)
	})
	router.Get("/tickets", h.HandleListActiveTickets)
	router.Patch("/tickets/{ticketID}", h.HandleUpdateTicketStatus)
	router.Delete("/tickets/{ticketID}", h.HandleDeleteTicket)
	router.Route("/schedules", func(r chi.Router) {
		r.Post("/", h.HandleCreateSchedule)
		r.Get("/", h.HandleListSchedules)
		r.Post("/{schedule}/voyages", h.HandleAddVoyageToSchedule)
		r.Put("/{schedule}/voyages/{voyageID}/availability", h.HandleSetScheduledAvailability)
		r.Delete("/{schedule}", h.HandleDeleteSchedule)
		r.Get("/{schedule}/summary", h.HandleScheduleSummary)
		r.Get("/{schedule}/voyages/{voyageID}/load", h.HandleVoyageLoad)
	})
	router.Post("/commands/{commandName}", h.HandleEnqueueCommand)
}

// RequestContext copia o request id do chi para o contexto lido pelo logger.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(pkgInfra.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func dispatch[T any, R any](h *ScheduleHTTPHandler, w http.ResponseWriter, r *http.Request, name string, data T, status int) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	command := pkgDomain.NewCommand(name, data, pkgInfra.CommandMetadata(ctx, h.idGenerator))
	result, err := pkgApp.DispatchCommand[T, R](ctx, h.commandBus, command)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, status, result)
}

func ask[T any, R any](h *ScheduleHTTPHandler, w http.ResponseWriter, r *http.Request, name string, data T) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := pkgApp.DispatchQuery[T, R](ctx, h.queryBus, pkgDomain.NewQuery(name, data))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ScheduleHTTPHandler) HandleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var data application.CreateLocationData
	if !decode(w, r, &data) {
		return
	}
	dispatch[application.CreateLocationData, domain.LocationEntry](h, w, r, application.CreateLocationCommand, data, http.StatusCreated)
}

func (h *ScheduleHTTPHandler) HandleListLocations(w http.ResponseWriter, r *http.Request) {
	ask[application.ListLocationsData, []domain.LocationEntry](h, w, r, application.ListLocationsQuery, application.ListLocationsData{})
}

func (h *ScheduleHTTPHandler) HandleGetLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "locationID")
	if !ok {
		return
	}
	ask[application.GetLocationData, domain.LocationEntry](h, w, r, application.GetLocationQuery, application.GetLocationData{LocationID: id})
}

func (h *ScheduleHTTPHandler) HandleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "locationID")
	if !ok {
		return
	}
	var data application.UpdateLocationData
	if !decode(w, r, &data) {
		return
	}
	data.LocationID = id
	dispatch[application.UpdateLocationData, domain.LocationEntry](h, w, r, application.UpdateLocationCommand, data, http.StatusOK)
}

func (h *ScheduleHTTPHandler) HandleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "locationID")
	if !ok {
		return
	}
	remove(h, w, r, application.DeleteLocationCommand, application.DeleteLocationData{LocationID: id})
}

func (h *ScheduleHTTPHandler) HandleCreateVoyage(w http.ResponseWriter, r *http.Request) {
	var data application.CreateVoyageData
	if !decode(w, r, &data) {
		return
	}
	dispatch[application.CreateVoyageData, domain.Voyage](h, w, r, application.CreateVoyageCommand, data, http.StatusCreated)
}

func (h *ScheduleHTTPHandler) HandleListVoyagesByOrigin(w http.ResponseWriter, r *http.Request) {
	originID, err := strconv.ParseInt(r.URL.Query().Get("origin"), 10, 64)
	if err != nil {
		handleError(w, "query parameter origin must be an integer id", http.StatusBadRequest)
		return
	}
	ask[application.ListVoyagesByOriginData, []domain.Voyage](h, w, r, application.ListVoyagesByOriginQuery,
		application.ListVoyagesByOriginData{OriginID: originID})
}

func (h *ScheduleHTTPHandler) HandleGetVoyage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "voyageID")
	if !ok {
		return
	}
	ask[application.GetVoyageData, domain.Voyage](h, w, r, application.GetVoyageQuery, application.GetVoyageData{VoyageID: id})
}

func (h *ScheduleHTTPHandler) HandleUpdateVoyage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "voyageID")
	if !ok {
		return
	}
	var data application.UpdateVoyageData
	if !decode(w, r, &data) {
		return
	}
	data.VoyageID = id
	dispatch[application.UpdateVoyageData, domain.Voyage](h, w, r, application.UpdateVoyageCommand, data, http.StatusOK)
}

func (h *ScheduleHTTPHandler) HandleDeleteVoyage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "voyageID")
	if !ok {
		return
	}
	remove(h, w, r, application.DeleteVoyageCommand, application.DeleteVoyageData{VoyageID: id})
}

// HandleCreateTickets aceita um único bilhete ou {"tickets": [...]} para venda em lote.
func (h *ScheduleHTTPHandler) HandleCreateTickets(w http.ResponseWriter, r *http.Request) {
	voyageID, ok := pathID(w, r, "voyageID")
	if !ok {
		return
	}
	var body struct {
		application.TicketData
		Tickets []application.TicketData `json:"tickets"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Tickets != nil {
		dispatch[application.AddTicketsData, []domain.Ticket](h, w, r, application.AddTicketsCommand,
			application.AddTicketsData{VoyageID: voyageID, Tickets: body.Tickets}, http.StatusCreated)
		return
	}
	dispatch[application.CreateTicketData, domain.Ticket](h, w, r, application.CreateTicketCommand,
		application.CreateTicketData{VoyageID: voyageID, TicketData: body.TicketData}, http.StatusCreated)
}

func (h *ScheduleHTTPHandler) HandleListActiveTickets(w http.ResponseWriter, r *http.Request) {
	var voyageID int64
	if chi.URLParam(r, "voyageID") != "" {
		id, ok := pathID(w, r, "voyageID")
		if !ok {
			return
		}
		voyageID = id
	}
	ask[application.ListActiveTicketsData, []domain.Ticket](h, w, r, application.ListActiveTicketsQuery,
		application.ListActiveTicketsData{VoyageID: voyageID})
}

func (h *ScheduleHTTPHandler) HandleUpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "ticketID")
	if !ok {
		return
	}
	var data application.UpdateTicketStatusData
	if !decode(w, r, &data) {
		return
	}
	data.TicketID = id
	dispatch[application.UpdateTicketStatusData, domain.Ticket](h, w, r, application.UpdateTicketStatusCommand, data, http.StatusOK)
}

func (h *ScheduleHTTPHandler) HandleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "ticketID")
	if !ok {
		return
	}
	remove(h, w, r, application.DeleteTicketCommand, application.DeleteTicketData{TicketID: id})
}

func (h *ScheduleHTTPHandler) HandleSetAvailability(w http.ResponseWriter, r *http.Request) {
	h.setAvailability(w, r, 0)
}

func (h *ScheduleHTTPHandler) HandleSetScheduledAvailability(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := pathID(w, r, "schedule")
	if !ok {
		return
	}
	h.setAvailability(w, r, scheduleID)
}

func (h *ScheduleHTTPHandler) setAvailability(w http.ResponseWriter, r *http.Request, scheduleID int64) {
	voyageID, ok := pathID(w, r, "voyageID")
	if !ok {
		return
	}
	var data application.SetAvailabilityData
	if !decode(w, r, &data) {
		return
	}
	data.VoyageID = voyageID
	data.ScheduleID = scheduleID
	dispatch[application.SetAvailabilityData, domain.Availability](h, w, r, application.SetAvailabilityCommand, data, http.StatusCreated)
}

func (h *ScheduleHTTPHandler) HandleUpdateAvailability(w http.ResponseWriter, r *http.Request) {
	voyageID, ok := pathID(w, r, "voyageID")
	if !ok {
		return
	}
	var data application.UpdateAvailabilityData
	if !decode(w, r, &data) {
		return
	}
	data.VoyageID = voyageID
	dispatch[application.UpdateAvailabilityData, domain.Availability](h, w, r, application.UpdateAvailabilityCommand, data, http.StatusOK)
}

func (h *ScheduleHTTPHandler) HandleGetAvailability(w http.ResponseWriter, r *http.Request) {
	voyageID, ok := pathID(w, r, "voyageID")
	if !ok {
		return
	}
	ask[application.GetAvailabilityData, domain.Availability](h, w, r, application.GetAvailabilityQuery,
		application.GetAvailabilityData{VoyageID: voyageID})
}

func (h *ScheduleHTTPHandler) HandleBookSeats(w http.ResponseWriter, r *http.Request) {
	h.seats(w, r, application.BookSeatsCommand)
}

func (h *ScheduleHTTPHandler) HandleReleaseSeats(w http.ResponseWriter, r *http.Request) {
	h.seats(w, r, application.ReleaseSeatsCommand)
}

func (h *ScheduleHTTPHandler) seats(w http.ResponseWriter, r *http.Request, name string) {
	voyageID, ok := pathID(w, r, "voyageID")
	if !ok {
		return
	}
	var data application.SeatsData
	if !decode(w, r, &data) {
		return
	}
	data.VoyageID = voyageID
	dispatch[application.SeatsData, domain.Availability](h, w, r, name, data, http.StatusOK)
}

func (h *ScheduleHTTPHandler) HandleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var data application.CreateScheduleData
	if !decode(w, r, &data) {
		return
	}
	dispatch[application.CreateScheduleData, domain.ScheduleEntry](h, w, r, application.CreateScheduleCommand, data, http.StatusCreated)
}

func (h *ScheduleHTTPHandler) HandleListSchedules(w http.ResponseWriter, r *http.Request) {
	from, ok := queryDate(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryDate(w, r, "to")
	if !ok {
		return
	}
	ask[application.ListSchedulesData, []domain.ScheduleEntry](h, w, r, application.ListSchedulesQuery,
		application.ListSchedulesData{From: from, To: to})
}

func (h *ScheduleHTTPHandler) HandleAddVoyageToSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := pathID(w, r, "schedule")
	if !ok {
		return
	}
	var data application.AddVoyageToScheduleData
	if !decode(w, r, &data) {
		return
	}
	data.ScheduleID = scheduleID
	dispatch[application.AddVoyageToScheduleData, domain.Voyage](h, w, r, application.AddVoyageToScheduleCommand, data, http.StatusCreated)
}

func (h *ScheduleHTTPHandler) HandleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "schedule")
	if !ok {
		return
	}
	remove(h, w, r, application.DeleteScheduleCommand, application.DeleteScheduleData{ScheduleID: id})
}

func (h *ScheduleHTTPHandler) HandleScheduleSummary(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	ask[application.GetScheduleSummaryData, application.ScheduleSummary](h, w, r, application.GetScheduleSummaryQuery,
		application.GetScheduleSummaryData{Date: date})
}

func (h *ScheduleHTTPHandler) HandleVoyageLoad(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	voyageID, ok := pathID(w, r, "voyageID")
	if !ok {
		return
	}
	ask[application.GetVoyageLoadData, domain.Load](h, w, r, application.GetVoyageLoadQuery,
		application.GetVoyageLoadData{Date: date, VoyageID: voyageID})
}

// HandleEnqueueCommand publica o comando na fila e responde sem esperar a execução.
func (h *ScheduleHTTPHandler) HandleEnqueueCommand(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		handleError(w, "command queue is not configured", http.StatusServiceUnavailable)
		return
	}
	if h.limiter != nil && !h.limiter.Allow() {
		handleError(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		handleError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	name := chi.URLParam(r, "commandName")
	metadata := pkgInfra.CommandMetadata(ctx, h.idGenerator)
	messageID, err := h.queue.EnqueueRaw(ctx, name, payload, metadata)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, pkgApp.ErrNoHandler):
			handleError(w, err.Error(), http.StatusNotFound)
		case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
			handleError(w, err.Error(), http.StatusBadRequest)
		default:
			h.handleError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message_id":     messageID,
		"command":        name,
		"correlation_id": metadata.Get(pkgDomain.MetadataCorrelationID),
	})
}

func remove[T any](h *ScheduleHTTPHandler, w http.ResponseWriter, r *http.Request, name string, data T) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	command := pkgDomain.NewCommand(name, data, pkgInfra.CommandMetadata(ctx, h.idGenerator))
	if _, err := pkgApp.DispatchCommand[T, int64](ctx, h.commandBus, command); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusFor traduz as classes de erro do domínio em status HTTP.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConsistency), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *ScheduleHTTPHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		pkgApp.LogError(r.Context(), h.logger, "request failed", err, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		handleError(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		handleError(w, param+" must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func pathDate(w http.ResponseWriter, r *http.Request) (domain.Date, bool) {
	date, err := domain.ParseDate(chi.URLParam(r, "schedule"))
	if err != nil {
		handleError(w, err.Error(), http.StatusBadRequest)
		return domain.Date{}, false
	}
	return date, true
}

func queryDate(w http.ResponseWriter, r *http.Request, param string) (domain.Date, bool) {
	date, err := domain.ParseDate(r.URL.Query().Get(param))
	if err != nil {
		handleError(w, "query parameter "+param+" must be a YYYY-MM-DD date", http.StatusBadRequest)
		return domain.Date{}, false
	}
	return date, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func handleError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
