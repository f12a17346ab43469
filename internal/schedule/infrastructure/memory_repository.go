package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
	pkgApp "github.com/mateusmacedo/go-schedule/pkg/application"
)

type voyageRecord struct {
	voyage domain.Voyage
	link   domain.VoyageLink
}

type memoryData struct {
	seq          int64
	locations    map[int64]domain.Location
	voyages      map[int64]voyageRecord
	tickets      map[int64]domain.Ticket
	availability map[int64]domain.Availability
	schedules    map[int64]domain.Date
}

func newMemoryData() *memoryData {
	return &memoryData{
		locations:    make(map[int64]domain.Location),
		voyages:      make(map[int64]voyageRecord),
		tickets:      make(map[int64]domain.Ticket),
		availability: make(map[int64]domain.Availability),
		schedules:    make(map[int64]domain.Date),
	}
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (d *memoryData) clone() *memoryData {
	return &memoryData{
		seq:          d.seq,
		locations:    copyMap(d.locations),
		voyages:      copyMap(d.voyages),
		tickets:      copyMap(d.tickets),
		availability: copyMap(d.availability),
		schedules:    copyMap(d.schedules),
	}
}

func (d *memoryData) nextID() int64 {
	d.seq++
	return d.seq
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// InMemoryStore guarda tudo em mapas. Cada unidade de trabalho opera sobre uma
// cópia que só substitui o estado quando fn termina sem erro.
type InMemoryStore struct {
	mu     sync.Mutex
	data   *memoryData
	logger pkgApp.AppLogger
}

func NewInMemoryStore(logger pkgApp.AppLogger) *InMemoryStore {
	return &InMemoryStore{
		data:   newMemoryData(),
		logger: logger,
	}
}

func (s *InMemoryStore) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.data.clone()
	if err := fn(ctx, work.repositories(s.logger)); err != nil {
		pkgApp.LogDebug(ctx, s.logger, "memory transaction rolled back", map[string]interface{}{"error": err.Error()})
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (d *memoryData) repositories(logger pkgApp.AppLogger) domain.Repositories {
	return domain.Repositories{
		Locations:    &memoryLocationRepository{data: d, logger: logger},
		Voyages:      &memoryVoyageRepository{data: d, logger: logger},
		Tickets:      &memoryTicketRepository{data: d, logger: logger},
		Availability: &memoryAvailabilityRepository{data: d, logger: logger},
		Schedules:    &memoryScheduleRepository{data: d, logger: logger},
	}
}

type memoryLocationRepository struct {
	data   *memoryData
	logger pkgApp.AppLogger
}

func (r *memoryLocationRepository) Save(ctx context.Context, location domain.Location) (domain.LocationEntry, error) {
	entry := domain.LocationEntry{ID: r.data.nextID(), Location: location}
	r.data.locations[entry.ID] = location
	pkgApp.LogDebug(ctx, r.logger, "location saved", map[string]interface{}{"location": entry})
	return entry, nil
}

func (r *memoryLocationRepository) FindByID(_ context.Context, id int64) (domain.LocationEntry, error) {
	location, ok := r.data.locations[id]
	if !ok {
		return domain.LocationEntry{}, errors.Wrapf(domain.ErrNotFound, "location %d", id)
	}
	return domain.LocationEntry{ID: id, Location: location}, nil
}

func (r *memoryLocationRepository) FindAll(_ context.Context) ([]domain.LocationEntry, error) {
	entries := make([]domain.LocationEntry, 0, len(r.data.locations))
	for _, id := range sortedKeys(r.data.locations) {
		entries = append(entries, domain.LocationEntry{ID: id, Location: r.data.locations[id]})
	}
	return entries, nil
}

func (r *memoryLocationRepository) Update(ctx context.Context, entry domain.LocationEntry) error {
	if _, ok := r.data.locations[entry.ID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "location %d", entry.ID)
	}
	r.data.locations[entry.ID] = entry.Location
	pkgApp.LogDebug(ctx, r.logger, "location updated", map[string]interface{}{"location": entry})
	return nil
}

func (r *memoryLocationRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.data.locations[id]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "location %d", id)
	}
	for _, rec := range r.data.voyages {
		if rec.link.OriginID == id || rec.link.DestinationID == id {
			return errors.Wrapf(domain.ErrConflict, "location %d is used by voyage %d", id, rec.voyage.ID)
		}
	}
	delete(r.data.locations, id)
	return nil
}

type memoryVoyageRepository struct {
	data   *memoryData
	logger pkgApp.AppLogger
}

// resolve preenche origem e destino com os valores atuais das localizações.
func (r *memoryVoyageRepository) resolve(rec voyageRecord) domain.Voyage {
	v := rec.voyage
	if origin, ok := r.data.locations[rec.link.OriginID]; ok {
		v.Origin = origin
	}
	if destination, ok := r.data.locations[rec.link.DestinationID]; ok {
		v.Destination = destination
	}
	return v
}

func (r *memoryVoyageRepository) checkLink(link domain.VoyageLink) error {
	if _, ok := r.data.locations[link.OriginID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "location %d", link.OriginID)
	}
	if _, ok := r.data.locations[link.DestinationID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "location %d", link.DestinationID)
	}
	if link.ScheduleID != 0 {
		if _, ok := r.data.schedules[link.ScheduleID]; !ok {
			return errors.Wrapf(domain.ErrNotFound, "schedule %d", link.ScheduleID)
		}
	}
	return nil
}

func (r *memoryVoyageRepository) Save(ctx context.Context, voyage domain.Voyage, link domain.VoyageLink) (domain.Voyage, error) {
	if err := r.checkLink(link); err != nil {
		return domain.Voyage{}, err
	}
	voyage.ID = r.data.nextID()
	r.data.voyages[voyage.ID] = voyageRecord{voyage: voyage, link: link}
	pkgApp.LogDebug(ctx, r.logger, "voyage saved", map[string]interface{}{"voyage_id": voyage.ID})
	return voyage, nil
}

func (r *memoryVoyageRepository) FindByID(_ context.Context, id int64) (domain.Voyage, domain.VoyageLink, error) {
	rec, ok := r.data.voyages[id]
	if !ok {
		return domain.Voyage{}, domain.VoyageLink{}, errors.Wrapf(domain.ErrNotFound, "voyage %d", id)
	}
	return r.resolve(rec), rec.link, nil
}

func (r *memoryVoyageRepository) filter(keep func(voyageRecord) bool) []domain.Voyage {
	voyages := make([]domain.Voyage, 0)
	for _, id := range sortedKeys(r.data.voyages) {
		if rec := r.data.voyages[id]; keep(rec) {
			voyages = append(voyages, r.resolve(rec))
		}
	}
	return voyages
}

func (r *memoryVoyageRepository) FindByOrigin(_ context.Context, originID int64) ([]domain.Voyage, error) {
	return r.filter(func(rec voyageRecord) bool { return rec.link.OriginID == originID }), nil
}

func (r *memoryVoyageRepository) FindDepartingBetween(_ context.Context, start, end time.Time) ([]domain.Voyage, error) {
	return r.filter(func(rec voyageRecord) bool {
		return !rec.voyage.Departure.Before(start) && !rec.voyage.Departure.After(end)
	}), nil
}

func (r *memoryVoyageRepository) FindBySchedule(_ context.Context, scheduleID int64) ([]domain.Voyage, error) {
	return r.filter(func(rec voyageRecord) bool { return rec.link.ScheduleID == scheduleID }), nil
}

func (r *memoryVoyageRepository) Update(ctx context.Context, voyage domain.Voyage, link domain.VoyageLink) error {
	if _, ok := r.data.voyages[voyage.ID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "voyage %d", voyage.ID)
	}
	if err := r.checkLink(link); err != nil {
		return err
	}
	r.data.voyages[voyage.ID] = voyageRecord{voyage: voyage, link: link}
	pkgApp.LogDebug(ctx, r.logger, "voyage updated", map[string]interface{}{"voyage_id": voyage.ID})
	return nil
}

func (r *memoryVoyageRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.data.voyages[id]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "voyage %d", id)
	}
	delete(r.data.voyages, id)
	return nil
}

type memoryTicketRepository struct {
	data   *memoryData
	logger pkgApp.AppLogger
}

func (r *memoryTicketRepository) Save(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	if _, ok := r.data.voyages[ticket.VoyageID]; !ok {
		return domain.Ticket{}, errors.Wrapf(domain.ErrNotFound, "voyage %d", ticket.VoyageID)
	}
	ticket.ID = r.data.nextID()
	r.data.tickets[ticket.ID] = ticket
	pkgApp.LogDebug(ctx, r.logger, "ticket saved", map[string]interface{}{"ticket": ticket})
	return ticket, nil
}

func (r *memoryTicketRepository) FindByID(_ context.Context, id int64) (domain.Ticket, error) {
	ticket, ok := r.data.tickets[id]
	if !ok {
		return domain.Ticket{}, errors.Wrapf(domain.ErrNotFound, "ticket %d", id)
	}
	return ticket, nil
}

func (r *memoryTicketRepository) filter(keep func(domain.Ticket) bool) []domain.Ticket {
	tickets := make([]domain.Ticket, 0)
	for _, id := range sortedKeys(r.data.tickets) {
		if t := r.data.tickets[id]; keep(t) {
			tickets = append(tickets, t)
		}
	}
	return tickets
}

func (r *memoryTicketRepository) FindByVoyage(_ context.Context, voyageID int64) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool { return t.VoyageID == voyageID }), nil
}

func (r *memoryTicketRepository) FindActive(_ context.Context) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool { return t.IsActive }), nil
}

func (r *memoryTicketRepository) Update(_ context.Context, ticket domain.Ticket) error {
	if _, ok := r.data.tickets[ticket.ID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "ticket %d", ticket.ID)
	}
	r.data.tickets[ticket.ID] = ticket
	return nil
}

func (r *memoryTicketRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.data.tickets[id]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "ticket %d", id)
	}
	delete(r.data.tickets, id)
	return nil
}

func (r *memoryTicketRepository) DeleteByVoyage(_ context.Context, voyageID int64) error {
	for id, t := range r.data.tickets {
		if t.VoyageID == voyageID {
			delete(r.data.tickets, id)
		}
	}
	return nil
}

type memoryAvailabilityRepository struct {
	data   *memoryData
	logger pkgApp.AppLogger
}

func (r *memoryAvailabilityRepository) Save(ctx context.Context, availability domain.Availability) error {
	if _, ok := r.data.voyages[availability.VoyageID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "voyage %d", availability.VoyageID)
	}
	if _, ok := r.data.availability[availability.VoyageID]; ok {
		return errors.Wrapf(domain.ErrConflict, "availability for voyage %d", availability.VoyageID)
	}
	r.data.availability[availability.VoyageID] = availability
	pkgApp.LogDebug(ctx, r.logger, "availability saved", map[string]interface{}{"availability": availability})
	return nil
}

func (r *memoryAvailabilityRepository) FindByVoyage(_ context.Context, voyageID int64) (domain.Availability, error) {
	availability, ok := r.data.availability[voyageID]
	if !ok {
		return domain.Availability{}, errors.Wrapf(domain.ErrNotFound, "availability for voyage %d", voyageID)
	}
	return availability, nil
}

func (r *memoryAvailabilityRepository) Update(_ context.Context, availability domain.Availability) error {
	if _, ok := r.data.availability[availability.VoyageID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "availability for voyage %d", availability.VoyageID)
	}
	r.data.availability[availability.VoyageID] = availability
	return nil
}

func (r *memoryAvailabilityRepository) DeleteByVoyage(_ context.Context, voyageID int64) error {
	delete(r.data.availability, voyageID)
	return nil
}

type memoryScheduleRepository struct {
	data   *memoryData
	logger pkgApp.AppLogger
}

func (r *memoryScheduleRepository) Save(ctx context.Context, date domain.Date) (domain.ScheduleEntry, error) {
	for _, existing := range r.data.schedules {
		if existing == date {
			return domain.ScheduleEntry{}, errors.Wrapf(domain.ErrConflict, "schedule for %s", date)
		}
	}
	entry := domain.ScheduleEntry{ID: r.data.nextID(), Date: date}
	r.data.schedules[entry.ID] = date
	pkgApp.LogDebug(ctx, r.logger, "schedule saved", map[string]interface{}{"schedule": entry})
	return entry, nil
}

func (r *memoryScheduleRepository) FindByID(_ context.Context, id int64) (domain.ScheduleEntry, error) {
	date, ok := r.data.schedules[id]
	if !ok {
		return domain.ScheduleEntry{}, errors.Wrapf(domain.ErrNotFound, "schedule %d", id)
	}
	return domain.ScheduleEntry{ID: id, Date: date}, nil
}

func (r *memoryScheduleRepository) FindByDate(_ context.Context, date domain.Date) (domain.ScheduleEntry, error) {
	for id, d := range r.data.schedules {
		if d == date {
			return domain.ScheduleEntry{ID: id, Date: d}, nil
		}
	}
	return domain.ScheduleEntry{}, errors.Wrapf(domain.ErrNotFound, "schedule for %s", date)
}

func (r *memoryScheduleRepository) FindBetween(_ context.Context, from, to domain.Date) ([]domain.ScheduleEntry, error) {
	entries := make([]domain.ScheduleEntry, 0)
	for id, d := range r.data.schedules {
		if d.Before(from) || to.Before(d) {
			continue
		}
		entries = append(entries, domain.ScheduleEntry{ID: id, Date: d})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}

func (r *memoryScheduleRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.data.schedules[id]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "schedule %d", id)
	}
	for _, rec := range r.data.voyages {
		if rec.link.ScheduleID == id {
			return errors.Wrapf(domain.ErrConflict, "schedule %d still has voyage %d", id, rec.voyage.ID)
		}
	}
	delete(r.data.schedules, id)
	return nil
}
