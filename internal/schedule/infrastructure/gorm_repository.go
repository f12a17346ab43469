package infrastructure

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
	"github.com/mateusmacedo/go-schedule/pkg/application"
)

// GormStore é a unidade de trabalho sobre PostgreSQL; cada Do roda numa transação.
type GormStore struct {
	db     *gorm.DB
	logger application.AppLogger
}

func NewGormStore(dsn string, logger application.AppLogger) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return NewGormStoreFromDB(db, logger), nil
}

func NewGormStoreFromDB(db *gorm.DB, logger application.AppLogger) *GormStore {
	return &GormStore{db: db, logger: logger}
}

func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models()...); err != nil {
		application.LogError(ctx, s.logger, "failed to migrate schema", err, nil)
		return err
	}
	application.LogInfo(ctx, s.logger, "schema migrated", nil)
	return nil
}

// Truncate apaga todas as linhas e reinicia as sequências.
func (s *GormStore) Truncate(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Exec("TRUNCATE TABLE tickets, availability, voyages, schedules, locations RESTART IDENTITY CASCADE").Error
	if err != nil {
		application.LogError(ctx, s.logger, "failed to truncate tables", err, nil)
		return err
	}
	application.LogInfo(ctx, s.logger, "tables truncated", nil)
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, gormRepositories(tx, s.logger))
	})
}

func gormRepositories(tx *gorm.DB, logger application.AppLogger) domain.Repositories {
	base := gormRepository{db: tx, logger: logger}
	return domain.Repositories{
		Locations:    &gormLocationRepository{base},
		Voyages:      &gormVoyageRepository{base},
		Tickets:      &gormTicketRepository{base},
		Availability: &gormAvailabilityRepository{base},
		Schedules:    &gormScheduleRepository{base},
	}
}

type gormRepository struct {
	db     *gorm.DB
	logger application.AppLogger
}

// translate converte os erros do gorm nas classes do domínio.
func (r gormRepository) translate(ctx context.Context, err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(domain.ErrNotFound, what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(domain.ErrConflict, what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Wrapf(domain.ErrConflict, "%s: referenced by other rows", what)
	}
	application.LogError(ctx, r.logger, "database operation failed", err, map[string]interface{}{"target": what})
	return errors.Wrap(err, what)
}

func affected(result *gorm.DB, what string) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.Wrap(gorm.ErrRecordNotFound, what)
	}
	return nil
}

type gormLocationRepository struct{ gormRepository }

func (r *gormLocationRepository) Save(ctx context.Context, location domain.Location) (domain.LocationEntry, error) {
	m := locationModelFrom(domain.LocationEntry{Location: location})
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.LocationEntry{}, r.translate(ctx, err, "save location")
	}
	application.LogDebug(ctx, r.logger, "location saved", map[string]interface{}{"location_id": m.ID})
	return m.toEntry(), nil
}

func (r *gormLocationRepository) FindByID(ctx context.Context, id int64) (domain.LocationEntry, error) {
	var m locationModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.LocationEntry{}, r.translate(ctx, err, "location")
	}
	return m.toEntry(), nil
}

func (r *gormLocationRepository) FindAll(ctx context.Context) ([]domain.LocationEntry, error) {
	var rows []locationModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, r.translate(ctx, err, "list locations")
	}
	entries := make([]domain.LocationEntry, 0, len(rows))
	for _, m := range rows {
		entries = append(entries, m.toEntry())
	}
	return entries, nil
}

func (r *gormLocationRepository) Update(ctx context.Context, entry domain.LocationEntry) error {
	m := locationModelFrom(entry)
	result := r.db.WithContext(ctx).Model(&locationModel{}).Where("id = ?", entry.ID).Updates(map[string]interface{}{
		"title":     m.Title,
		"latitude":  m.Latitude,
		"longitude": m.Longitude,
	})
	return r.translate(ctx, affected(result, "location"), "location")
}

func (r *gormLocationRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&locationModel{}, id)
	return r.translate(ctx, affected(result, "location"), "location")
}

type gormVoyageRepository struct{ gormRepository }

func (r *gormVoyageRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Origin").Preload("Destination").Order("voyage_id")
}

func (r *gormVoyageRepository) list(ctx context.Context, what string, scope func(*gorm.DB) *gorm.DB) ([]domain.Voyage, error) {
	var rows []voyageModel
	if err := scope(r.query(ctx)).Find(&rows).Error; err != nil {
		return nil, r.translate(ctx, err, what)
	}
	voyages := make([]domain.Voyage, 0, len(rows))
	for _, m := range rows {
		v, _ := m.toDomain()
		voyages = append(voyages, v)
	}
	return voyages, nil
}

func (r *gormVoyageRepository) Save(ctx context.Context, voyage domain.Voyage, link domain.VoyageLink) (domain.Voyage, error) {
	m := voyageModelFrom(voyage, link)
	m.VoyageID = 0
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return domain.Voyage{}, r.translate(ctx, err, "save voyage")
	}
	voyage.ID = m.VoyageID
	application.LogDebug(ctx, r.logger, "voyage saved", map[string]interface{}{"voyage_id": voyage.ID})
	return voyage, nil
}

func (r *gormVoyageRepository) FindByID(ctx context.Context, id int64) (domain.Voyage, domain.VoyageLink, error) {
	var m voyageModel
	if err := r.query(ctx).First(&m, "voyage_id = ?", id).Error; err != nil {
		return domain.Voyage{}, domain.VoyageLink{}, r.translate(ctx, err, "voyage")
	}
	v, link := m.toDomain()
	return v, link, nil
}

func (r *gormVoyageRepository) FindByOrigin(ctx context.Context, originID int64) ([]domain.Voyage, error) {
	return r.list(ctx, "voyages by origin", func(db *gorm.DB) *gorm.DB {
		return db.Where("origin_id = ?", originID)
	})
}

func (r *gormVoyageRepository) FindDepartingBetween(ctx context.Context, start, end time.Time) ([]domain.Voyage, error) {
	return r.list(ctx, "voyages by departure", func(db *gorm.DB) *gorm.DB {
		return db.Where("dep_datetime_utc BETWEEN ? AND ?", start.UTC(), end.UTC())
	})
}

func (r *gormVoyageRepository) FindBySchedule(ctx context.Context, scheduleID int64) ([]domain.Voyage, error) {
	return r.list(ctx, "voyages by schedule", func(db *gorm.DB) *gorm.DB {
		return db.Where("schedule_id = ?", scheduleID)
	})
}

func (r *gormVoyageRepository) Update(ctx context.Context, voyage domain.Voyage, link domain.VoyageLink) error {
	m := voyageModelFrom(voyage, link)
	result := r.db.WithContext(ctx).Model(&voyageModel{}).Where("voyage_id = ?", voyage.ID).Updates(map[string]interface{}{
		"dep_datetime_utc": m.DepDatetimeUTC,
		"arr_datetime_utc": m.ArrDatetimeUTC,
		"origin_id":        m.OriginID,
		"destination_id":   m.DestinationID,
		"marketing_number": m.MarketingNumber,
		"vehicle_number":   m.VehicleNumber,
		"schedule_id":      m.ScheduleID,
	})
	return r.translate(ctx, affected(result, "voyage"), "voyage")
}

func (r *gormVoyageRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&voyageModel{}, "voyage_id = ?", id)
	return r.translate(ctx, affected(result, "voyage"), "voyage")
}

type gormTicketRepository struct{ gormRepository }

func (r *gormTicketRepository) list(ctx context.Context, what string, scope func(*gorm.DB) *gorm.DB) ([]domain.Ticket, error) {
	var rows []ticketModel
	if err := scope(r.db.WithContext(ctx).Order("ticket_id")).Find(&rows).Error; err != nil {
		return nil, r.translate(ctx, err, what)
	}
	tickets := make([]domain.Ticket, 0, len(rows))
	for _, m := range rows {
		tickets = append(tickets, m.toDomain())
	}
	return tickets, nil
}

func (r *gormTicketRepository) Save(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	m := ticketModelFrom(ticket)
	m.TicketID = 0
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return domain.Ticket{}, r.translate(ctx, err, "save ticket")
	}
	application.LogDebug(ctx, r.logger, "ticket saved", map[string]interface{}{"ticket_id": m.TicketID})
	return m.toDomain(), nil
}

func (r *gormTicketRepository) FindByID(ctx context.Context, id int64) (domain.Ticket, error) {
	var m ticketModel
	if err := r.db.WithContext(ctx).First(&m, "ticket_id = ?", id).Error; err != nil {
		return domain.Ticket{}, r.translate(ctx, err, "ticket")
	}
	return m.toDomain(), nil
}

func (r *gormTicketRepository) FindByVoyage(ctx context.Context, voyageID int64) ([]domain.Ticket, error) {
	return r.list(ctx, "tickets by voyage", func(db *gorm.DB) *gorm.DB {
		return db.Where("voyage_id = ?", voyageID)
	})
}

func (r *gormTicketRepository) FindActive(ctx context.Context) ([]domain.Ticket, error) {
	return r.list(ctx, "active tickets", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true)
	})
}

func (r *gormTicketRepository) Update(ctx context.Context, ticket domain.Ticket) error {
	result := r.db.WithContext(ctx).Model(&ticketModel{}).Where("ticket_id = ?", ticket.ID).Updates(map[string]interface{}{
		"price":     ticket.Price,
		"voyage_id": ticket.VoyageID,
		"is_active": ticket.IsActive,
	})
	return r.translate(ctx, affected(result, "ticket"), "ticket")
}

func (r *gormTicketRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&ticketModel{}, "ticket_id = ?", id)
	return r.translate(ctx, affected(result, "ticket"), "ticket")
}

func (r *gormTicketRepository) DeleteByVoyage(ctx context.Context, voyageID int64) error {
	err := r.db.WithContext(ctx).Where("voyage_id = ?", voyageID).Delete(&ticketModel{}).Error
	return r.translate(ctx, err, "tickets by voyage")
}

type gormAvailabilityRepository struct{ gormRepository }

func (r *gormAvailabilityRepository) Save(ctx context.Context, availability domain.Availability) error {
	m := availabilityModelFrom(availability)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return r.translate(ctx, err, "save availability")
	}
	application.LogDebug(ctx, r.logger, "availability saved", map[string]interface{}{"voyage_id": m.VoyageID})
	return nil
}

func (r *gormAvailabilityRepository) FindByVoyage(ctx context.Context, voyageID int64) (domain.Availability, error) {
	var m availabilityModel
	if err := r.db.WithContext(ctx).First(&m, "voyage_id = ?", voyageID).Error; err != nil {
		return domain.Availability{}, r.translate(ctx, err, "availability")
	}
	return m.toDomain(), nil
}

func (r *gormAvailabilityRepository) Update(ctx context.Context, availability domain.Availability) error {
	result := r.db.WithContext(ctx).Model(&availabilityModel{}).Where("voyage_id = ?", availability.VoyageID).Updates(map[string]interface{}{
		"remaining_seats": availability.RemainingSeats,
		"bookings":        availability.Bookings,
		"is_active":       availability.IsActive,
	})
	return r.translate(ctx, affected(result, "availability"), "availability")
}

func (r *gormAvailabilityRepository) DeleteByVoyage(ctx context.Context, voyageID int64) error {
	err := r.db.WithContext(ctx).Where("voyage_id = ?", voyageID).Delete(&availabilityModel{}).Error
	return r.translate(ctx, err, "availability")
}

type gormScheduleRepository struct{ gormRepository }

func (r *gormScheduleRepository) Save(ctx context.Context, date domain.Date) (domain.ScheduleEntry, error) {
	m := scheduleModel{ScheduleDate: date.Start()}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.ScheduleEntry{}, r.translate(ctx, err, "save schedule")
	}
	application.LogDebug(ctx, r.logger, "schedule saved", map[string]interface{}{"schedule_id": m.ID})
	return m.toEntry(), nil
}

func (r *gormScheduleRepository) FindByID(ctx context.Context, id int64) (domain.ScheduleEntry, error) {
	var m scheduleModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.ScheduleEntry{}, r.translate(ctx, err, "schedule")
	}
	return m.toEntry(), nil
}

func (r *gormScheduleRepository) FindByDate(ctx context.Context, date domain.Date) (domain.ScheduleEntry, error) {
	var m scheduleModel
	if err := r.db.WithContext(ctx).First(&m, "schedule_date = ?", date.String()).Error; err != nil {
		return domain.ScheduleEntry{}, r.translate(ctx, err, "schedule for "+date.String())
	}
	return m.toEntry(), nil
}

func (r *gormScheduleRepository) FindBetween(ctx context.Context, from, to domain.Date) ([]domain.ScheduleEntry, error) {
	var rows []scheduleModel
	err := r.db.WithContext(ctx).
		Where("schedule_date BETWEEN ? AND ?", from.String(), to.String()).
		Order("schedule_date").
		Find(&rows).Error
	if err != nil {
		return nil, r.translate(ctx, err, "list schedules")
	}
	entries := make([]domain.ScheduleEntry, 0, len(rows))
	for _, m := range rows {
		entries = append(entries, m.toEntry())
	}
	return entries, nil
}

func (r *gormScheduleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&scheduleModel{}, id)
	return r.translate(ctx, affected(result, "schedule"), "schedule")
}
