package infrastructure_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
)

// runRepositoryContract exercita o comportamento comum a todas as implementações de UnitOfWork.
func runRepositoryContract(t *testing.T, newStore func(t *testing.T) domain.UnitOfWork) {
	day := domain.Date{Year: 2025, Month: time.March, Day: 14}

	seed := func(t *testing.T, uow domain.UnitOfWork) (origin, destination domain.LocationEntry, schedule domain.ScheduleEntry, voyage domain.Voyage) {
		t.Helper()
		err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			var err error
			if origin, err = repos.Locations.Save(ctx, domain.Location{Title: "Sintra", Coordinates: domain.Coordinates{Latitude: 38.8, Longitude: -9.39}}); err != nil {
				return err
			}
			if destination, err = repos.Locations.Save(ctx, domain.Location{Title: "Cascais", Coordinates: domain.Coordinates{Latitude: 38.7, Longitude: -9.42}}); err != nil {
				return err
			}
			if schedule, err = repos.Schedules.Save(ctx, day); err != nil {
				return err
			}
			departure := day.Start().Add(6 * time.Hour)
			voyage, err = repos.Voyages.Save(ctx, domain.Voyage{
				Departure: departure, Arrival: departure.Add(40 * time.Minute),
				Origin: origin.Location, Destination: destination.Location,
				MarketingNumber: 3, VehicleNumber: "SC-3",
			}, domain.VoyageLink{OriginID: origin.ID, DestinationID: destination.ID, ScheduleID: schedule.ID})
			return err
		})
		require.NoError(t, err)
		return origin, destination, schedule, voyage
	}

	t.Run("save and find", func(t *testing.T) {
		uow := newStore(t)
		origin, destination, schedule, voyage := seed(t, uow)

		err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			got, link, err := repos.Voyages.FindByID(ctx, voyage.ID)
			require.NoError(t, err)
			assert.True(t, got.Departure.Equal(voyage.Departure))
			assert.Equal(t, "Sintra", got.Origin.Title)
			assert.Equal(t, "Cascais", got.Destination.Title)
			assert.Equal(t, domain.VoyageLink{OriginID: origin.ID, DestinationID: destination.ID, ScheduleID: schedule.ID}, link)

			bySchedule, err := repos.Voyages.FindBySchedule(ctx, schedule.ID)
			require.NoError(t, err)
			assert.Len(t, bySchedule, 1)

			window, err := repos.Voyages.FindDepartingBetween(ctx, voyage.Departure, voyage.Departure)
			require.NoError(t, err)
			assert.Len(t, window, 1)

			entry, err := repos.Schedules.FindByDate(ctx, day)
			require.NoError(t, err)
			assert.Equal(t, schedule, entry)

			all, err := repos.Locations.FindAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("missing rows are not found", func(t *testing.T) {
		uow := newStore(t)
		err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			_, err := repos.Locations.FindByID(ctx, 4242)
			assert.True(t, errors.Is(err, domain.ErrNotFound))
			_, _, err = repos.Voyages.FindByID(ctx, 4242)
			assert.True(t, errors.Is(err, domain.ErrNotFound))
			_, err = repos.Tickets.FindByID(ctx, 4242)
			assert.True(t, errors.Is(err, domain.ErrNotFound))
			_, err = repos.Availability.FindByVoyage(ctx, 4242)
			assert.True(t, errors.Is(err, domain.ErrNotFound))
			_, err = repos.Schedules.FindByDate(ctx, day)
			assert.True(t, errors.Is(err, domain.ErrNotFound))
			assert.True(t, errors.Is(repos.Tickets.Update(ctx, domain.Ticket{ID: 4242}), domain.ErrNotFound))
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("failed unit of work rolls back", func(t *testing.T) {
		uow := newStore(t)
		_, _, _, voyage := seed(t, uow)

		boom := errors.New("boom")
		err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			if _, err := repos.Tickets.Save(ctx, domain.Ticket{Price: 5, VoyageID: voyage.ID, IsActive: true}); err != nil {
				return err
			}
			if err := repos.Availability.Save(ctx, domain.Availability{VoyageID: voyage.ID, RemainingSeats: 9, IsActive: true}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		err = uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			tickets, err := repos.Tickets.FindByVoyage(ctx, voyage.ID)
			require.NoError(t, err)
			assert.Empty(t, tickets)
			_, err = repos.Availability.FindByVoyage(ctx, voyage.ID)
			assert.True(t, errors.Is(err, domain.ErrNotFound))
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("tickets and availability", func(t *testing.T) {
		uow := newStore(t)
		_, _, _, voyage := seed(t, uow)

		err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			active, err := repos.Tickets.Save(ctx, domain.Ticket{Price: 5, VoyageID: voyage.ID, IsActive: true})
			require.NoError(t, err)
			voided, err := repos.Tickets.Save(ctx, domain.Ticket{Price: 5, VoyageID: voyage.ID, IsActive: true})
			require.NoError(t, err)
			require.NoError(t, repos.Tickets.Update(ctx, voided.Void()))

			found, err := repos.Tickets.FindActive(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.Ticket{active}, found)

			require.NoError(t, repos.Availability.Save(ctx, domain.Availability{VoyageID: voyage.ID, RemainingSeats: 8, Bookings: 2, IsActive: true}))
			require.NoError(t, repos.Availability.Update(ctx, domain.Availability{VoyageID: voyage.ID, RemainingSeats: 7, Bookings: 3, IsActive: true}))
			got, err := repos.Availability.FindByVoyage(ctx, voyage.ID)
			require.NoError(t, err)
			assert.Equal(t, 3, got.Bookings)

			require.NoError(t, repos.Tickets.DeleteByVoyage(ctx, voyage.ID))
			require.NoError(t, repos.Availability.DeleteByVoyage(ctx, voyage.ID))
			left, err := repos.Tickets.FindByVoyage(ctx, voyage.ID)
			require.NoError(t, err)
			assert.Empty(t, left)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("duplicates conflict", func(t *testing.T) {
		uow := newStore(t)
		_, _, _, voyage := seed(t, uow)

		err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			_, err := repos.Schedules.Save(ctx, day)
			return err
		})
		assert.True(t, errors.Is(err, domain.ErrConflict))

		require.NoError(t, uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			return repos.Availability.Save(ctx, domain.Availability{VoyageID: voyage.ID, RemainingSeats: 1, IsActive: true})
		}))
		err = uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			return repos.Availability.Save(ctx, domain.Availability{VoyageID: voyage.ID, RemainingSeats: 1, IsActive: true})
		})
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("referenced rows cannot be deleted", func(t *testing.T) {
		uow := newStore(t)
		origin, _, schedule, _ := seed(t, uow)

		err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			return repos.Locations.Delete(ctx, origin.ID)
		})
		assert.True(t, errors.Is(err, domain.ErrConflict))

		err = uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			return repos.Schedules.Delete(ctx, schedule.ID)
		})
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("schedules between dates are ordered", func(t *testing.T) {
		uow := newStore(t)
		err := uow.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
			for _, d := range []int{20, 5, 12, 28} {
				if _, err := repos.Schedules.Save(ctx, domain.Date{Year: 2025, Month: time.April, Day: d}); err != nil {
					return err
				}
			}
			entries, err := repos.Schedules.FindBetween(ctx,
				domain.Date{Year: 2025, Month: time.April, Day: 5},
				domain.Date{Year: 2025, Month: time.April, Day: 20})
			require.NoError(t, err)
			days := make([]int, 0, len(entries))
			for _, e := range entries {
				days = append(days, e.Date.Day)
			}
			assert.Equal(t, []int{5, 12, 20}, days)
			return nil
		})
		require.NoError(t, err)
	})
}
