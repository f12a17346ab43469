package domain

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var day = Date{Year: 2024, Month: time.December, Day: 31}

func testVoyage(t require.TestingT, id int64, departure time.Time) Voyage {
	origin, err := NewLocation("Lisboa", 38.72, -9.14)
	require.NoError(t, err)
	destination, err := NewLocation("Porto", 41.15, -8.61)
	require.NoError(t, err)
	v, err := NewVoyage(departure, departure.Add(3*time.Hour), origin, destination, 100+int(id), "BUS-1")
	require.NoError(t, err)
	v.ID = id
	return v
}

func populated(t *testing.T) *Schedule {
	s := NewScheduleFor(day)
	require.NoError(t, s.AddVoyage(testVoyage(t, 1, day.Start().Add(8*time.Hour))))
	require.NoError(t, s.AddAvailability(Availability{VoyageID: 1, RemainingSeats: 50, Bookings: 10, IsActive: true}))
	require.NoError(t, s.AddTicket(Ticket{ID: 1, Price: 10, VoyageID: 1, IsActive: true}))
	require.NoError(t, s.AddTicket(Ticket{ID: 2, Price: 10, VoyageID: 1, IsActive: false}))
	return s
}

func TestScheduleLoad(t *testing.T) {
	s := populated(t)

	load, err := s.Load(1)
	require.NoError(t, err)
	assert.Equal(t, Load{TotalSeats: 60, SoldSeats: 1, RemainingSeats: 50}, load)
}

func TestScheduleLoadWithoutAvailability(t *testing.T) {
	s := NewSchedule()
	require.NoError(t, s.AddVoyage(testVoyage(t, 7, day.Start())))

	_, err := s.Load(7)
	assert.True(t, errors.Is(err, ErrReference))

	_, err = s.Load(99)
	assert.True(t, errors.Is(err, ErrReference))
}

func TestScheduleSummary(t *testing.T) {
	s := populated(t)

	assert.Equal(t, Summary{TotalVoyages: 1, TotalTickets: 2, TotalSeats: 60, SoldSeats: 1}, s.Summary())
	assert.Equal(t, "Schedule for 2024-12-31: 1 voyages, 1 availabilities, 2 tickets", s.String())
}

func TestScheduleRoundTrip(t *testing.T) {
	s := populated(t)

	tickets := s.TicketsFor(1)
	require.Len(t, tickets, 2)
	assert.Equal(t, int64(1), tickets[0].ID)
	assert.Equal(t, int64(2), tickets[1].ID)

	a, ok := s.AvailabilityFor(1)
	require.True(t, ok)
	assert.Equal(t, Availability{VoyageID: 1, RemainingSeats: 50, Bookings: 10, IsActive: true}, a)

	_, ok = s.AvailabilityFor(2)
	assert.False(t, ok)
	assert.Empty(t, s.TicketsFor(2))
}

func TestScheduleRejectsDateMismatch(t *testing.T) {
	s := NewScheduleFor(day)

	err := s.AddVoyage(testVoyage(t, 1, day.Start().AddDate(0, 0, 1)))
	assert.True(t, errors.Is(err, ErrConsistency))
	assert.Empty(t, s.Voyages())
}

func TestScheduleDayBoundaries(t *testing.T) {
	s := NewScheduleFor(day)

	require.NoError(t, s.AddVoyage(testVoyage(t, 1, day.Start())))
	require.NoError(t, s.AddVoyage(testVoyage(t, 2, day.End())))
	assert.Error(t, s.AddVoyage(testVoyage(t, 3, day.Start().Add(-time.Nanosecond))))
}

func TestScheduleRejectsDanglingReferences(t *testing.T) {
	s := NewSchedule()

	err := s.AddAvailability(Availability{VoyageID: 1, RemainingSeats: 1})
	assert.True(t, errors.Is(err, ErrReference))

	err = s.AddTicket(Ticket{ID: 1, VoyageID: 1, IsActive: true})
	assert.True(t, errors.Is(err, ErrReference))

	assert.Equal(t, Summary{}, s.Summary())
}

func TestScheduleRejectsMissingIDs(t *testing.T) {
	s := NewSchedule()

	v := testVoyage(t, 0, day.Start())
	assert.True(t, errors.Is(s.AddVoyage(v), ErrConsistency))

	require.NoError(t, s.AddVoyage(testVoyage(t, 1, day.Start())))
	assert.True(t, errors.Is(s.AddTicket(Ticket{VoyageID: 1}), ErrConsistency))
	assert.Empty(t, s.Tickets())
}

func TestScheduleOverwriteKeepsPosition(t *testing.T) {
	s := NewSchedule()
	require.NoError(t, s.AddVoyage(testVoyage(t, 1, day.Start())))
	require.NoError(t, s.AddVoyage(testVoyage(t, 2, day.Start())))

	replaced := testVoyage(t, 1, day.Start().Add(time.Hour))
	replaced.VehicleNumber = "BUS-9"
	require.NoError(t, s.AddVoyage(replaced))

	voyages := s.Voyages()
	require.Len(t, voyages, 2)
	assert.Equal(t, int64(1), voyages[0].ID)
	assert.Equal(t, "BUS-9", voyages[0].VehicleNumber)

	require.NoError(t, s.AddAvailability(Availability{VoyageID: 1, RemainingSeats: 5}))
	require.NoError(t, s.AddAvailability(Availability{VoyageID: 1, RemainingSeats: 3, Bookings: 2}))
	assert.Len(t, s.Availabilities(), 1)
	a, _ := s.AvailabilityFor(1)
	assert.Equal(t, 3, a.RemainingSeats)
}

func TestScheduleVoyagesInRangeIsInclusive(t *testing.T) {
	s := NewSchedule()
	start := day.Start().Add(6 * time.Hour)
	end := day.Start().Add(18 * time.Hour)
	require.NoError(t, s.AddVoyage(testVoyage(t, 1, end)))
	require.NoError(t, s.AddVoyage(testVoyage(t, 2, start.Add(-time.Second))))
	require.NoError(t, s.AddVoyage(testVoyage(t, 3, start)))
	require.NoError(t, s.AddVoyage(testVoyage(t, 4, end.Add(time.Second))))

	got := s.VoyagesInRange(start, end)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestScheduleSetDate(t *testing.T) {
	s := NewSchedule()
	_, ok := s.Date()
	assert.False(t, ok)
	assert.Contains(t, s.String(), "undated")

	require.NoError(t, s.AddVoyage(testVoyage(t, 1, day.Start().Add(time.Hour))))
	other := Date{Year: 2025, Month: time.January, Day: 1}
	assert.True(t, errors.Is(s.SetDate(other), ErrConsistency))
	_, ok = s.Date()
	assert.False(t, ok)

	require.NoError(t, s.SetDate(day))
	got, ok := s.Date()
	assert.True(t, ok)
	assert.Equal(t, day, got)
}

func TestScheduleSnapshotsAreCopies(t *testing.T) {
	s := populated(t)

	tickets := s.Tickets()
	tickets[0].IsActive = false

	load, err := s.Load(1)
	require.NoError(t, err)
	assert.Equal(t, 1, load.SoldSeats)
}

type scheduleFixture struct {
	voyages      []Voyage
	availability map[int64]Availability
	tickets      []Ticket
}

func drawFixture(t *rapid.T) scheduleFixture {
	n := rapid.IntRange(0, 8).Draw(t, "voyages")
	f := scheduleFixture{availability: make(map[int64]Availability)}
	for i := 1; i <= n; i++ {
		offset := time.Duration(rapid.IntRange(0, 24*60-1).Draw(t, "minute")) * time.Minute
		f.voyages = append(f.voyages, testVoyage(t, int64(i), day.Start().Add(offset)))
		if rapid.Bool().Draw(t, "has_availability") {
			f.availability[int64(i)] = Availability{
				VoyageID:       int64(i),
				RemainingSeats: rapid.IntRange(0, 200).Draw(t, "remaining"),
				Bookings:       rapid.IntRange(0, 200).Draw(t, "bookings"),
				IsActive:       true,
			}
		}
	}
	if n > 0 {
		m := rapid.IntRange(0, 20).Draw(t, "tickets")
		for j := 1; j <= m; j++ {
			f.tickets = append(f.tickets, Ticket{
				ID:       int64(j),
				Price:    10,
				VoyageID: int64(rapid.IntRange(1, n).Draw(t, "ticket_voyage")),
				IsActive: rapid.Bool().Draw(t, "active"),
			})
		}
	}
	return f
}

func (f scheduleFixture) build(t *rapid.T) *Schedule {
	s := NewScheduleFor(day)
	for _, v := range f.voyages {
		if err := s.AddVoyage(v); err != nil {
			t.Fatalf("add voyage: %v", err)
		}
	}
	for _, v := range f.voyages {
		if a, ok := f.availability[v.ID]; ok {
			if err := s.AddAvailability(a); err != nil {
				t.Fatalf("add availability: %v", err)
			}
		}
	}
	for _, tk := range f.tickets {
		if err := s.AddTicket(tk); err != nil {
			t.Fatalf("add ticket: %v", err)
		}
	}
	return s
}

func TestScheduleSummaryProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawFixture(t)
		s := f.build(t)

		wantSeats, wantSold := 0, 0
		for _, a := range f.availability {
			wantSeats += a.RemainingSeats + a.Bookings
		}
		for _, tk := range f.tickets {
			if tk.IsActive {
				wantSold++
			}
		}

		got := s.Summary()
		if got.TotalVoyages != len(f.voyages) || got.TotalTickets != len(f.tickets) ||
			got.TotalSeats != wantSeats || got.SoldSeats != wantSold {
			t.Fatalf("unexpected summary %+v", got)
		}

		for _, v := range f.voyages {
			load, err := s.Load(v.ID)
			a, ok := f.availability[v.ID]
			if !ok {
				if !errors.Is(err, ErrReference) {
					t.Fatalf("expected reference error for voyage %d, got %v", v.ID, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("load %d: %v", v.ID, err)
			}
			if load.TotalSeats != a.TotalSeats() || load.RemainingSeats != a.RemainingSeats {
				t.Fatalf("unexpected load %+v for %+v", load, a)
			}
		}
	})
}

func TestScheduleRangeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawFixture(t)
		s := f.build(t)

		from := rapid.IntRange(0, 24*60).Draw(t, "from")
		to := rapid.IntRange(from, 24*60).Draw(t, "to")
		start := day.Start().Add(time.Duration(from) * time.Minute)
		end := day.Start().Add(time.Duration(to) * time.Minute)

		var want []int64
		for _, v := range f.voyages {
			if !v.Departure.Before(start) && !v.Departure.After(end) {
				want = append(want, v.ID)
			}
		}
		got := s.VoyagesInRange(start, end)
		if len(got) != len(want) {
			t.Fatalf("got %d voyages, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Fatalf("position %d: got voyage %d, want %d", i, got[i].ID, want[i])
			}
		}
	})
}

func TestScheduleFailedInsertLeavesStateUntouched(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := drawFixture(t)
		s := f.build(t)
		before := s.String()
		summary := s.Summary()

		missing := int64(len(f.voyages) + 1)
		if err := s.AddTicket(Ticket{ID: 1000, VoyageID: missing, IsActive: true}); !errors.Is(err, ErrReference) {
			t.Fatalf("expected reference error, got %v", err)
		}
		if err := s.AddAvailability(Availability{VoyageID: missing, RemainingSeats: 3}); !errors.Is(err, ErrReference) {
			t.Fatalf("expected reference error, got %v", err)
		}
		if err := s.AddVoyage(testVoyage(t, missing, day.End().Add(time.Hour))); !errors.Is(err, ErrConsistency) {
			t.Fatalf("expected consistency error, got %v", err)
		}

		if s.String() != before || s.Summary() != summary {
			t.Fatalf("state changed after failed inserts: %s", s)
		}
	})
}
