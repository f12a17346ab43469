package domain

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation(t *testing.T) {
	l, err := NewLocation("  Faro ", 37.01, -7.93)
	require.NoError(t, err)
	assert.Equal(t, "Faro", l.Title)

	tests := []struct {
		name     string
		title    string
		lat, lon float64
	}{
		{"empty title", " ", 0, 0},
		{"latitude", "X", 90.1, 0},
		{"longitude", "X", 0, -180.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLocation(tt.title, tt.lat, tt.lon)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}

	renamed, err := l.WithTitle("Faro Aeroporto")
	require.NoError(t, err)
	assert.Equal(t, "Faro", l.Title)
	assert.Equal(t, l.Coordinates, renamed.Coordinates)

	_, err = l.WithCoordinates(100, 0)
	assert.Error(t, err)
}

func TestNewVoyage(t *testing.T) {
	loc, _ := NewLocation("A", 0, 0)
	tz := time.FixedZone("WEST", 3600)
	dep := time.Date(2024, 6, 1, 1, 30, 0, 0, tz)

	v, err := NewVoyage(dep, dep.Add(90*time.Minute), loc, loc, 12, "V-1")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, v.Departure.Location())
	assert.Equal(t, 90*time.Minute, v.Duration())
	assert.False(t, v.HasID())
	assert.Equal(t, Date{Year: 2024, Month: time.June, Day: 1}, DateOf(v.Departure))

	_, err = NewVoyage(dep, dep, loc, loc, 12, "V-1")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = NewVoyage(dep, dep.Add(time.Hour), loc, loc, 12, "")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	moved, err := v.Reschedule(time.Time{}, v.Arrival.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, v.Departure, moved.Departure)
	assert.Equal(t, 150*time.Minute, moved.Duration())

	_, err = v.Reschedule(v.Arrival.Add(time.Hour), time.Time{})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestVoyageLocationsAreValues(t *testing.T) {
	loc, _ := NewLocation("A", 1, 1)
	dep := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	a, _ := NewVoyage(dep, dep.Add(time.Hour), loc, loc, 1, "X")
	b := a
	b.Origin.Title = "B"
	assert.Equal(t, "A", a.Origin.Title)
}

func TestNewTicket(t *testing.T) {
	tk, err := NewTicket(3, 12.5, true)
	require.NoError(t, err)
	assert.False(t, tk.HasID())
	assert.False(t, tk.Void().IsActive)
	assert.True(t, tk.Void().Reactivate().IsActive)
	assert.True(t, tk.IsActive)

	_, err = NewTicket(0, 1, true)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = NewTicket(1, -1, true)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestAvailabilityKeepsTotal(t *testing.T) {
	a, err := NewAvailability(1, 50, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 60, a.TotalSeats())

	booked, err := a.Book(5)
	require.NoError(t, err)
	assert.Equal(t, 45, booked.RemainingSeats)
	assert.Equal(t, 15, booked.Bookings)
	assert.Equal(t, 60, booked.TotalSeats())

	released, err := booked.Release(15)
	require.NoError(t, err)
	assert.Equal(t, 60, released.RemainingSeats)

	_, err = a.Book(51)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = a.Release(11)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = a.Book(0)
	assert.Error(t, err)

	adjusted, err := a.Adjust(30, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, adjusted.Bookings)
	_, err = a.Adjust(30, 31)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewAvailability(1, -1, 0, true)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)
	assert.Equal(t, "2024-02-29", d.String())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), d.End())
	assert.True(t, d.Before(Date{Year: 2024, Month: time.March, Day: 1}))
	assert.True(t, Date{}.IsZero())

	_, err = ParseDate("2024-02-30")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var parsed Date
	require.NoError(t, parsed.UnmarshalText([]byte("2025-01-01")))
	text, _ := parsed.MarshalText()
	assert.Equal(t, "2025-01-01", string(text))
}
