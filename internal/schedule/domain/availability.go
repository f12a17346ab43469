package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Availability controla os assentos de uma viagem.
// RemainingSeats+Bookings é a capacidade e não muda após NewAvailability.
type Availability struct {
	VoyageID       int64 `json:"voyage_id"`
	RemainingSeats int   `json:"remaining_seats"`
	Bookings       int   `json:"bookings"`
	IsActive       bool  `json:"is_active"`
}

func NewAvailability(voyageID int64, remainingSeats, bookings int, isActive bool) (Availability, error) {
	if voyageID <= 0 {
		return Availability{}, errors.Wrapf(ErrInvalidInput, "invalid voyage id %d", voyageID)
	}
	if err := checkSeats(remainingSeats, bookings); err != nil {
		return Availability{}, err
	}
	return Availability{
		VoyageID:       voyageID,
		RemainingSeats: remainingSeats,
		Bookings:       bookings,
		IsActive:       isActive,
	}, nil
}

func checkSeats(remainingSeats, bookings int) error {
	if remainingSeats < 0 || bookings < 0 {
		return errors.Wrapf(ErrInvalidInput, "seat counts must be non-negative (remaining=%d, bookings=%d)",
			remainingSeats, bookings)
	}
	return nil
}

func (a Availability) TotalSeats() int {
	return a.RemainingSeats + a.Bookings
}

// Book move n assentos de livres para reservados.
func (a Availability) Book(n int) (Availability, error) {
	if n <= 0 {
		return Availability{}, errors.Wrapf(ErrInvalidInput, "cannot book %d seats", n)
	}
	if n > a.RemainingSeats {
		return Availability{}, errors.Wrapf(ErrInvalidInput, "cannot book %d seats, %d remaining", n, a.RemainingSeats)
	}
	a.RemainingSeats -= n
	a.Bookings += n
	return a, nil
}

// Release devolve n assentos reservados.
func (a Availability) Release(n int) (Availability, error) {
	if n <= 0 {
		return Availability{}, errors.Wrapf(ErrInvalidInput, "cannot release %d seats", n)
	}
	if n > a.Bookings {
		return Availability{}, errors.Wrapf(ErrInvalidInput, "cannot release %d seats, %d booked", n, a.Bookings)
	}
	a.RemainingSeats += n
	a.Bookings -= n
	return a, nil
}

// Adjust redefine os contadores mantendo o total.
func (a Availability) Adjust(remainingSeats, bookings int) (Availability, error) {
	if err := checkSeats(remainingSeats, bookings); err != nil {
		return Availability{}, err
	}
	if remainingSeats+bookings != a.TotalSeats() {
		return Availability{}, errors.Wrapf(ErrInvalidInput, "remaining %d + bookings %d does not match total %d",
			remainingSeats, bookings, a.TotalSeats())
	}
	a.RemainingSeats = remainingSeats
	a.Bookings = bookings
	return a, nil
}

func (a Availability) String() string {
	return fmt.Sprintf("Availability (voyage_id=%d, remaining_seats=%d, bookings=%d, is_active=%t)",
		a.VoyageID, a.RemainingSeats, a.Bookings, a.IsActive)
}
