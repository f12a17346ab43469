package domain

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Ticket é a venda de um assento. Bilhetes inativos ficam como histórico.
type Ticket struct {
	ID       int64   `json:"id"`
	Price    float64 `json:"price"`
	VoyageID int64   `json:"voyage_id"`
	IsActive bool    `json:"is_active"`
}

func NewTicket(voyageID int64, price float64, isActive bool) (Ticket, error) {
	if voyageID <= 0 {
		return Ticket{}, errors.Wrapf(ErrInvalidInput, "invalid voyage id %d", voyageID)
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return Ticket{}, errors.Wrapf(ErrInvalidInput, "invalid ticket price %v", price)
	}
	return Ticket{Price: price, VoyageID: voyageID, IsActive: isActive}, nil
}

func (t Ticket) HasID() bool {
	return t.ID != 0
}

func (t Ticket) Void() Ticket {
	t.IsActive = false
	return t
}

func (t Ticket) Reactivate() Ticket {
	t.IsActive = true
	return t
}
