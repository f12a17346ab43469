package domain

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Coordinates é um par latitude/longitude em graus.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return errors.Wrapf(ErrInvalidInput, "latitude %v out of range", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return errors.Wrapf(ErrInvalidInput, "longitude %v out of range", c.Longitude)
	}
	return nil
}

// Location é um ponto nomeado, tratado como valor.
type Location struct {
	Title       string      `json:"title"`
	Coordinates Coordinates `json:"coordinates"`
}

func NewLocation(title string, latitude, longitude float64) (Location, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Location{}, errors.Wrap(ErrInvalidInput, "location title is empty")
	}
	coords := Coordinates{Latitude: latitude, Longitude: longitude}
	if err := coords.Validate(); err != nil {
		return Location{}, err
	}
	return Location{Title: title, Coordinates: coords}, nil
}

func (l Location) WithTitle(title string) (Location, error) {
	return NewLocation(title, l.Coordinates.Latitude, l.Coordinates.Longitude)
}

func (l Location) WithCoordinates(latitude, longitude float64) (Location, error) {
	return NewLocation(l.Title, latitude, longitude)
}

func (l Location) String() string {
	return fmt.Sprintf("%s (%.4f, %.4f)", l.Title, l.Coordinates.Latitude, l.Coordinates.Longitude)
}

// LocationEntry associa a localização ao id atribuído pelo armazenamento.
type LocationEntry struct {
	ID       int64    `json:"id"`
	Location Location `json:"location"`
}
