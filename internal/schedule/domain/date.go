package domain

import (
	"time"

	"github.com/cockroachdb/errors"
)

const dateLayout = "2006-01-02"

// Date é um dia do calendário em UTC.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errors.Wrapf(ErrInvalidInput, "invalid date %q", s)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Start() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// End é o último instante representável do dia.
func (d Date) End() time.Time {
	return d.Start().AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func (d Date) Before(other Date) bool {
	return d.Start().Before(other.Start())
}

func (d Date) String() string {
	return d.Start().Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
