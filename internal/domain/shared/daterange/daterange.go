package daterange

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrBadDate      = errors.New("daterange: date must be YYYY-MM-DD")
)

// DayLayout is the wire format for calendar dates. Time components are stripped on parse.
const DayLayout = "2006-01-02"

// DateRange represents a half-open interval [checkIn, checkOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Parse builds a range from two YYYY-MM-DD strings.
func Parse(checkIn, checkOut string) (DateRange, error) {
	start, err := ParseDay(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	end, err := ParseDay(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return New(start, end)
}

// ParseDay parses a YYYY-MM-DD string into a UTC midnight instant.
func ParseDay(value string) (time.Time, error) {
	t, err := time.Parse(DayLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, value)
	}
	return t.UTC(), nil
}

// Day truncates an instant to UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

// StartDate returns the check-in day in wire format.
func (dr DateRange) StartDate() string { return dr.CheckIn.Format(DayLayout) }

// EndDate returns the checkout day in wire format.
func (dr DateRange) EndDate() string { return dr.CheckOut.Format(DayLayout) }
