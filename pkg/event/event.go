package event

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is how event dates are stored and exchanged.
const DateLayout = "2006-01-02"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

type Event struct {
	Id   int64
	Name string
	// Date is the calendar day at midnight UTC.
	Date  time.Time
	Start TimeOfDay
	End   TimeOfDay
	// Alloted is the amount reserved from the current budget for this event.
	Alloted decimal.Decimal
	// BudgetLimit and CurrentBudget are snapshots taken at creation and never change afterwards.
	BudgetLimit   decimal.Decimal
	CurrentBudget decimal.Decimal
	CreatedAt     time.Time
}

// NewEvent carries everything needed to create an event.
type NewEvent struct {
	Name        string
	Date        time.Time
	Start       TimeOfDay
	End         TimeOfDay
	Alloted     decimal.Decimal
	BudgetLimit decimal.Decimal
}

// EventUpdate holds the fields that may change after creation.
type EventUpdate struct {
	Name  string
	Date  time.Time
	Start TimeOfDay
	End   TimeOfDay
}

type TodaysEvents struct {
	TotalCount int
	Events     []Event
}

// Period selects which side of today a month query looks at.
type Period int

const (
	// Upcoming covers today and later.
	Upcoming Period = iota
	// History covers days strictly before today.
	History
)

func (p Period) String() string {
	switch p {
	case Upcoming:
		return "upcoming"
	case History:
		return "history"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// ParseDate parses a "2006-01-02" string into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be in %s format", ErrInvalidEvent, s, DateLayout)
	}
	return d, nil
}

// dateOnly drops the clock part of t, keeping its calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (n NewEvent) validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	if n.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEvent)
	}
	if n.Alloted.IsNegative() {
		return fmt.Errorf("%w: alloted must not be negative", ErrInvalidEvent)
	}
	if n.BudgetLimit.IsNegative() {
		return fmt.Errorf("%w: budget limit must not be negative", ErrInvalidEvent)
	}
	return nil
}

func (u EventUpdate) validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	if u.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEvent)
	}
	return nil
}

// CompareByDateAndStart orders events by date, then start time. Events without
// a start time come after timed events on the same day.
func CompareByDateAndStart(a, b Event) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return CompareTimeOfDay(a.Start, b.Start)
}

// SortByDateAndStart sorts events in place. Ties keep their original order.
func SortByDateAndStart(events []Event) {
	slices.SortStableFunc(events, CompareByDateAndStart)
}

// CompareTimeOfDay orders set times ascending and places unset ones last.
func CompareTimeOfDay(a, b TimeOfDay) int {
	switch {
	case a.valid && b.valid:
		return cmp.Compare(a.minutes, b.minutes)
	case a.valid:
		return -1
	case b.valid:
		return 1
	default:
		return 0
	}
}
