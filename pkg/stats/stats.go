package stats

import (
	"errors"
	"time"

	"github.com/fundflow/fundflow/pkg/event"
	"github.com/shopspring/decimal"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

type DailyStats struct {
	Date         time.Time
	Events       []event.Event
	TotalAlloted decimal.Decimal
}

type StatsSummary struct {
	Year  int
	Month time.Month
	Days  []DailyStats
	// Spent sums events before today, Planned sums today and later.
	Spent         decimal.Decimal
	Planned       decimal.Decimal
	TotalAlloted  decimal.Decimal
	EventCount    int
	CurrentBudget decimal.Decimal
}
