package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/fundflow/fundflow/internal/utils"
	"github.com/fundflow/fundflow/pkg/budget"
	"github.com/fundflow/fundflow/pkg/event"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type StatsService interface {
	// GetMonthlyStats summarizes a month. A zero year means the current one.
	GetMonthlyStats(ctx context.Context, year, month int) (StatsSummary, error)
}

type StatsServiceImpl struct {
	eventService  event.EventService
	budgetService budget.BudgetService
	clock         utils.Clock
	location      *time.Location
}

func NewStatsServiceImpl(
	eventService event.EventService,
	budgetService budget.BudgetService,
	clock utils.Clock,
	location *time.Location,
) *StatsServiceImpl {
	return &StatsServiceImpl{
		eventService:  eventService,
		budgetService: budgetService,
		clock:         clock,
		location:      location,
	}
}

func (s *StatsServiceImpl) GetMonthlyStats(ctx context.Context, year, month int) (StatsSummary, error) {
	if month < 1 || month > 12 {
		return StatsSummary{}, ErrInvalidMonth
	}
	if year == 0 {
		year = utils.Today(s.clock, s.location).Year()
	}

	history, err := s.eventService.GetEventsInMonth(ctx, year, month, event.History)
	if err != nil {
		return StatsSummary{}, err
	}
	upcoming, err := s.eventService.GetEventsInMonth(ctx, year, month, event.Upcoming)
	if err != nil {
		return StatsSummary{}, err
	}
	current, err := s.budgetService.GetCurrentBudget(ctx)
	if err != nil {
		return StatsSummary{}, fmt.Errorf("failed to read current budget: %w", err)
	}
	log.Tracef("Stats for %d-%02d: %d past, %d upcoming", year, month, len(history), len(upcoming))

	summary := StatsSummary{
		Year:          year,
		Month:         time.Month(month),
		Spent:         sumAlloted(history),
		Planned:       sumAlloted(upcoming),
		EventCount:    len(history) + len(upcoming),
		CurrentBudget: current.Current,
	}
	summary.TotalAlloted = summary.Spent.Add(summary.Planned)
	summary.Days = groupByDay(append(history, upcoming...))

	return summary, nil
}

// groupByDay expects events sorted by date.
func groupByDay(events []event.Event) []DailyStats {
	days := make([]DailyStats, 0)
	for _, e := range events {
		if len(days) == 0 || !days[len(days)-1].Date.Equal(e.Date) {
			days = append(days, DailyStats{Date: e.Date, TotalAlloted: decimal.Zero})
		}
		day := &days[len(days)-1]
		day.Events = append(day.Events, e)
		day.TotalAlloted = day.TotalAlloted.Add(e.Alloted)
	}
	return days
}

func sumAlloted(events []event.Event) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		total = total.Add(e.Alloted)
	}
	return total
}
