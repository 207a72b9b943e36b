package stats

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fundflow/fundflow/internal/rest"
	"github.com/fundflow/fundflow/pkg/event"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type DailyStatsDTO struct {
	Date         string           `json:"date"`
	Events       []event.EventDTO `json:"events"`
	TotalAlloted decimal.Decimal  `json:"totalAlloted"`
}

type StatsSummaryDTO struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Days          []DailyStatsDTO `json:"days"`
	Spent         decimal.Decimal `json:"spent"`
	Planned       decimal.Decimal `json:"planned"`
	TotalAlloted  decimal.Decimal `json:"totalAlloted"`
	EventCount    int             `json:"eventCount"`
	CurrentBudget decimal.Decimal `json:"currentBudget"`
}

type StatsHandler struct {
	statsService     StatsService
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(statsService StatsService, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{statsService, csvStatsRenderer}
}

func (handler *StatsHandler) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid month", "'month' must be a number between 1 and 12")
		return
	}
	year := 0
	if yearString := r.URL.Query().Get("year"); yearString != "" {
		year, err = strconv.Atoi(yearString)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid year", "'year' must be a number")
			return
		}
	}

	stats, err := handler.statsService.GetMonthlyStats(r.Context(), year, month)
	if errors.Is(err, ErrInvalidMonth) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid month", err.Error())
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.csvStatsRenderer.RenderStats(stats)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write csv stats: %v", err)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, convertToJsonResponse(&stats))
}

func convertToJsonResponse(stats *StatsSummary) *StatsSummaryDTO {
	days := make([]DailyStatsDTO, 0, len(stats.Days))
	for _, day := range stats.Days {
		events := make([]event.EventDTO, 0, len(day.Events))
		for _, e := range day.Events {
			events = append(events, event.EventToDTO(e))
		}
		days = append(days, DailyStatsDTO{
			Date:         day.Date.Format(event.DateLayout),
			Events:       events,
			TotalAlloted: day.TotalAlloted,
		})
	}

	return &StatsSummaryDTO{
		Year:          stats.Year,
		Month:         int(stats.Month),
		Days:          days,
		Spent:         stats.Spent,
		Planned:       stats.Planned,
		TotalAlloted:  stats.TotalAlloted,
		EventCount:    stats.EventCount,
		CurrentBudget: stats.CurrentBudget,
	}
}
