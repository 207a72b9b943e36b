package app

import (
	"fmt"

	"github.com/fundflow/fundflow/internal/config"
	"github.com/fundflow/fundflow/internal/event_bus"
	"github.com/fundflow/fundflow/internal/metrics"
	"github.com/fundflow/fundflow/internal/utils"
	"github.com/fundflow/fundflow/pkg/budget"
	"github.com/fundflow/fundflow/pkg/event"
	"github.com/fundflow/fundflow/pkg/stats"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock
	Metrics  *metrics.Collector
	Registry *prometheus.Registry

	BudgetRepo    budget.BudgetRepo
	BudgetService *budget.BudgetServiceImpl
	BudgetHandler *budget.BudgetHandler

	EventRepo    event.EventRepository
	EventService event.EventService
	EventHandler *event.EventHandler

	StatsService     *stats.StatsServiceImpl
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sqlx.DB, cfg config.Application, reg *prometheus.Registry) (*Dependencies, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{}
	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	if cfg.Metrics.Enabled {
		if reg == nil {
			return nil, fmt.Errorf("metrics enabled but no registerer given")
		}
		deps.Registry = reg
		deps.Metrics = metrics.NewCollector(reg)
		deps.Metrics.Subscribe(deps.EventBus)
	}

	deps.BudgetRepo = budget.NewBudgetRepo(db)
	deps.BudgetService = budget.NewBudgetServiceImpl(deps.BudgetRepo, deps.EventBus)
	deps.BudgetHandler = budget.NewBudgetHandler(deps.BudgetService)

	deps.EventRepo = event.NewEventRepo(db)
	deps.EventService = event.NewEventService(deps.EventRepo, deps.EventBus, deps.Clock, location)
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	deps.StatsService = stats.NewStatsServiceImpl(deps.EventService, deps.BudgetService, deps.Clock, location)
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer)

	return deps, nil
}
