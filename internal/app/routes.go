package app

import (
	"github.com/fundflow/fundflow/internal/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Events
	r.HandleFunc("/api/event", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event", deps.EventHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/event/today", deps.EventHandler.GetTodaysEvents).Methods("GET")
	r.HandleFunc("/api/event/upcoming", deps.EventHandler.GetUpcomingEvents).Methods("GET")
	r.HandleFunc("/api/event/history", deps.EventHandler.GetEventHistory).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.DeleteEvent).Methods("DELETE")

	// Budget
	r.HandleFunc("/api/budget", deps.BudgetHandler.GetCurrent).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.SetCurrent).Methods("PUT")
	r.HandleFunc("/api/budget/adjust", deps.BudgetHandler.Adjust).Methods("POST")

	// Stats
	r.HandleFunc("/api/stats/monthly", deps.StatsHandler.GetMonthlyStats).Methods("GET")

	// Metrics
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})).Methods("GET")
	}
}
