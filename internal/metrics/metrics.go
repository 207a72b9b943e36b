package metrics

import (
	"github.com/fundflow/fundflow/internal/event_bus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector turns bus notifications into prometheus metrics.
type Collector struct {
	eventOperations *prometheus.CounterVec
	allotedAmount   *prometheus.CounterVec
	currentBudget   prometheus.Gauge
	budgetChanges   prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		eventOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_event_operations_total",
				Help: "Total event operations",
			},
			[]string{"operation"},
		),
		allotedAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundflow_alloted_amount_total",
				Help: "Sum of amounts reserved for and refunded from events",
			},
			[]string{"direction"},
		),
		currentBudget: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fundflow_current_budget",
				Help: "Current budget balance after the last change",
			},
		),
		budgetChanges: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fundflow_budget_changes_total",
				Help: "Total direct budget changes",
			},
		),
	}
}

// Subscribe attaches the collector to bus and returns a function that detaches it.
func (c *Collector) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	unsubscribers := []func(){
		event_bus.SubscribeTyped(bus, event_bus.EventCreatedType, func(m event_bus.MessageT[event_bus.EventCreated]) error {
			c.eventOperations.WithLabelValues("create").Inc()
			c.allotedAmount.WithLabelValues("reserved").Add(m.Payload.Alloted.InexactFloat64())
			c.currentBudget.Set(m.Payload.Balance.InexactFloat64())
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.EventUpdatedType, func(m event_bus.MessageT[event_bus.EventUpdated]) error {
			c.eventOperations.WithLabelValues("update").Inc()
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.EventDeletedType, func(m event_bus.MessageT[event_bus.EventDeleted]) error {
			c.eventOperations.WithLabelValues("delete").Inc()
			c.allotedAmount.WithLabelValues("refunded").Add(m.Payload.Alloted.InexactFloat64())
			c.currentBudget.Set(m.Payload.Balance.InexactFloat64())
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.BudgetChangedType, func(m event_bus.MessageT[event_bus.BudgetChanged]) error {
			c.budgetChanges.Inc()
			c.currentBudget.Set(m.Payload.Current.InexactFloat64())
			return nil
		}),
	}
	return func() {
		for _, u := range unsubscribers {
			u()
		}
	}
}
