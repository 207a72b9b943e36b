package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventCreatedType  EventType = "event.created"
	EventUpdatedType  EventType = "event.updated"
	EventDeletedType  EventType = "event.deleted"
	BudgetChangedType EventType = "budget.changed"
)

type EventCreated struct {
	EventId int64
	Name    string
	Date    time.Time
	Alloted decimal.Decimal
	// Balance is the current budget after the allotted amount was reserved.
	Balance decimal.Decimal
}

type EventUpdated struct {
	EventId int64
	Name    string
	Date    time.Time
}

type EventDeleted struct {
	EventId int64
	Alloted decimal.Decimal
	// Balance is the current budget after the allotted amount was refunded.
	Balance decimal.Decimal
}

type BudgetChanged struct {
	Previous decimal.Decimal
	Current  decimal.Decimal
}
