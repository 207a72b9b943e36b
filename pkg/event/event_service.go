package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fundflow/fundflow/internal/event_bus"
	"github.com/fundflow/fundflow/internal/utils"
	"github.com/fundflow/fundflow/pkg/budget"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type EventService interface {
	AddEvent(ctx context.Context, input NewEvent) (Event, error)
	GetTodaysEvents(ctx context.Context) (TodaysEvents, error)
	GetEventsForMonth(ctx context.Context, month int) ([]Event, error)
	GetEventHistory(ctx context.Context, month int) ([]Event, error)
	GetEventsInMonth(ctx context.Context, year, month int, period Period) ([]Event, error)
	GetAll(ctx context.Context) ([]Event, error)
	DeleteEvent(ctx context.Context, id int64) (Event, error)
	EditEvent(ctx context.Context, id int64, update EventUpdate) (Event, error)
}

type EventServiceImpl struct {
	repo     EventRepository
	eventBus *event_bus.EventBus
	clock    utils.Clock
	location *time.Location
}

func NewEventService(repo EventRepository, eventBus *event_bus.EventBus, clock utils.Clock, location *time.Location) *EventServiceImpl {
	if location == nil {
		location = time.Local
	}
	return &EventServiceImpl{repo: repo, eventBus: eventBus, clock: clock, location: location}
}

// AddEvent stores the event and reserves its allotted amount from the current
// budget in the same transaction.
func (s *EventServiceImpl) AddEvent(ctx context.Context, input NewEvent) (Event, error) {
	if err := input.validate(); err != nil {
		return Event{}, err
	}

	event := Event{
		Name:          strings.TrimSpace(input.Name),
		Date:          dateOnly(input.Date),
		Start:         input.Start,
		End:           input.End,
		Alloted:       input.Alloted,
		BudgetLimit:   input.BudgetLimit,
		CurrentBudget: input.Alloted,
		CreatedAt:     s.clock.Now(),
	}

	var balance decimal.Decimal
	err := s.repo.WithTransaction(ctx, func(repo EventRepository, budgets budget.BudgetRepo) error {
		id, err := repo.StoreEvent(ctx, event)
		if err != nil {
			return fmt.Errorf("failed to store event: %w", err)
		}
		event.Id = id

		b, err := budgets.Adjust(ctx, event.Alloted.Neg())
		if err != nil {
			return fmt.Errorf("failed to reserve budget: %w", err)
		}
		balance = b.Current
		return nil
	})
	if err != nil {
		return Event{}, err
	}

	log.Debugf("event %d created, %s reserved, budget now %s", event.Id, event.Alloted, balance)
	s.publish(ctx, event_bus.EventCreatedType, event_bus.EventCreated{
		EventId: event.Id,
		Name:    event.Name,
		Date:    event.Date,
		Alloted: event.Alloted,
		Balance: balance,
	})
	return event, nil
}

// GetTodaysEvents returns today's events ordered by start time. Today is
// evaluated on every call.
func (s *EventServiceImpl) GetTodaysEvents(ctx context.Context) (TodaysEvents, error) {
	today := utils.Today(s.clock, s.location)

	count, err := s.repo.CountByDate(ctx, today)
	if err != nil {
		return TodaysEvents{}, fmt.Errorf("failed to count today's events: %w", err)
	}
	events, err := s.repo.GetByDate(ctx, today)
	if err != nil {
		return TodaysEvents{}, fmt.Errorf("failed to get today's events: %w", err)
	}
	SortByDateAndStart(events)

	return TodaysEvents{TotalCount: count, Events: events}, nil
}

// GetEventsForMonth returns events of the given month in the current year,
// from today onwards.
func (s *EventServiceImpl) GetEventsForMonth(ctx context.Context, month int) ([]Event, error) {
	return s.GetEventsInMonth(ctx, utils.Today(s.clock, s.location).Year(), month, Upcoming)
}

// GetEventHistory returns events of the given month in the current year that
// happened before today.
func (s *EventServiceImpl) GetEventHistory(ctx context.Context, month int) ([]Event, error) {
	return s.GetEventsInMonth(ctx, utils.Today(s.clock, s.location).Year(), month, History)
}

// GetEventsInMonth returns an empty result for a month outside 1..12.
func (s *EventServiceImpl) GetEventsInMonth(ctx context.Context, year, month int, period Period) ([]Event, error) {
	if month < 1 || month > 12 {
		log.Debugf("month %d out of range, returning no events", month)
		return []Event{}, nil
	}
	today := utils.Today(s.clock, s.location)

	events, err := s.repo.GetInMonth(ctx, year, time.Month(month), today, period)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s events for %d-%02d: %w", period, year, month, err)
	}
	SortByDateAndStart(events)
	return events, nil
}

// GetAll is a diagnostic listing; every row is logged at debug level.
func (s *EventServiceImpl) GetAll(ctx context.Context) ([]Event, error) {
	events, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	for _, e := range events {
		log.WithFields(log.Fields{
			"id":            e.Id,
			"name":          e.Name,
			"date":          e.Date.Format(DateLayout),
			"start":         e.Start.String(),
			"end":           e.End.String(),
			"alloted":       e.Alloted.String(),
			"budgetLimit":   e.BudgetLimit.String(),
			"currentBudget": e.CurrentBudget.String(),
		}).Debug("event")
	}
	return events, nil
}

// DeleteEvent removes the event and refunds its allotted amount in the same
// transaction. An unknown id returns ErrEventNotFound and refunds nothing.
func (s *EventServiceImpl) DeleteEvent(ctx context.Context, id int64) (Event, error) {
	var deleted Event
	var balance decimal.Decimal
	err := s.repo.WithTransaction(ctx, func(repo EventRepository, budgets budget.BudgetRepo) error {
		event, err := repo.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		ok, err := repo.DeleteEvent(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrEventNotFound
		}

		b, err := budgets.Adjust(ctx, event.Alloted)
		if err != nil {
			return fmt.Errorf("failed to refund budget: %w", err)
		}
		deleted = event
		balance = b.Current
		return nil
	})
	if err != nil {
		log.Warnf("event %d not deleted: %v", id, err)
		return Event{}, fmt.Errorf("failed to delete event %d: %w", id, err)
	}

	log.Debugf("event %d deleted, %s refunded, budget now %s", id, deleted.Alloted, balance)
	s.publish(ctx, event_bus.EventDeletedType, event_bus.EventDeleted{
		EventId: id,
		Alloted: deleted.Alloted,
		Balance: balance,
	})
	return deleted, nil
}

// EditEvent changes name, date, start and end. Budget fields stay untouched.
func (s *EventServiceImpl) EditEvent(ctx context.Context, id int64, update EventUpdate) (Event, error) {
	if err := update.validate(); err != nil {
		return Event{}, err
	}

	updated, err := s.repo.UpdateEvent(ctx, Event{
		Id:    id,
		Name:  strings.TrimSpace(update.Name),
		Date:  dateOnly(update.Date),
		Start: update.Start,
		End:   update.End,
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event %d: %w", id, err)
	}
	if !updated {
		log.Warnf("event not updated, probably because it does not exist (%d)", id)
		return Event{}, ErrEventNotFound
	}

	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, fmt.Errorf("failed to read updated event %d: %w", id, err)
	}
	s.publish(ctx, event_bus.EventUpdatedType, event_bus.EventUpdated{
		EventId: event.Id,
		Name:    event.Name,
		Date:    event.Date,
	})
	return event, nil
}

func (s *EventServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, payload any) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(event_bus.NewMessage(ctx, eventType, payload)); err != nil {
		log.Warnf("%s stored but notifying subscribers failed: %v", eventType, err)
	}
}
