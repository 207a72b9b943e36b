package event

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/fundflow/fundflow/pkg/budget"
)

// StubEventRepository keeps events in memory and shares a stub budget so
// service tests can observe both sides of a transaction.
type StubEventRepository struct {
	mu       sync.RWMutex
	items    map[int64]Event
	nextId   int64
	budgets  *budget.StubBudgetRepo
	storeErr error
}

func NewStubEventRepository(budgets *budget.StubBudgetRepo) *StubEventRepository {
	return &StubEventRepository{
		items:   make(map[int64]Event),
		nextId:  1,
		budgets: budgets,
	}
}

func (r *StubEventRepository) WithTransaction(ctx context.Context, fn func(repo EventRepository, budgets budget.BudgetRepo) error) error {
	r.mu.Lock()
	originalItems := maps.Clone(r.items)
	originalNextId := r.nextId
	r.mu.Unlock()
	originalBudget := r.budgets.Snapshot()

	if err := fn(r, r.budgets); err != nil {
		r.mu.Lock()
		r.items = originalItems
		r.nextId = originalNextId
		r.mu.Unlock()
		r.budgets.Restore(originalBudget)
		return err
	}
	return nil
}

func (r *StubEventRepository) StoreEvent(ctx context.Context, event Event) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.storeErr != nil {
		return 0, r.storeErr
	}
	event.Id = r.nextId
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.items[event.Id] = event
	r.nextId++
	return event.Id, nil
}

func (r *StubEventRepository) GetEvent(ctx context.Context, id int64) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.items[id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *StubEventRepository) CountByDate(ctx context.Context, date time.Time) (int, error) {
	events, _ := r.GetByDate(ctx, date)
	return len(events), nil
}

func (r *StubEventRepository) GetByDate(ctx context.Context, date time.Time) ([]Event, error) {
	return r.filter(func(e Event) bool { return e.Date.Equal(date) }), nil
}

func (r *StubEventRepository) GetInMonth(ctx context.Context, year int, month time.Month, today time.Time, period Period) ([]Event, error) {
	return r.filter(func(e Event) bool {
		if e.Date.Year() != year || e.Date.Month() != month {
			return false
		}
		if period == History {
			return e.Date.Before(today)
		}
		return !e.Date.Before(today)
	}), nil
}

func (r *StubEventRepository) GetAll(ctx context.Context) ([]Event, error) {
	return r.filter(func(Event) bool { return true }), nil
}

func (r *StubEventRepository) UpdateEvent(ctx context.Context, event Event) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[event.Id]
	if !ok {
		return false, nil
	}
	stored.Name = event.Name
	stored.Date = event.Date
	stored.Start = event.Start
	stored.End = event.End
	r.items[event.Id] = stored
	return true, nil
}

func (r *StubEventRepository) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

// FailStoreWith makes StoreEvent return err; nil restores normal behaviour.
func (r *StubEventRepository) FailStoreWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeErr = err
}

// Count returns the number of stored events (useful for test assertions).
func (r *StubEventRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *StubEventRepository) filter(keep func(Event) bool) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0)
	for id := int64(1); id < r.nextId; id++ {
		if e, ok := r.items[id]; ok && keep(e) {
			result = append(result, e)
		}
	}
	SortByDateAndStart(result)
	return result
}
