package budget

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type StubBudgetRepo struct {
	mu      sync.Mutex
	budget  Budget
	failErr error
}

func NewStubBudgetRepo(initial decimal.Decimal) *StubBudgetRepo {
	return &StubBudgetRepo{budget: Budget{Current: initial}}
}

func (s *StubBudgetRepo) Get(ctx context.Context) (Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return Budget{}, s.failErr
	}
	return s.budget, nil
}

func (s *StubBudgetRepo) Set(ctx context.Context, amount decimal.Decimal) (Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return Budget{}, s.failErr
	}
	s.budget = Budget{Current: amount, UpdatedAt: time.Now()}
	return s.budget, nil
}

func (s *StubBudgetRepo) Adjust(ctx context.Context, delta decimal.Decimal) (Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return Budget{}, s.failErr
	}
	s.budget = Budget{Current: s.budget.Current.Add(delta), UpdatedAt: time.Now()}
	return s.budget, nil
}

// FailWith makes every following call return err; nil restores normal behaviour.
func (s *StubBudgetRepo) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Snapshot returns the balance without going through the error switch.
func (s *StubBudgetRepo) Snapshot() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget.Current
}

// Restore replaces the balance, used by callers that emulate a rollback.
func (s *StubBudgetRepo) Restore(amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget.Current = amount
}
