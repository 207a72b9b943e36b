package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/fundflow/fundflow/internal/event_bus"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrNegativeAmount = errors.New("amount must not be negative")

type BudgetService interface {
	GetCurrentBudget(ctx context.Context) (Budget, error)
	SetCurrentBudget(ctx context.Context, amount decimal.Decimal) (Budget, error)
	SubtractBudget(ctx context.Context, amount decimal.Decimal) (Budget, error)
	AdjustBudget(ctx context.Context, delta decimal.Decimal) (Budget, error)
}

type BudgetServiceImpl struct {
	repo     BudgetRepo
	eventBus *event_bus.EventBus
}

func NewBudgetServiceImpl(repo BudgetRepo, eventBus *event_bus.EventBus) *BudgetServiceImpl {
	return &BudgetServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *BudgetServiceImpl) GetCurrentBudget(ctx context.Context) (Budget, error) {
	return s.repo.Get(ctx)
}

func (s *BudgetServiceImpl) SetCurrentBudget(ctx context.Context, amount decimal.Decimal) (Budget, error) {
	previous, err := s.repo.Get(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to read budget: %w", err)
	}
	updated, err := s.repo.Set(ctx, amount)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to set budget: %w", err)
	}
	s.publishChange(ctx, previous.Current, updated.Current)
	return updated, nil
}

func (s *BudgetServiceImpl) SubtractBudget(ctx context.Context, amount decimal.Decimal) (Budget, error) {
	if amount.IsNegative() {
		return Budget{}, ErrNegativeAmount
	}
	return s.AdjustBudget(ctx, amount.Neg())
}

func (s *BudgetServiceImpl) AdjustBudget(ctx context.Context, delta decimal.Decimal) (Budget, error) {
	updated, err := s.repo.Adjust(ctx, delta)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to adjust budget: %w", err)
	}
	s.publishChange(ctx, updated.Current.Sub(delta), updated.Current)
	return updated, nil
}

func (s *BudgetServiceImpl) publishChange(ctx context.Context, previous, current decimal.Decimal) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(event_bus.NewMessage(ctx, event_bus.BudgetChangedType, event_bus.BudgetChanged{
		Previous: previous,
		Current:  current,
	}))
	if err != nil {
		log.Warnf("budget changed but notifying subscribers failed: %v", err)
	}
}
