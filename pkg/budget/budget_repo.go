package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fundflow/fundflow/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")

type BudgetRepo interface {
	Get(ctx context.Context) (Budget, error)
	// Set overwrites the balance with an absolute amount.
	Set(ctx context.Context, amount decimal.Decimal) (Budget, error)
	// Adjust adds delta to the balance as one atomic step.
	Adjust(ctx context.Context, delta decimal.Decimal) (Budget, error)
}

type budgetRow struct {
	Current   decimal.Decimal `db:"current_budget"`
	UpdatedAt int64           `db:"updated_at"`
}

func (r budgetRow) toBudget() Budget {
	b := Budget{Current: r.Current}
	if r.UpdatedAt > 0 {
		b.UpdatedAt = time.UnixMilli(r.UpdatedAt)
	}
	return b
}

type BudgetRepoImpl struct {
	db *sqlx.DB
	q  database.Queryer
}

func NewBudgetRepo(db *sqlx.DB) *BudgetRepoImpl {
	return &BudgetRepoImpl{db: db, q: db}
}

// NewBudgetRepoTx returns a repository whose statements all run inside tx.
func NewBudgetRepoTx(tx *sqlx.Tx) *BudgetRepoImpl {
	return &BudgetRepoImpl{q: tx}
}

func (r *BudgetRepoImpl) Get(ctx context.Context) (Budget, error) {
	var row budgetRow
	err := r.q.GetContext(ctx, &row, "SELECT current_budget, updated_at FROM budget WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return Budget{}, ErrBudgetNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	return row.toBudget(), nil
}

func (r *BudgetRepoImpl) Set(ctx context.Context, amount decimal.Decimal) (Budget, error) {
	now := time.Now()
	result, err := r.q.ExecContext(ctx,
		"UPDATE budget SET current_budget = ?, updated_at = ? WHERE id = 1",
		amount.String(), now.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	if rowsAffected != 1 {
		return Budget{}, ErrBudgetNotFound
	}
	return Budget{Current: amount, UpdatedAt: time.UnixMilli(now.UnixMilli())}, nil
}

func (r *BudgetRepoImpl) Adjust(ctx context.Context, delta decimal.Decimal) (Budget, error) {
	if r.db == nil {
		return r.adjust(ctx, delta)
	}
	var adjusted Budget
	err := database.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		adjusted, err = NewBudgetRepoTx(tx).adjust(ctx, delta)
		return err
	})
	if err != nil {
		return Budget{}, err
	}
	return adjusted, nil
}

func (r *BudgetRepoImpl) adjust(ctx context.Context, delta decimal.Decimal) (Budget, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return Budget{}, err
	}
	log.Debugf("adjusting budget %s by %s", current.Current, delta)
	return r.Set(ctx, current.Current.Add(delta))
}
