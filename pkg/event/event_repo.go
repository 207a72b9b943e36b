package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fundflow/fundflow/internal/database"
	"github.com/fundflow/fundflow/pkg/budget"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type EventRepository interface {
	// WithTransaction runs fn with an event repository and a budget repository
	// that share one transaction.
	WithTransaction(ctx context.Context, fn func(repo EventRepository, budgets budget.BudgetRepo) error) error
	StoreEvent(ctx context.Context, event Event) (int64, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	CountByDate(ctx context.Context, date time.Time) (int, error)
	GetByDate(ctx context.Context, date time.Time) ([]Event, error)
	// GetInMonth returns events of the given month on the requested side of today.
	GetInMonth(ctx context.Context, year int, month time.Month, today time.Time, period Period) ([]Event, error)
	GetAll(ctx context.Context) ([]Event, error)
	UpdateEvent(ctx context.Context, event Event) (bool, error)
	DeleteEvent(ctx context.Context, id int64) (bool, error)
}

const selectColumns = `SELECT event_id, event_name, date, start_minute, end_minute,
       alloted, budget_limit, current_budget, created_at
  FROM event`

const orderByDateAndStart = ` ORDER BY date, start_minute IS NULL, start_minute, event_id`

type eventRow struct {
	Id            int64           `db:"event_id"`
	Name          string          `db:"event_name"`
	Date          string          `db:"date"`
	Start         TimeOfDay       `db:"start_minute"`
	End           TimeOfDay       `db:"end_minute"`
	Alloted       decimal.Decimal `db:"alloted"`
	BudgetLimit   decimal.Decimal `db:"budget_limit"`
	CurrentBudget decimal.Decimal `db:"current_budget"`
	CreatedAt     int64           `db:"created_at"`
}

func (r eventRow) toEvent() (Event, error) {
	date, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return Event{}, fmt.Errorf("could not parse date of event %d: %w", r.Id, err)
	}
	return Event{
		Id:            r.Id,
		Name:          r.Name,
		Date:          date,
		Start:         r.Start,
		End:           r.End,
		Alloted:       r.Alloted,
		BudgetLimit:   r.BudgetLimit,
		CurrentBudget: r.CurrentBudget,
		CreatedAt:     time.UnixMilli(r.CreatedAt),
	}, nil
}

type EventRepositoryImpl struct {
	db *sqlx.DB
	q  database.Queryer
}

func NewEventRepo(db *sqlx.DB) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db, q: db}
}

func (r *EventRepositoryImpl) WithTransaction(ctx context.Context, fn func(repo EventRepository, budgets budget.BudgetRepo) error) error {
	if r.db == nil {
		// already inside a transaction
		tx, ok := r.q.(*sqlx.Tx)
		if !ok {
			return errors.New("repository has neither a database nor a transaction")
		}
		return fn(r, budget.NewBudgetRepoTx(tx))
	}
	return database.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&EventRepositoryImpl{q: tx}, budget.NewBudgetRepoTx(tx))
	})
}

func (r *EventRepositoryImpl) StoreEvent(ctx context.Context, event Event) (int64, error) {
	query := `INSERT INTO event (
                    event_name,
                    date,
                    start_minute,
                    end_minute,
                    alloted,
                    budget_limit,
                    current_budget,
                    created_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	result, err := r.q.ExecContext(ctx, query,
		event.Name,
		event.Date.Format(DateLayout),
		event.Start,
		event.End,
		event.Alloted.String(),
		event.BudgetLimit.String(),
		event.CurrentBudget.String(),
		createdAt.UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}
	return lastInsertID, nil
}

func (r *EventRepositoryImpl) GetEvent(ctx context.Context, id int64) (Event, error) {
	var row eventRow
	err := r.q.GetContext(ctx, &row, selectColumns+" WHERE event_id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query event %d: %w", id, err)
		log.Error(err)
		return Event{}, err
	}
	return row.toEvent()
}

func (r *EventRepositoryImpl) CountByDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := r.q.GetContext(ctx, &count, "SELECT COUNT(*) FROM event WHERE date = ?", date.Format(DateLayout))
	if err != nil {
		err := fmt.Errorf("could not count events: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r *EventRepositoryImpl) GetByDate(ctx context.Context, date time.Time) ([]Event, error) {
	return r.selectEvents(ctx, selectColumns+" WHERE date = ?"+orderByDateAndStart, date.Format(DateLayout))
}

func (r *EventRepositoryImpl) GetInMonth(ctx context.Context, year int, month time.Month, today time.Time, period Period) ([]Event, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var todayCondition string
	switch period {
	case Upcoming:
		todayCondition = "date >= ?"
	case History:
		todayCondition = "date < ?"
	default:
		return nil, fmt.Errorf("unknown period %s", period)
	}

	query := selectColumns + " WHERE date >= ? AND date < ? AND " + todayCondition + orderByDateAndStart
	return r.selectEvents(ctx, query, from.Format(DateLayout), to.Format(DateLayout), today.Format(DateLayout))
}

func (r *EventRepositoryImpl) GetAll(ctx context.Context) ([]Event, error) {
	return r.selectEvents(ctx, selectColumns+orderByDateAndStart)
}

func (r *EventRepositoryImpl) selectEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	var rows []eventRow
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}

	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEvent()
		if err != nil {
			log.Error(err)
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *EventRepositoryImpl) UpdateEvent(ctx context.Context, event Event) (bool, error) {
	query := `UPDATE event SET event_name = ?, date = ?, start_minute = ?, end_minute = ? WHERE event_id = ?`
	result, err := r.q.ExecContext(ctx, query,
		event.Name,
		event.Date.Format(DateLayout),
		event.Start,
		event.End,
		event.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *EventRepositoryImpl) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.ExecContext(ctx, "DELETE FROM event WHERE event_id = ?", id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}
