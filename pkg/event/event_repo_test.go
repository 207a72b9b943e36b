package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fundflow/fundflow/internal/test_utils"
	"github.com/fundflow/fundflow/pkg/budget"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepositoryTest(t *testing.T) (*EventRepositoryImpl, context.Context) {
	db := test_utils.SetupTestDB(t)
	return NewEventRepo(db), context.Background()
}

func createTestEvent(t *testing.T, name, date, start string, alloted int64) Event {
	return Event{
		Name:          name,
		Date:          mustDate(t, date),
		Start:         mustTime(t, start),
		Alloted:       decimal.NewFromInt(alloted),
		BudgetLimit:   decimal.NewFromInt(1000),
		CurrentBudget: decimal.NewFromInt(alloted),
	}
}

func storeAll(t *testing.T, repo *EventRepositoryImpl, events ...Event) []int64 {
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		id, err := repo.StoreEvent(context.Background(), e)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestEventRepositoryImpl_StoreAndGet(t *testing.T) {
	// given
	repo, ctx := setupRepositoryTest(t)
	event := createTestEvent(t, "Birthday dinner", "2026-03-14", "7:30 PM", 120)
	event.End = mustTime(t, "10:00 PM")
	event.Alloted = decimal.RequireFromString("120.25")

	// when
	id, err := repo.StoreEvent(ctx, event)
	require.NoError(t, err)

	// then
	stored, err := repo.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, stored.Id)
	assert.Equal(t, "Birthday dinner", stored.Name)
	assert.Equal(t, event.Date, stored.Date)
	assert.Equal(t, "7:30 PM", stored.Start.String())
	assert.Equal(t, "10:00 PM", stored.End.String())
	assert.Equal(t, "120.25", stored.Alloted.String())
	assert.Equal(t, "1000", stored.BudgetLimit.String())
	assert.Equal(t, "120", stored.CurrentBudget.String())
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestEventRepositoryImpl_StoreWithoutTimes(t *testing.T) {
	repo, ctx := setupRepositoryTest(t)
	event := createTestEvent(t, "All day", "2026-03-14", "", 0)

	id, err := repo.StoreEvent(ctx, event)
	require.NoError(t, err)

	stored, err := repo.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.Start.IsSet())
	assert.False(t, stored.End.IsSet())
}

func TestEventRepositoryImpl_GetEventNotFound(t *testing.T) {
	repo, ctx := setupRepositoryTest(t)

	_, err := repo.GetEvent(ctx, 404)

	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventRepositoryImpl_CountAndGetByDate(t *testing.T) {
	// given
	repo, ctx := setupRepositoryTest(t)
	storeAll(t, repo,
		createTestEvent(t, "Lunch", "2026-03-14", "1:00 PM", 10),
		createTestEvent(t, "Gym", "2026-03-14", "9:00 AM", 5),
		createTestEvent(t, "Breakfast", "2026-03-14", "8:30 AM", 7),
		createTestEvent(t, "Tomorrow", "2026-03-15", "8:00 AM", 1),
	)
	day := mustDate(t, "2026-03-14")

	// when
	count, err := repo.CountByDate(ctx, day)
	require.NoError(t, err)
	events, err := repo.GetByDate(ctx, day)
	require.NoError(t, err)

	// then
	assert.Equal(t, 3, count)
	assert.Equal(t, []string{"8:30 AM", "9:00 AM", "1:00 PM"}, startTimes(events))
}

func TestEventRepositoryImpl_GetInMonth(t *testing.T) {
	// given
	repo, ctx := setupRepositoryTest(t)
	storeAll(t, repo,
		createTestEvent(t, "Feb", "2026-02-28", "9:00 AM", 1),
		createTestEvent(t, "Early March", "2026-03-02", "9:00 AM", 1),
		createTestEvent(t, "Yesterday", "2026-03-13", "11:00 PM", 1),
		createTestEvent(t, "Today late", "2026-03-14", "6:00 PM", 1),
		createTestEvent(t, "Today early", "2026-03-14", "7:00 AM", 1),
		createTestEvent(t, "End of March", "2026-03-31", "", 1),
		createTestEvent(t, "April", "2026-04-01", "9:00 AM", 1),
		createTestEvent(t, "March last year", "2025-03-20", "9:00 AM", 1),
	)
	today := mustDate(t, "2026-03-14")

	names := func(events []Event) []string {
		result := make([]string, 0, len(events))
		for _, e := range events {
			result = append(result, e.Name)
		}
		return result
	}

	// when
	upcoming, err := repo.GetInMonth(ctx, 2026, time.March, today, Upcoming)
	require.NoError(t, err)
	history, err := repo.GetInMonth(ctx, 2026, time.March, today, History)
	require.NoError(t, err)

	// then
	assert.Equal(t, []string{"Today early", "Today late", "End of March"}, names(upcoming))
	assert.Equal(t, []string{"Early March", "Yesterday"}, names(history))
	for _, e := range upcoming {
		assert.False(t, e.Date.Before(today))
	}
	for _, e := range history {
		assert.True(t, e.Date.Before(today))
	}
}

func TestEventRepositoryImpl_GetInMonthDecember(t *testing.T) {
	repo, ctx := setupRepositoryTest(t)
	storeAll(t, repo,
		createTestEvent(t, "New Year's Eve", "2026-12-31", "11:00 PM", 1),
		createTestEvent(t, "New Year", "2027-01-01", "12:00 AM", 1),
	)

	events, err := repo.GetInMonth(ctx, 2026, time.December, mustDate(t, "2026-12-01"), Upcoming)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "New Year's Eve", events[0].Name)
}

func TestEventRepositoryImpl_UpdateEventKeepsBudgetFields(t *testing.T) {
	// given
	repo, ctx := setupRepositoryTest(t)
	ids := storeAll(t, repo, createTestEvent(t, "Concert", "2026-03-20", "8:00 PM", 80))

	// when
	updated, err := repo.UpdateEvent(ctx, Event{
		Id:      ids[0],
		Name:    "Concert (moved)",
		Date:    mustDate(t, "2026-03-21"),
		Start:   mustTime(t, "7:00 PM"),
		End:     mustTime(t, "11:00 PM"),
		Alloted: decimal.NewFromInt(1),
	})

	// then
	require.NoError(t, err)
	assert.True(t, updated)
	stored, err := repo.GetEvent(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Concert (moved)", stored.Name)
	assert.Equal(t, mustDate(t, "2026-03-21"), stored.Date)
	assert.Equal(t, "7:00 PM", stored.Start.String())
	assert.Equal(t, "11:00 PM", stored.End.String())
	assert.Equal(t, "80", stored.Alloted.String())
	assert.Equal(t, "1000", stored.BudgetLimit.String())
	assert.Equal(t, "80", stored.CurrentBudget.String())
}

func TestEventRepositoryImpl_UpdateAndDeleteUnknownId(t *testing.T) {
	repo, ctx := setupRepositoryTest(t)

	updated, err := repo.UpdateEvent(ctx, Event{Id: 99, Name: "x", Date: mustDate(t, "2026-03-14")})
	require.NoError(t, err)
	assert.False(t, updated)

	deleted, err := repo.DeleteEvent(ctx, 99)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestEventRepositoryImpl_Delete(t *testing.T) {
	repo, ctx := setupRepositoryTest(t)
	ids := storeAll(t, repo, createTestEvent(t, "Trip", "2026-03-20", "", 300))

	deleted, err := repo.DeleteEvent(ctx, ids[0])

	require.NoError(t, err)
	assert.True(t, deleted)
	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestEventRepositoryImpl_WithTransactionRollsBackEventAndBudget(t *testing.T) {
	// given
	repo, ctx := setupRepositoryTest(t)
	failure := errors.New("abort")

	// when
	err := repo.WithTransaction(ctx, func(txRepo EventRepository, budgets budget.BudgetRepo) error {
		if _, err := txRepo.StoreEvent(ctx, createTestEvent(t, "Doomed", "2026-03-14", "", 50)); err != nil {
			return err
		}
		if _, err := budgets.Adjust(ctx, decimal.NewFromInt(-50)); err != nil {
			return err
		}
		return failure
	})

	// then
	assert.ErrorIs(t, err, failure)
	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	b, err := budget.NewBudgetRepo(repo.db).Get(ctx)
	require.NoError(t, err)
	assert.True(t, b.Current.IsZero())
}

func TestEventRepositoryImpl_NestedTransactionReusesOuter(t *testing.T) {
	repo, ctx := setupRepositoryTest(t)

	err := repo.WithTransaction(ctx, func(txRepo EventRepository, _ budget.BudgetRepo) error {
		return txRepo.WithTransaction(ctx, func(inner EventRepository, budgets budget.BudgetRepo) error {
			_, err := inner.StoreEvent(ctx, createTestEvent(t, "Nested", "2026-03-14", "", 5))
			if err != nil {
				return err
			}
			_, err = budgets.Adjust(ctx, decimal.NewFromInt(-5))
			return err
		})
	})

	require.NoError(t, err)
	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
