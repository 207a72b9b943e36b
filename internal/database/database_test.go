package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fundflow/fundflow/internal/config"
	"github.com/fundflow/fundflow/internal/database"
	"github.com/fundflow/fundflow/internal/test_utils"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesSchemaAndSeedsBudget(t *testing.T) {
	// given
	db := test_utils.SetupTestDB(t)

	// when
	var current string
	err := db.Get(&current, "SELECT current_budget FROM budget WHERE id = 1")

	// then
	require.NoError(t, err)
	assert.Equal(t, "0", current)

	var events int
	require.NoError(t, db.Get(&events, "SELECT COUNT(*) FROM event"))
	assert.Equal(t, 0, events)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := test_utils.SetupTestDB(t)

	assert.NoError(t, database.Migrate(db))
}

func TestOpen_FileDatabaseSurvivesReopen(t *testing.T) {
	// given
	cfg := config.Database{Path: filepath.Join(t.TempDir(), "events.db"), BusyTimeoutMs: 1000}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	_, err = db.Exec("UPDATE budget SET current_budget = '42.5' WHERE id = 1")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// when
	reopened, err := database.Open(cfg)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, database.Migrate(reopened))

	// then
	var current string
	require.NoError(t, reopened.Get(&current, "SELECT current_budget FROM budget WHERE id = 1"))
	assert.Equal(t, "42.5", current)
}

func TestWithTransaction(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		db := test_utils.SetupTestDB(t)

		err := database.WithTransaction(context.Background(), db, func(tx *sqlx.Tx) error {
			_, err := tx.Exec("UPDATE budget SET current_budget = '10' WHERE id = 1")
			return err
		})

		require.NoError(t, err)
		var current string
		require.NoError(t, db.Get(&current, "SELECT current_budget FROM budget WHERE id = 1"))
		assert.Equal(t, "10", current)
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db := test_utils.SetupTestDB(t)
		failure := errors.New("boom")

		err := database.WithTransaction(context.Background(), db, func(tx *sqlx.Tx) error {
			if _, err := tx.Exec("UPDATE budget SET current_budget = '10' WHERE id = 1"); err != nil {
				return err
			}
			return failure
		})

		assert.ErrorIs(t, err, failure)
		var current string
		require.NoError(t, db.Get(&current, "SELECT current_budget FROM budget WHERE id = 1"))
		assert.Equal(t, "0", current)
	})
}
