//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/sheetfill/engine/internal/infrastructure/storage"
	"github.com/sheetfill/engine/migrations"
)

// TestDB encapsulates a test database and its container, ready to use
// against the real repository implementations.
type TestDB struct {
	DB        *bun.DB
	Container *postgres.PostgresContainer
}

// SetupTestDB starts a PostgreSQL testcontainer, connects to it with bun,
// and runs the full embedded migration set.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("sheetfill_test"),
		postgres.WithUsername("sheetfill_test"),
		postgres.WithPassword("sheetfill_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(10*time.Second),
	)
	sqldb := sql.OpenDB(connector)
	db := bun.NewDB(sqldb, pgdialect.New())
	require.NoError(t, db.Ping())

	testDB := &TestDB{DB: db, Container: container}

	migrator, err := storage.NewMigrator(db, migrations.FS)
	require.NoError(t, err, "failed to create migrator")
	require.NoError(t, migrator.Init(ctx), "failed to initialize migrator")
	require.NoError(t, migrator.Up(ctx), "failed to run migrations")

	t.Cleanup(func() { testDB.Cleanup(t) })

	return testDB
}

// Cleanup closes the bun connection and terminates the container.
func (td *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if td.DB != nil {
		_ = td.DB.Close()
	}
	if td.Container != nil {
		if err := td.Container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}
}

// Reset truncates every domain table except the migration tracking tables,
// for reuse between tests sharing one container.
func (td *TestDB) Reset(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	tables := []string{
		"sheet_updates",
		"cell_processing_status",
		"event_queue",
		"cells",
		"columns",
		"sheets",
	}
	for _, table := range tables {
		if _, err := td.DB.NewTruncateTable().Table(table).Cascade().Exec(ctx); err != nil {
			t.Logf("warning: failed to truncate table %s: %v", table, err)
		}
	}
}
