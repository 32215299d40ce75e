//go:build integration

package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetfill/engine/internal/infrastructure/storage"
	"github.com/sheetfill/engine/pkg/models"
	"github.com/sheetfill/engine/testutil"
)

func TestEventQueueRepository_EnqueueClaimComplete(t *testing.T) {
	td := testutil.SetupTestDB(t)
	seedSheetAndColumns(t, td, "sheet-evt-1")
	repo := storage.NewEventQueueRepository(td.DB)
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, "sheet-evt-1", 0, 0, models.EventTypeUserCellEdit, models.NewCellEditPayload("Acme"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	claimed, err := repo.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, id, claimed[0].ID)
	assert.Equal(t, models.EventStatusProcessing, claimed[0].Status)

	second, err := repo.Claim(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, second, "an already-claimed event must not be claimed twice")

	require.NoError(t, repo.Complete(ctx, id))
}

func TestEventQueueRepository_Fail_RecordsLastError(t *testing.T) {
	td := testutil.SetupTestDB(t)
	seedSheetAndColumns(t, td, "sheet-evt-2")
	repo := storage.NewEventQueueRepository(td.DB)
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, "sheet-evt-2", 0, 0, models.EventTypeUserCellEdit, models.NewCellEditPayload("Acme"))
	require.NoError(t, err)
	_, err = repo.Claim(ctx, 10)
	require.NoError(t, err)

	require.NoError(t, repo.Fail(ctx, id, errors.New("vendor timeout")))
}

func TestEventQueueRepository_IncrementAndReadRetryCount(t *testing.T) {
	td := testutil.SetupTestDB(t)
	seedSheetAndColumns(t, td, "sheet-evt-3")
	repo := storage.NewEventQueueRepository(td.DB)
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, "sheet-evt-3", 0, 0, models.EventTypeUserCellEdit, models.NewCellEditPayload("Acme"))
	require.NoError(t, err)

	require.NoError(t, repo.IncrementRetry(ctx, id))
	require.NoError(t, repo.IncrementRetry(ctx, id))

	count, err := repo.ReadRetryCount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEventQueueRepository_Reap_ForcesOldStuckEventsToCompleted(t *testing.T) {
	td := testutil.SetupTestDB(t)
	seedSheetAndColumns(t, td, "sheet-evt-4")
	repo := storage.NewEventQueueRepository(td.DB)
	ctx := context.Background()

	_, err := repo.Enqueue(ctx, "sheet-evt-4", 0, 0, models.EventTypeUserCellEdit, models.NewCellEditPayload("Acme"))
	require.NoError(t, err)

	n, err := repo.Reap(ctx, 0*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "an event created before the cutoff must be reaped")

	_, err = repo.Enqueue(ctx, "sheet-evt-4", 0, 1, models.EventTypeUserCellEdit, models.NewCellEditPayload("Globex"))
	require.NoError(t, err)

	n2, err := repo.Reap(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, n2, "a fresh event younger than the threshold must not be reaped")
}
