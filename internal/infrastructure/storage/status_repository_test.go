//go:build integration

package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetfill/engine/internal/infrastructure/storage"
	"github.com/sheetfill/engine/pkg/models"
	"github.com/sheetfill/engine/testutil"
)

func TestStatusRepository_UpsertAndGet(t *testing.T) {
	td := testutil.SetupTestDB(t)
	seedSheetAndColumns(t, td, "sheet-status-1")
	repo := storage.NewStatusRepository(td.DB)
	ctx := context.Background()

	require.NoError(t, repo.UpsertStatus(ctx, &models.CellProcessingStatus{
		SheetID: "sheet-status-1", RowIndex: 0, ColIndex: 1,
		Status: models.CellStatusProcessing, Operator: "url_context", StatusMessage: "running", UpdatedAt: time.Now(),
	}))

	status, err := repo.GetStatus(ctx, models.CellKey{SheetID: "sheet-status-1", RowIndex: 0, ColIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, models.CellStatusProcessing, status.Status)

	require.NoError(t, repo.UpsertStatus(ctx, &models.CellProcessingStatus{
		SheetID: "sheet-status-1", RowIndex: 0, ColIndex: 1,
		Status: models.CellStatusCompleted, StatusMessage: "filled", UpdatedAt: time.Now(),
	}))
	updated, err := repo.GetStatus(ctx, models.CellKey{SheetID: "sheet-status-1", RowIndex: 0, ColIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, models.CellStatusCompleted, updated.Status)
}

func TestStatusRepository_GetStatus_NotFound(t *testing.T) {
	td := testutil.SetupTestDB(t)
	repo := storage.NewStatusRepository(td.DB)

	_, err := repo.GetStatus(context.Background(), models.CellKey{SheetID: "missing", RowIndex: 0, ColIndex: 0})
	assert.ErrorIs(t, err, models.ErrCellNotFound)
}

func TestStatusRepository_ListRowStatus_OrderedByColumn(t *testing.T) {
	td := testutil.SetupTestDB(t)
	seedSheetAndColumns(t, td, "sheet-status-2")
	repo := storage.NewStatusRepository(td.DB)
	ctx := context.Background()

	require.NoError(t, repo.UpsertStatus(ctx, &models.CellProcessingStatus{SheetID: "sheet-status-2", RowIndex: 0, ColIndex: 1, Status: models.CellStatusCompleted, UpdatedAt: time.Now()}))
	require.NoError(t, repo.UpsertStatus(ctx, &models.CellProcessingStatus{SheetID: "sheet-status-2", RowIndex: 0, ColIndex: 0, Status: models.CellStatusCompleted, UpdatedAt: time.Now()}))

	statuses, err := repo.ListRowStatus(ctx, "sheet-status-2", 0)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, 0, statuses[0].ColIndex)
	assert.Equal(t, 1, statuses[1].ColIndex)
}

func TestAuditRepository_Append_AssignsIDWhenEmpty(t *testing.T) {
	td := testutil.SetupTestDB(t)
	seedSheetAndColumns(t, td, "sheet-audit-1")
	repo := storage.NewAuditRepository(td.DB)

	update := &models.SheetUpdate{
		SheetID: "sheet-audit-1", RowIndex: 0, ColIndex: 1, Content: "https://acme.com",
		UpdateType: models.SheetUpdateTypeAIResponse, AppliedAt: time.Now(),
	}
	require.NoError(t, repo.Append(context.Background(), update))
	assert.NotEmpty(t, update.ID)
}
