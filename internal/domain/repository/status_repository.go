package repository

import (
	"context"

	"github.com/sheetfill/engine/pkg/models"
)

// StatusRepository persists the idempotent-upsert CellProcessingStatus rows
// observed by external UIs.
type StatusRepository interface {
	UpsertStatus(ctx context.Context, status *models.CellProcessingStatus) error
	GetStatus(ctx context.Context, key models.CellKey) (*models.CellProcessingStatus, error)
	ListRowStatus(ctx context.Context, sheetID string, rowIndex int) ([]*models.CellProcessingStatus, error)
}

// AuditRepository appends to the write-only SheetUpdate log. Never read by
// the engine itself.
type AuditRepository interface {
	Append(ctx context.Context, update *models.SheetUpdate) error
}
