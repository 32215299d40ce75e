package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sheetfill/engine/internal/domain/repository"
	"github.com/sheetfill/engine/internal/infrastructure/storage/models"
	domainmodels "github.com/sheetfill/engine/pkg/models"
	"github.com/uptrace/bun"
)

var _ repository.StatusRepository = (*StatusRepository)(nil)

// StatusRepository implements repository.StatusRepository using Bun ORM.
type StatusRepository struct {
	db bun.IDB
}

// NewStatusRepository creates a new StatusRepository.
func NewStatusRepository(db bun.IDB) *StatusRepository {
	return &StatusRepository{db: db}
}

// UpsertStatus idempotently writes the latest processing status for a cell.
func (r *StatusRepository) UpsertStatus(ctx context.Context, status *domainmodels.CellProcessingStatus) error {
	row := models.FromDomainStatus(status)
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (sheet_id, row_index, col_index) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("operator = EXCLUDED.operator").
		Set("status_message = EXCLUDED.status_message").
		Set("retry_count = EXCLUDED.retry_count").
		Set("last_error = EXCLUDED.last_error").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert status: %w", err)
	}
	return nil
}

// GetStatus returns the current status for a cell.
func (r *StatusRepository) GetStatus(ctx context.Context, key domainmodels.CellKey) (*domainmodels.CellProcessingStatus, error) {
	var row models.CellProcessingStatusModel
	err := r.db.NewSelect().
		Model(&row).
		Where("sheet_id = ?", key.SheetID).
		Where("row_index = ?", key.RowIndex).
		Where("col_index = ?", key.ColIndex).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainmodels.ErrCellNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	return models.ToDomainStatus(&row), nil
}

// ListRowStatus returns every tracked status in a row.
func (r *StatusRepository) ListRowStatus(ctx context.Context, sheetID string, rowIndex int) ([]*domainmodels.CellProcessingStatus, error) {
	var rows []*models.CellProcessingStatusModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("sheet_id = ?", sheetID).
		Where("row_index = ?", rowIndex).
		Order("col_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list row status: %w", err)
	}

	statuses := make([]*domainmodels.CellProcessingStatus, len(rows))
	for i, row := range rows {
		statuses[i] = models.ToDomainStatus(row)
	}
	return statuses, nil
}

var _ repository.AuditRepository = (*AuditRepository)(nil)

// AuditRepository implements repository.AuditRepository using Bun ORM.
type AuditRepository struct {
	db bun.IDB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db bun.IDB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append appends an immutable audit record of a write the engine performed.
func (r *AuditRepository) Append(ctx context.Context, update *domainmodels.SheetUpdate) error {
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	row := models.FromDomainSheetUpdate(update)
	_, err := r.db.NewInsert().Model(row).Exec(ctx)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}
