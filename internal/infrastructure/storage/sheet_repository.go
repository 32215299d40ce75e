package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sheetfill/engine/internal/domain/repository"
	"github.com/sheetfill/engine/internal/infrastructure/storage/models"
	domainmodels "github.com/sheetfill/engine/pkg/models"
	"github.com/uptrace/bun"
)

var _ repository.SheetRepository = (*SheetRepository)(nil)

// SheetRepository implements repository.SheetRepository using Bun ORM.
type SheetRepository struct {
	db bun.IDB
}

// NewSheetRepository creates a new SheetRepository.
func NewSheetRepository(db bun.IDB) *SheetRepository {
	return &SheetRepository{db: db}
}

// GetSheet loads a sheet and its ordered columns.
func (r *SheetRepository) GetSheet(ctx context.Context, sheetID string) (*domainmodels.Sheet, error) {
	var sheetRow models.SheetModel
	err := r.db.NewSelect().Model(&sheetRow).Where("id = ?", sheetID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainmodels.ErrSheetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sheet: %w", err)
	}

	columns, err := r.ListColumns(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	return models.ToDomainSheet(&sheetRow, columns), nil
}

// ListColumns returns a sheet's columns ordered by position.
func (r *SheetRepository) ListColumns(ctx context.Context, sheetID string) ([]*domainmodels.Column, error) {
	var rows []*models.ColumnModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("sheet_id = ?", sheetID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}

	columns := make([]*domainmodels.Column, len(rows))
	for i, row := range rows {
		columns[i] = models.ToDomainColumn(row)
	}
	return columns, nil
}

// GetColumn returns a single column at a position, or ErrColumnNotFound.
func (r *SheetRepository) GetColumn(ctx context.Context, sheetID string, position int) (*domainmodels.Column, error) {
	var row models.ColumnModel
	err := r.db.NewSelect().
		Model(&row).
		Where("sheet_id = ?", sheetID).
		Where("position = ?", position).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainmodels.ErrColumnNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get column: %w", err)
	}
	return models.ToDomainColumn(&row), nil
}

var _ repository.CellRepository = (*CellRepository)(nil)

// CellRepository implements repository.CellRepository using Bun ORM.
type CellRepository struct {
	db bun.IDB
}

// NewCellRepository creates a new CellRepository.
func NewCellRepository(db bun.IDB) *CellRepository {
	return &CellRepository{db: db}
}

// GetCell returns the content at a cell position, or ErrCellNotFound if no
// write has ever landed there.
func (r *CellRepository) GetCell(ctx context.Context, key domainmodels.CellKey) (*domainmodels.Cell, error) {
	var row models.CellModel
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
		return nil, fmt.Errorf("get cell: %w", err)
	}
	return models.ToDomainCell(&row), nil
}

// ListRowCells returns every cell present in a row, ordered by ColIndex;
// a column with no write at that row has no entry in the returned slice.
func (r *CellRepository) ListRowCells(ctx context.Context, sheetID string, rowIndex int) ([]*domainmodels.Cell, error) {
	var rows []*models.CellModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("sheet_id = ?", sheetID).
		Where("row_index = ?", rowIndex).
		Order("col_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list row cells: %w", err)
	}

	cells := make([]*domainmodels.Cell, len(rows))
	for i, row := range rows {
		cells[i] = models.ToDomainCell(row)
	}
	return cells, nil
}

// UpsertCell writes a cell's content, overwriting any prior content at the
// same position; write-through is last-write-wins per cell.
func (r *CellRepository) UpsertCell(ctx context.Context, cell *domainmodels.Cell) error {
	row := models.FromDomainCell(cell)
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (sheet_id, row_index, col_index) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert cell: %w", err)
	}
	return nil
}

// BulkUpsertSeedCells seeds columns 0..M for a batch of new rows, assigning
// each a contiguous row index starting just after the sheet's current max,
// and returns the assigned indexes in the same order as rows.
func (r *CellRepository) BulkUpsertSeedCells(ctx context.Context, sheetID string, rows [][]string) ([]int, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var maxRow sql.NullInt64
	err := r.db.NewSelect().
		Model((*models.CellModel)(nil)).
		ColumnExpr("MAX(row_index)").
		Where("sheet_id = ?", sheetID).
		Scan(ctx, &maxRow)
	if err != nil {
		return nil, fmt.Errorf("bulk upsert seed cells: find max row: %w", err)
	}

	nextRow := 0
	if maxRow.Valid {
		nextRow = int(maxRow.Int64) + 1
	}

	indexes := make([]int, len(rows))
	var cellRows []*models.CellModel
	now := time.Now()
	for i, seedValues := range rows {
		rowIndex := nextRow + i
		indexes[i] = rowIndex
		for colIndex, content := range seedValues {
			cellRows = append(cellRows, &models.CellModel{
				SheetID:   sheetID,
				RowIndex:  rowIndex,
				ColIndex:  colIndex,
				Content:   content,
				UpdatedAt: now,
			})
		}
	}

	_, err = r.db.NewInsert().
		Model(&cellRows).
		On("CONFLICT (sheet_id, row_index, col_index) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("bulk upsert seed cells: %w", err)
	}
	return indexes, nil
}
