// Package repository declares the storage-agnostic interfaces the
// application layer depends on; internal/infrastructure/storage provides
// the bun-backed implementations.
package repository

import (
	"context"

	"github.com/sheetfill/engine/pkg/models"
)

// SheetRepository loads sheets and their columns. Sheets are created and
// owned by an external layer; the engine only ever reads them.
type SheetRepository interface {
	GetSheet(ctx context.Context, sheetID string) (*models.Sheet, error)
	ListColumns(ctx context.Context, sheetID string) ([]*models.Column, error)
	GetColumn(ctx context.Context, sheetID string, position int) (*models.Column, error)
}

// CellRepository reads and upserts cell content.
type CellRepository interface {
	GetCell(ctx context.Context, key models.CellKey) (*models.Cell, error)
	ListRowCells(ctx context.Context, sheetID string, rowIndex int) ([]*models.Cell, error)
	UpsertCell(ctx context.Context, cell *models.Cell) error
	// BulkUpsertSeedCells writes column-0..M cells for a batch of new rows,
	// returning the row indexes assigned (contiguous, starting after the
	// sheet's current max row index).
	BulkUpsertSeedCells(ctx context.Context, sheetID string, rows [][]string) ([]int, error)
}
