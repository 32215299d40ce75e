package dispatcher

import (
	"context"
	"fmt"

	"github.com/sheetfill/engine/internal/domain/repository"
	"github.com/sheetfill/engine/pkg/models"
)

// resolveContext implements step 1: load the sheet, its
// columns, and the existing cells of rowIndex, and assemble a SheetContext.
func resolveContext(ctx context.Context, sheets repository.SheetRepository, cells repository.CellRepository, sheetID string, rowIndex, colIndex int) (*models.SheetContext, error) {
	sheet, err := sheets.GetSheet(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("resolve context: %w", err)
	}

	columns, err := sheets.ListColumns(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("resolve context: %w", err)
	}

	rowCells, err := cells.ListRowCells(ctx, sheetID, rowIndex)
	if err != nil {
		return nil, fmt.Errorf("resolve context: %w", err)
	}

	rowData := make(map[int]string, len(rowCells))
	for _, c := range rowCells {
		rowData[c.ColIndex] = c.Content
	}

	return &models.SheetContext{
		SheetID:            sheetID,
		TemplateType:       sheet.TemplateType,
		SystemPrompt:       sheet.SystemPrompt,
		Columns:            models.SortedByPosition(columns),
		RowIndex:           rowIndex,
		CurrentColumnIndex: colIndex,
		RowData:            rowData,
	}, nil
}
