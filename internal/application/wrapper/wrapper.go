package wrapper

import (
	"context"
	"time"

	"github.com/sheetfill/engine/internal/application/validator"
	"github.com/sheetfill/engine/internal/domain/repository"
	"github.com/sheetfill/engine/pkg/models"
)

// Result is returned by Wrapper.WriteResult to the dispatcher, per
//
type Result struct {
	Success          bool
	NeedsRetry       bool
	ValidationIssues []validator.Issue
	RetryPrompt      string
}

// Wrapper implements the column-aware wrapper: result extraction,
// sanitization, validated write-through, and successor enqueue.
type Wrapper struct {
	cells     repository.CellRepository
	audit     repository.AuditRepository
	queue     repository.EventQueue
	validator *validator.Validator

	blockedHosts []string
	maxLength    int
}

// New creates a Wrapper.
func New(cells repository.CellRepository, audit repository.AuditRepository, queue repository.EventQueue, v *validator.Validator, blockedHosts []string, maxLength int) *Wrapper {
	return &Wrapper{cells: cells, audit: audit, queue: queue, validator: v, blockedHosts: blockedHosts, maxLength: maxLength}
}

// WriteResult extracts, sanitizes, validates, and (if accepted) writes the
// operator's output to the target cell, appends an audit record, and
// enqueues the successor event. originalPrompt is the contextual prompt
// that was sent to the operator, needed to build a retry prompt on failure.
func (w *Wrapper) WriteResult(ctx context.Context, sheetCtx *models.SheetContext, target *models.Column, operatorType models.OperatorType, output map[string]interface{}, originalPrompt string) (*Result, error) {
	raw := ExtractContent(operatorType, output, w.blockedHosts)

	sanitized, err := Sanitize(raw, w.blockedHosts, w.maxLength)
	if err != nil {
		// Rejected writes still complete the event ( open
		// question decision 2) but never reach a cell write or successor
		// enqueue — the chain halts for this row.
		return &Result{Success: false, NeedsRetry: false}, err
	}

	validation := w.validator.Validate(sanitized, target)

	content := sanitized
	if validation.Sanitized != "" && validation.Valid {
		content = validation.Sanitized
	}

	if err := w.cells.UpsertCell(ctx, &models.Cell{
		SheetID:  sheetCtx.SheetID,
		RowIndex: sheetCtx.RowIndex,
		ColIndex: target.Position,
		Content:  content,
	}); err != nil {
		return nil, err
	}

	if err := w.audit.Append(ctx, &models.SheetUpdate{
		SheetID:    sheetCtx.SheetID,
		RowIndex:   sheetCtx.RowIndex,
		ColIndex:   target.Position,
		Content:    content,
		UpdateType: models.SheetUpdateTypeAIResponse,
		AppliedAt:  time.Now(),
	}); err != nil {
		return nil, err
	}

	if !sheetCtx.IsLastColumn(target.Position) {
		if _, err := w.queue.Enqueue(ctx, sheetCtx.SheetID, sheetCtx.RowIndex, target.Position, models.EventTypeRobotCellUpdate, models.NewCellEditPayload(content)); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Success:          validation.Valid,
		NeedsRetry:       w.validator.NeedsRetry(validation),
		ValidationIssues: validation.Issues,
	}
	if result.NeedsRetry {
		result.RetryPrompt = validator.GenerateImprovementPrompt(originalPrompt, target, validation)
	}
	return result, nil
}
