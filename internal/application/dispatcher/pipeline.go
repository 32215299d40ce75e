package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/sheetfill/engine/internal/application/wrapper"
	"github.com/sheetfill/engine/pkg/models"
)

// runPipeline executes steps 1-9 for event. Returning a
// non-nil error means the caller should call Fail; returning nil means the
// event already transitioned to Complete (whether or not the write itself
// succeeded — per the rejected-write open question, a rejected write still
// marks the event completed, since retrying it would not change the
// outcome).
func (d *Dispatcher) runPipeline(ctx context.Context, event *models.Event) error {
	// 1. Resolve context.
	sheetCtx, err := resolveContext(ctx, d.sheets, d.cells, event.SheetID, event.RowIndex, event.ColIndex)
	if err != nil {
		return fmt.Errorf("resolve context: %w", err)
	}

	target := sheetCtx.TargetColumn()
	if target == nil {
		// Nothing past the last column; nothing to do, the chain already ended.
		return d.queue.Complete(ctx, event.ID)
	}

	// 2. Pick operator.
	var opType models.OperatorType
	content := event.PayloadContent()
	if event.EventType == models.EventTypeManualTrigger {
		opType = SelectForManualTrigger(event.TriggerType())
	} else {
		opType = SelectOperator(target, sheetCtx.TemplateType, content)
	}

	op, err := d.operators.Get(opType)
	if err != nil {
		return models.NewPipelineError(models.ErrorKindConfiguration, err)
	}

	// 3. Mark processing.
	_ = d.status.UpsertStatus(ctx, &models.CellProcessingStatus{
		SheetID:       sheetCtx.SheetID,
		RowIndex:      sheetCtx.RowIndex,
		ColIndex:      target.Position,
		Status:        models.CellStatusProcessing,
		Operator:      string(opType),
		StatusMessage: fmt.Sprintf("running %s", opType),
		UpdatedAt:     time.Now(),
	})

	// 4. Prepare input.
	prompt := wrapper.BuildContextualPrompt(sheetCtx, target)
	input := BuildOperatorInput(opType, prompt, content, target.OperatorConfig)

	opCtx := ctx
	if d.cfg.OperatorTimeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, d.cfg.OperatorTimeout)
		defer cancel()
	}

	// 5. Invoke operator.
	output, err := op.Operate(opCtx, input)
	if err != nil {
		op.OnError(ctx, err, input)
		return fmt.Errorf("operate: %w", err)
	}
	op.Next(ctx, output)

	// 6. Write + successor.
	result, err := d.wrapper.WriteResult(ctx, sheetCtx, target, opType, output, prompt)
	if err != nil {
		if models.IsRejectedWrite(err) {
			d.finalizeStatus(ctx, sheetCtx, target, false, []string{err.Error()})
			return d.queue.Complete(ctx, event.ID)
		}
		return fmt.Errorf("write result: %w", err)
	}

	// 7. In-process retry.
	retryCount, err := d.queue.ReadRetryCount(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("read retry count: %w", err)
	}
	if result.NeedsRetry && retryCount < d.cfg.MaxRetries && result.RetryPrompt != "" {
		if err := d.queue.IncrementRetry(ctx, event.ID); err != nil {
			return fmt.Errorf("increment retry: %w", err)
		}
		retryInput := WithRetryPrompt(opType, input, result.RetryPrompt)
		retryOutput, err := op.Operate(opCtx, retryInput)
		if err != nil {
			op.OnError(ctx, err, retryInput)
			return fmt.Errorf("retry operate: %w", err)
		}
		op.Next(ctx, retryOutput)

		retryResult, err := d.wrapper.WriteResult(ctx, sheetCtx, target, opType, retryOutput, result.RetryPrompt)
		if err != nil {
			if models.IsRejectedWrite(err) {
				d.finalizeStatus(ctx, sheetCtx, target, false, []string{err.Error()})
				return d.queue.Complete(ctx, event.ID)
			}
			return fmt.Errorf("write retry result: %w", err)
		}
		result = retryResult
	}

	// 8. Finalize status.
	issues := make([]string, 0, len(result.ValidationIssues))
	for _, issue := range result.ValidationIssues {
		issues = append(issues, issue.Message)
	}
	d.finalizeStatus(ctx, sheetCtx, target, result.Success, issues)

	// 9. Complete event.
	return d.queue.Complete(ctx, event.ID)
}

func (d *Dispatcher) finalizeStatus(ctx context.Context, sheetCtx *models.SheetContext, target *models.Column, success bool, issues []string) {
	status := models.CellStatusCompleted
	message := "filled"
	if !success {
		status = models.CellStatusError
		if len(issues) > 0 {
			message = issues[0]
		} else {
			message = "rejected write"
		}
	}
	_ = d.status.UpsertStatus(ctx, &models.CellProcessingStatus{
		SheetID:       sheetCtx.SheetID,
		RowIndex:      sheetCtx.RowIndex,
		ColIndex:      target.Position,
		Status:        status,
		StatusMessage: message,
		UpdatedAt:     time.Now(),
	})
}
