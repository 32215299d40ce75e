// Package queue is the application-layer façade over the durable event
// queue: it adds observability notification and input
// validation around the bare repository.EventQueue operations, and is the
// entrypoint REST ingress handlers call to enqueue work.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/sheetfill/engine/internal/application/observer"
	"github.com/sheetfill/engine/internal/domain/repository"
	"github.com/sheetfill/engine/pkg/models"
)

// Queue wraps a repository.EventQueue and repository.CellRepository with
// observer notification on enqueue.
type Queue struct {
	repo     repository.EventQueue
	cells    repository.CellRepository
	notifier *observer.ObserverManager
}

// New creates a Queue.
func New(repo repository.EventQueue, cells repository.CellRepository, notifier *observer.ObserverManager) *Queue {
	return &Queue{repo: repo, cells: cells, notifier: notifier}
}

// EnqueueCellEdit implements enqueueCellEdit: a user_cell_edit
// event whose payload carries the edited content.
func (q *Queue) EnqueueCellEdit(ctx context.Context, sheetID string, rowIndex, colIndex int, content string) (string, error) {
	if sheetID == "" {
		return "", fmt.Errorf("enqueue cell edit: sheetID is required")
	}
	eventID, err := q.repo.Enqueue(ctx, sheetID, rowIndex, colIndex, models.EventTypeUserCellEdit, models.NewCellEditPayload(content))
	if err != nil {
		return "", fmt.Errorf("enqueue cell edit: %w", err)
	}
	q.notifyEnqueued(ctx, sheetID, rowIndex, colIndex)
	return eventID, nil
}

// EnqueueManualTrigger implements enqueueManualTrigger.
func (q *Queue) EnqueueManualTrigger(ctx context.Context, sheetID string, rowIndex, colIndex int, triggerType string, parameters map[string]interface{}) (string, error) {
	if sheetID == "" {
		return "", fmt.Errorf("enqueue manual trigger: sheetID is required")
	}
	eventID, err := q.repo.Enqueue(ctx, sheetID, rowIndex, colIndex, models.EventTypeManualTrigger, models.NewManualTriggerPayload(triggerType, parameters))
	if err != nil {
		return "", fmt.Errorf("enqueue manual trigger: %w", err)
	}
	q.notifyEnqueued(ctx, sheetID, rowIndex, colIndex)
	return eventID, nil
}

// BulkCreateRows implements bulkCreateRows: it seeds column 0..M
// of each new row via BulkUpsertSeedCells, then enqueues one user_cell_edit
// event on column 0 per assigned row so the fill chain starts for every row.
func (q *Queue) BulkCreateRows(ctx context.Context, sheetID string, rows [][]string) error {
	if sheetID == "" {
		return fmt.Errorf("bulk create rows: sheetID is required")
	}
	if len(rows) == 0 {
		return nil
	}

	rowIndexes, err := q.cells.BulkUpsertSeedCells(ctx, sheetID, rows)
	if err != nil {
		return fmt.Errorf("bulk create rows: %w", err)
	}

	for i, rowIndex := range rowIndexes {
		content := ""
		if len(rows[i]) > 0 {
			content = rows[i][0]
		}
		if _, err := q.repo.Enqueue(ctx, sheetID, rowIndex, 0, models.EventTypeUserCellEdit, models.NewCellEditPayload(content)); err != nil {
			return fmt.Errorf("bulk create rows: enqueue row %d: %w", rowIndex, err)
		}
		q.notifyEnqueued(ctx, sheetID, rowIndex, 0)
	}
	return nil
}

func (q *Queue) notifyEnqueued(ctx context.Context, sheetID string, rowIndex, colIndex int) {
	if q.notifier == nil {
		return
	}
	q.notifier.Notify(ctx, observer.Event{
		Type:          observer.EventTypeCellProcessing,
		SheetID:       sheetID,
		RowIndex:      rowIndex,
		ColIndex:      colIndex,
		Timestamp:     time.Now(),
		StatusMessage: "queued",
	})
}
