package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sheetfill/engine/internal/domain/repository"
	"github.com/sheetfill/engine/internal/infrastructure/storage/models"
	domainmodels "github.com/sheetfill/engine/pkg/models"
	"github.com/uptrace/bun"
)

var _ repository.EventQueue = (*EventQueueRepository)(nil)

// EventQueueRepository implements repository.EventQueue on top of Postgres,
// using SELECT ... FOR UPDATE SKIP LOCKED so concurrent dispatcher instances
// never claim the same row twice.
type EventQueueRepository struct {
	db *bun.DB
}

// NewEventQueueRepository creates a new EventQueueRepository.
func NewEventQueueRepository(db *bun.DB) *EventQueueRepository {
	return &EventQueueRepository{db: db}
}

// Enqueue atomically inserts an event with status=pending, retryCount=0.
func (r *EventQueueRepository) Enqueue(ctx context.Context, sheetID string, rowIndex, colIndex int, eventType domainmodels.EventType, payload map[string]interface{}) (string, error) {
	row := &models.EventQueueModel{
		ID:        uuid.NewString(),
		SheetID:   sheetID,
		RowIndex:  rowIndex,
		ColIndex:  colIndex,
		EventType: string(eventType),
		Payload:   models.JSONBMap(payload),
		Status:    string(domainmodels.EventStatusPending),
	}
	_, err := r.db.NewInsert().Model(row).Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("enqueue event: %w", err)
	}
	return row.ID, nil
}

// Claim atomically selects up to limit pending events, oldest first, and
// transitions them to processing within a single transaction so a crash
// between select and update never loses the lock.
func (r *EventQueueRepository) Claim(ctx context.Context, limit int) ([]*domainmodels.Event, error) {
	var claimed []*models.EventQueueModel

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var ids []string
		err := tx.NewSelect().
			Model((*models.EventQueueModel)(nil)).
			Column("id").
			Where("status = ?", domainmodels.EventStatusPending).
			Order("created_at ASC").
			Limit(limit).
			For("UPDATE SKIP LOCKED").
			Scan(ctx, &ids)
		if err != nil {
			return fmt.Errorf("select claimable events: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		now := time.Now()
		_, err = tx.NewUpdate().
			Model((*models.EventQueueModel)(nil)).
			Set("status = ?", domainmodels.EventStatusProcessing).
			Set("claimed_at = ?", now).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("claim events: %w", err)
		}

		err = tx.NewSelect().
			Model(&claimed).
			Where("id IN (?)", bun.In(ids)).
			Order("created_at ASC").
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("reload claimed events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := make([]*domainmodels.Event, len(claimed))
	for i, row := range claimed {
		events[i] = models.ToDomainEvent(row)
	}
	return events, nil
}

// Complete transitions processing -> completed and stamps processedAt.
func (r *EventQueueRepository) Complete(ctx context.Context, eventID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.EventQueueModel)(nil)).
		Set("status = ?", domainmodels.EventStatusCompleted).
		Set("processed_at = ?", time.Now()).
		Where("id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("complete event: %w", err)
	}
	return nil
}

// Fail transitions processing -> failed and persists lastError.
func (r *EventQueueRepository) Fail(ctx context.Context, eventID string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	_, err := r.db.NewUpdate().
		Model((*models.EventQueueModel)(nil)).
		Set("status = ?", domainmodels.EventStatusFailed).
		Set("last_error = ?", message).
		Set("processed_at = ?", time.Now()).
		Where("id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("fail event: %w", err)
	}
	return nil
}

// IncrementRetry bumps retryCount by 1 without changing status.
func (r *EventQueueRepository) IncrementRetry(ctx context.Context, eventID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.EventQueueModel)(nil)).
		Set("retry_count = retry_count + 1").
		Where("id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("increment retry: %w", err)
	}
	return nil
}

// ReadRetryCount returns the current retryCount for eventID.
func (r *EventQueueRepository) ReadRetryCount(ctx context.Context, eventID string) (int, error) {
	var retryCount int
	err := r.db.NewSelect().
		Model((*models.EventQueueModel)(nil)).
		Column("retry_count").
		Where("id = ?", eventID).
		Scan(ctx, &retryCount)
	if err != nil {
		return 0, fmt.Errorf("read retry count: %w", err)
	}
	return retryCount, nil
}

// Reap forces events stuck in pending or processing older than olderThan to
// completed. Both statuses are treated symmetrically: a pending event too
// old to have been claimed is as stuck as a processing one whose worker
// died mid-flight, and retrying either risks duplicate writes more than it
// helps.
func (r *EventQueueRepository) Reap(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := r.db.NewUpdate().
		Model((*models.EventQueueModel)(nil)).
		Set("status = ?", domainmodels.EventStatusCompleted).
		Set("last_error = ?", "reaped: exceeded max processing age").
		Set("processed_at = ?", time.Now()).
		Where("status IN (?)", bun.In([]string{string(domainmodels.EventStatusPending), string(domainmodels.EventStatusProcessing)})).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("reap events: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reap events: %w", err)
	}
	return int(affected), nil
}
