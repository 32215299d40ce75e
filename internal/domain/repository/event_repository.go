package repository

import (
	"context"
	"time"

	"github.com/sheetfill/engine/pkg/models"
)

// EventQueue is the durable, status-tracked work queue behind the
// dispatcher. Implementations must make Claim safe under concurrent
// dispatcher instances.
type EventQueue interface {
	// Enqueue atomically inserts an event with status=pending, retryCount=0.
	Enqueue(ctx context.Context, sheetID string, rowIndex, colIndex int, eventType models.EventType, payload map[string]interface{}) (string, error)

	// Claim atomically selects up to limit pending events, oldest first, and
	// transitions them to processing. Safe under concurrent callers.
	Claim(ctx context.Context, limit int) ([]*models.Event, error)

	// Complete transitions processing -> completed and stamps processedAt.
	Complete(ctx context.Context, eventID string) error

	// Fail transitions processing -> failed and persists lastError.
	Fail(ctx context.Context, eventID string, cause error) error

	// IncrementRetry bumps retryCount by 1 without changing status.
	IncrementRetry(ctx context.Context, eventID string) error

	// ReadRetryCount returns the current retryCount for eventID.
	ReadRetryCount(ctx context.Context, eventID string) (int, error)

	// Reap forces events stuck in pending or processing older than
	// olderThan to completed, preferring forward progress over a stuck row.
	Reap(ctx context.Context, olderThan time.Duration) (int, error)
}
