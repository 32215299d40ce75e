package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EventQueueModel is the bun row backing the durable event queue
//. ClaimedAt/ClaimedBy support the FOR UPDATE SKIP LOCKED
// claim pattern; a stale ClaimedAt is what the reaper sweeps on.
type EventQueueModel struct {
	bun.BaseModel `bun:"table:event_queue,alias:eq"`

	ID          string    `bun:"id,pk,type:uuid,default:uuid_generate_v4()"`
	SheetID     string    `bun:"sheet_id,notnull"`
	RowIndex    int       `bun:"row_index,notnull"`
	ColIndex    int       `bun:"col_index,notnull"`
	EventType   string    `bun:"event_type,notnull"`
	Payload     JSONBMap  `bun:"payload,type:jsonb"`
	Status      string    `bun:"status,notnull,default:'pending'"`
	RetryCount  int       `bun:"retry_count,notnull,default:0"`
	LastError   string    `bun:"last_error"`
	ClaimedAt   *time.Time `bun:"claimed_at"`
	ClaimedBy   string    `bun:"claimed_by"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	ProcessedAt *time.Time `bun:"processed_at"`
}

var _ bun.BeforeAppendModelHook = (*EventQueueModel)(nil)

func (e *EventQueueModel) BeforeAppendModel(_ interface{}, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}

// CellProcessingStatusModel is the bun row tracking per-cell processing
// state for observability polling.
type CellProcessingStatusModel struct {
	bun.BaseModel `bun:"table:cell_processing_status,alias:cps"`

	SheetID       string    `bun:"sheet_id,pk"`
	RowIndex      int       `bun:"row_index,pk"`
	ColIndex      int       `bun:"col_index,pk"`
	Status        string    `bun:"status,notnull"`
	Operator      string    `bun:"operator"`
	StatusMessage string    `bun:"status_message"`
	RetryCount    int       `bun:"retry_count,notnull,default:0"`
	LastError     string    `bun:"last_error"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// SheetUpdateModel is an append-only audit log of write-through cell
// updates, grounded in audit retention.
type SheetUpdateModel struct {
	bun.BaseModel `bun:"table:sheet_updates,alias:su"`

	ID         string    `bun:"id,pk,type:uuid,default:uuid_generate_v4()"`
	SheetID    string    `bun:"sheet_id,notnull"`
	RowIndex   int       `bun:"row_index,notnull"`
	ColIndex   int       `bun:"col_index,notnull"`
	Content    string    `bun:"content"`
	UpdateType string    `bun:"update_type,notnull"`
	AppliedAt  time.Time `bun:"applied_at,notnull,default:current_timestamp"`
}

var _ bun.BeforeAppendModelHook = (*SheetUpdateModel)(nil)

func (s *SheetUpdateModel) BeforeAppendModel(_ interface{}, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && s.AppliedAt.IsZero() {
		s.AppliedAt = time.Now()
	}
	return nil
}
