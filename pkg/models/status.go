package models

import "time"

// CellStatus is the observable processing state of a single cell.
type CellStatus string

const (
	CellStatusIdle       CellStatus = "idle"
	CellStatusProcessing CellStatus = "processing"
	CellStatusCompleted  CellStatus = "completed"
	CellStatusError      CellStatus = "error"
)

// CellProcessingStatus is an idempotent-upsert observability record kept
// alongside a cell so that a UI can poll or subscribe to fill progress
// without reading the event queue directly.
type CellProcessingStatus struct {
	SheetID       string     `json:"sheetId"`
	RowIndex      int        `json:"rowIndex"`
	ColIndex      int        `json:"colIndex"`
	Status        CellStatus `json:"status"`
	Operator      string     `json:"operator,omitempty"`
	StatusMessage string     `json:"statusMessage,omitempty"`
	RetryCount    *int       `json:"retryCount,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Key returns the natural key for this status row, identical in shape to CellKey.
func (s *CellProcessingStatus) Key() CellKey {
	return CellKey{SheetID: s.SheetID, RowIndex: s.RowIndex, ColIndex: s.ColIndex}
}

// SheetUpdateType classifies who/what produced a SheetUpdate audit row.
type SheetUpdateType string

const (
	SheetUpdateTypeAIResponse SheetUpdateType = "ai_response"
	SheetUpdateTypeUserEdit   SheetUpdateType = "user_edit"
)

// SheetUpdate is an append-only audit record of every write the engine
// performs. It is never read back by the engine; it exists purely for
// external observability and is retained indefinitely.
type SheetUpdate struct {
	ID        string          `json:"id"`
	SheetID   string          `json:"sheetId"`
	RowIndex  int             `json:"rowIndex"`
	ColIndex  int             `json:"colIndex"`
	Content   string          `json:"content"`
	UpdateType SheetUpdateType `json:"updateType"`
	AppliedAt time.Time       `json:"appliedAt"`
}
