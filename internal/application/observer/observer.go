// Package observer fans out CellProcessingStatus changes to external
// collaborators without the dispatcher blocking on their delivery.
package observer

import (
	"context"
	"time"
)

// Observer is the core interface for cell-processing event observation.
type Observer interface {
	// OnEvent is called when a cell's processing status changes.
	OnEvent(ctx context.Context, event Event) error

	// Name returns the observer's unique identifier.
	Name() string

	// Filter returns the event filter for this observer (nil = all events).
	Filter() EventFilter
}

// Event carries a CellProcessingStatus transition with enough context for an
// external subscriber to render it without a follow-up query.
type Event struct {
	Type      EventType
	SheetID   string
	RowIndex  int
	ColIndex  int
	Timestamp time.Time

	Operator      string
	StatusMessage string
	RetryCount    *int
	DurationMs    *int64
	Error         error
}

// EventType enumerates the cell-processing lifecycle, dot-notation like the
// rest of the engine's observability surface.
type EventType string

const (
	EventTypeCellProcessing EventType = "cell.processing"
	EventTypeCellCompleted  EventType = "cell.completed"
	EventTypeCellError      EventType = "cell.error"
	EventTypeCellRetrying   EventType = "cell.retrying"
)

// EventFilter defines filtering criteria for events.
type EventFilter interface {
	ShouldNotify(event Event) bool
}

// SheetFilter only passes events for a specific sheet.
type SheetFilter struct {
	sheetID string
}

// NewSheetFilter creates a filter scoped to one sheet.
func NewSheetFilter(sheetID string) EventFilter {
	return &SheetFilter{sheetID: sheetID}
}

// ShouldNotify reports whether the event belongs to the filter's sheet.
func (f *SheetFilter) ShouldNotify(event Event) bool {
	return event.SheetID == f.sheetID
}

// EventTypeFilter filters events by type.
type EventTypeFilter struct {
	allowedTypes map[EventType]bool
}

// NewEventTypeFilter creates a filter for specific event types. If no types
// are specified, it returns nil (all events pass).
func NewEventTypeFilter(types ...EventType) EventFilter {
	if len(types) == 0 {
		return nil
	}
	filter := &EventTypeFilter{allowedTypes: make(map[EventType]bool, len(types))}
	for _, t := range types {
		filter.allowedTypes[t] = true
	}
	return filter
}

// ShouldNotify checks if the event should trigger notification.
func (f *EventTypeFilter) ShouldNotify(event Event) bool {
	if f == nil || len(f.allowedTypes) == 0 {
		return true
	}
	return f.allowedTypes[event.Type]
}
