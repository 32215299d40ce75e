package models

import "time"

// EventType classifies what triggered an Event.
type EventType string

const (
	EventTypeUserCellEdit    EventType = "user_cell_edit"
	EventTypeRobotCellUpdate EventType = "robot_cell_update"
	EventTypeManualTrigger   EventType = "manual_trigger"
)

// EventStatus tracks an Event through the queue. Transitions only ever run
// pending -> processing -> {completed, failed}.
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusProcessing EventStatus = "processing"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusFailed     EventStatus = "failed"
)

// Event is a durable, status-tracked unit of fill work. ColIndex is the
// *source* cell whose presence triggers filling ColIndex+1 — see the
// successor-enqueue open question resolved in .
type Event struct {
	ID          string                 `json:"id"`
	SheetID     string                 `json:"sheetId"`
	RowIndex    int                    `json:"rowIndex"`
	ColIndex    int                    `json:"colIndex"`
	EventType   EventType              `json:"eventType"`
	Payload     map[string]interface{} `json:"payload"`
	Status      EventStatus            `json:"status"`
	RetryCount  int                    `json:"retryCount"`
	LastError   string                 `json:"lastError,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	ProcessedAt *time.Time             `json:"processedAt,omitempty"`
}

// IsTerminal reports whether the event has reached a status from which it
// never transitions again.
func (e *Event) IsTerminal() bool {
	return e.Status == EventStatusCompleted || e.Status == EventStatusFailed
}

// PayloadContent extracts the source content every payload minimally carries.
func (e *Event) PayloadContent() string {
	if e.Payload == nil {
		return ""
	}
	if v, ok := e.Payload["content"].(string); ok {
		return v
	}
	return ""
}

// TriggerType extracts the manual-trigger discriminator from the payload,
// used only for EventTypeManualTrigger events.
func (e *Event) TriggerType() string {
	if e.Payload == nil {
		return ""
	}
	if v, ok := e.Payload["triggerType"].(string); ok {
		return v
	}
	return ""
}

// NewCellEditPayload builds the payload for a user_cell_edit / robot_cell_update event.
func NewCellEditPayload(content string) map[string]interface{} {
	return map[string]interface{}{"content": content}
}

// NewManualTriggerPayload builds the payload for a manual_trigger event.
func NewManualTriggerPayload(triggerType string, parameters map[string]interface{}) map[string]interface{} {
	payload := map[string]interface{}{"triggerType": triggerType}
	for k, v := range parameters {
		payload[k] = v
	}
	return payload
}
