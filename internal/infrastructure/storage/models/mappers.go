package models

import (
	"github.com/sheetfill/engine/pkg/models"
)

// ToDomainSheet converts a SheetModel row into the domain Sheet.
func ToDomainSheet(m *SheetModel, columns []*models.Column) *models.Sheet {
	return &models.Sheet{
		ID:           m.ID,
		TemplateType: models.TemplateType(m.TemplateType),
		SystemPrompt: m.SystemPrompt,
		Columns:      columns,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ToDomainColumn converts a ColumnModel row into the domain Column.
func ToDomainColumn(m *ColumnModel) *models.Column {
	return &models.Column{
		ID:             m.ID,
		SheetID:        m.SheetID,
		Position:       m.Position,
		Title:          m.Title,
		DataType:       models.DataType(m.DataType),
		OperatorType:   models.OperatorType(m.OperatorType),
		Prompt:         m.Prompt,
		OperatorConfig: map[string]any(m.OperatorConfig),
		MaxLength:      m.MaxLength,
		MinLength:      m.MinLength,
		Examples:       []string(m.Examples),
		Description:    m.Description,
		Required:       m.Required,
	}
}

// FromDomainColumn converts a domain Column into its storage row.
func FromDomainColumn(c *models.Column) *ColumnModel {
	return &ColumnModel{
		ID:             c.ID,
		SheetID:        c.SheetID,
		Position:       c.Position,
		Title:          c.Title,
		DataType:       string(c.DataType),
		OperatorType:   string(c.OperatorType),
		Prompt:         c.Prompt,
		OperatorConfig: JSONBMap(c.OperatorConfig),
		MaxLength:      c.MaxLength,
		MinLength:      c.MinLength,
		Examples:       StringArray(c.Examples),
		Description:    c.Description,
		Required:       c.Required,
	}
}

// ToDomainCell converts a CellModel row into the domain Cell.
func ToDomainCell(m *CellModel) *models.Cell {
	return &models.Cell{
		SheetID:   m.SheetID,
		RowIndex:  m.RowIndex,
		ColIndex:  m.ColIndex,
		Content:   m.Content,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainCell converts a domain Cell into its storage row.
func FromDomainCell(c *models.Cell) *CellModel {
	return &CellModel{
		SheetID:   c.SheetID,
		RowIndex:  c.RowIndex,
		ColIndex:  c.ColIndex,
		Content:   c.Content,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToDomainEvent converts an EventQueueModel row into the domain Event.
func ToDomainEvent(m *EventQueueModel) *models.Event {
	return &models.Event{
		ID:          m.ID,
		SheetID:     m.SheetID,
		RowIndex:    m.RowIndex,
		ColIndex:    m.ColIndex,
		EventType:   models.EventType(m.EventType),
		Payload:     map[string]any(m.Payload),
		Status:      models.EventStatus(m.Status),
		RetryCount:  m.RetryCount,
		LastError:   m.LastError,
		CreatedAt:   m.CreatedAt,
		ProcessedAt: m.ProcessedAt,
	}
}

// FromDomainEvent converts a domain Event into its storage row.
func FromDomainEvent(e *models.Event) *EventQueueModel {
	return &EventQueueModel{
		ID:          e.ID,
		SheetID:     e.SheetID,
		RowIndex:    e.RowIndex,
		ColIndex:    e.ColIndex,
		EventType:   string(e.EventType),
		Payload:     JSONBMap(e.Payload),
		Status:      string(e.Status),
		RetryCount:  e.RetryCount,
		LastError:   e.LastError,
		CreatedAt:   e.CreatedAt,
		ProcessedAt: e.ProcessedAt,
	}
}

// ToDomainStatus converts a CellProcessingStatusModel row into the domain type.
func ToDomainStatus(m *CellProcessingStatusModel) *models.CellProcessingStatus {
	var retryCount *int
	if m.RetryCount > 0 {
		rc := m.RetryCount
		retryCount = &rc
	}
	return &models.CellProcessingStatus{
		SheetID:       m.SheetID,
		RowIndex:      m.RowIndex,
		ColIndex:      m.ColIndex,
		Status:        models.CellStatus(m.Status),
		Operator:      m.Operator,
		StatusMessage: m.StatusMessage,
		RetryCount:    retryCount,
		LastError:     m.LastError,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomainStatus converts a domain CellProcessingStatus into its storage row.
func FromDomainStatus(s *models.CellProcessingStatus) *CellProcessingStatusModel {
	retryCount := 0
	if s.RetryCount != nil {
		retryCount = *s.RetryCount
	}
	return &CellProcessingStatusModel{
		SheetID:       s.SheetID,
		RowIndex:      s.RowIndex,
		ColIndex:      s.ColIndex,
		Status:        string(s.Status),
		Operator:      s.Operator,
		StatusMessage: s.StatusMessage,
		RetryCount:    retryCount,
		LastError:     s.LastError,
		UpdatedAt:     s.UpdatedAt,
	}
}

// ToDomainSheetUpdate converts a SheetUpdateModel row into the domain audit record.
func ToDomainSheetUpdate(m *SheetUpdateModel) *models.SheetUpdate {
	return &models.SheetUpdate{
		ID:         m.ID,
		SheetID:    m.SheetID,
		RowIndex:   m.RowIndex,
		ColIndex:   m.ColIndex,
		Content:    m.Content,
		UpdateType: models.SheetUpdateType(m.UpdateType),
		AppliedAt:  m.AppliedAt,
	}
}

// FromDomainSheetUpdate converts a domain SheetUpdate into its storage row.
func FromDomainSheetUpdate(s *models.SheetUpdate) *SheetUpdateModel {
	return &SheetUpdateModel{
		ID:         s.ID,
		SheetID:    s.SheetID,
		RowIndex:   s.RowIndex,
		ColIndex:   s.ColIndex,
		Content:    s.Content,
		UpdateType: string(s.UpdateType),
		AppliedAt:  s.AppliedAt,
	}
}
