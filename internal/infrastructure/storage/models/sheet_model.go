// Package models holds the bun-backed persistence models for the fill
// engine's six conceptual tables.
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SheetModel is the bun row for the sheets table. Sheets are owned by an
// external layer; the engine only reads templateType/systemPrompt from it.
type SheetModel struct {
	bun.BaseModel `bun:"table:sheets,alias:sh"`

	ID           string    `bun:"id,pk,type:uuid,default:uuid_generate_v4()"`
	TemplateType string    `bun:"template_type,notnull,default:'generic'"`
	SystemPrompt string    `bun:"system_prompt"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

var _ bun.BeforeAppendModelHook = (*SheetModel)(nil)

func (s *SheetModel) BeforeAppendModel(_ interface{}, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		now := time.Now()
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.UpdatedAt = now
	case *bun.UpdateQuery:
		s.UpdatedAt = time.Now()
	}
	return nil
}

// ColumnModel is the bun row for the columns table.
type ColumnModel struct {
	bun.BaseModel `bun:"table:columns,alias:col"`

	ID             string   `bun:"id,pk,type:uuid,default:uuid_generate_v4()"`
	SheetID        string   `bun:"sheet_id,notnull"`
	Position       int      `bun:"position,notnull"`
	Title          string   `bun:"title,notnull"`
	DataType       string   `bun:"data_type,notnull"`
	OperatorType   string   `bun:"operator_type"`
	Prompt         string   `bun:"prompt"`
	OperatorConfig JSONBMap `bun:"operator_config,type:jsonb"`
	MaxLength      int      `bun:"max_length"`
	MinLength      int      `bun:"min_length"`
	Examples       StringArray `bun:"examples,type:jsonb"`
	Description    string   `bun:"description"`
	Required       bool     `bun:"required,notnull,default:false"`
}

// CellModel is the bun row for the cells table, upserted on
// (sheet_id, row_index, col_index).
type CellModel struct {
	bun.BaseModel `bun:"table:cells,alias:cl"`

	SheetID   string    `bun:"sheet_id,pk"`
	RowIndex  int       `bun:"row_index,pk"`
	ColIndex  int       `bun:"col_index,pk"`
	Content   string    `bun:"content,notnull,default:''"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
