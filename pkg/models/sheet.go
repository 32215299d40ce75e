package models

import (
	"fmt"
	"sort"
	"time"
)

// TemplateType biases operator selection and prompt construction for a sheet.
type TemplateType string

const (
	TemplateTypeGeneric    TemplateType = "generic"
	TemplateTypeMarketing  TemplateType = "marketing"
	TemplateTypeScientific TemplateType = "scientific"
	TemplateTypeLucky      TemplateType = "lucky"
	TemplateTypeNull       TemplateType = "null"
)

// Sheet is the top-level container of Columns and Cells. It is created and
// owned by an external layer (template CRUD, ownership checks); the engine
// treats it as immutable except for the row data it fills.
type Sheet struct {
	ID           string       `json:"id"`
	TemplateType TemplateType `json:"templateType"`
	SystemPrompt string       `json:"systemPrompt,omitempty"`
	Columns      []*Column    `json:"columns,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// DataType constrains how a column's content is validated and formatted.
type DataType string

const (
	DataTypeShortText DataType = "short_text"
	DataTypeLongText  DataType = "long_text"
	DataTypeURL       DataType = "url"
	DataTypeEmail     DataType = "email"
	DataTypeNumber    DataType = "number"
	DataTypeCurrency  DataType = "currency"
	DataTypeDate      DataType = "date"
	DataTypeBoolean   DataType = "boolean"
	DataTypeList      DataType = "list"
	DataTypePerson    DataType = "person"
	DataTypeCompany   DataType = "company"
	DataTypeJSON      DataType = "json"
)

// OperatorType names one of the six concrete operators a column may declare.
type OperatorType string

const (
	OperatorGoogleSearch       OperatorType = "google_search"
	OperatorURLContext         OperatorType = "url_context"
	OperatorStructuredOutput   OperatorType = "structured_output"
	OperatorFunctionCalling    OperatorType = "function_calling"
	OperatorSimilarityExpand   OperatorType = "similarity_expansion"
	OperatorAcademicSearch     OperatorType = "academic_search"
)

// Column declares how cell values in its position are produced. Position 0,
// the seed column, never declares an operator.
type Column struct {
	ID             string                 `json:"id"`
	SheetID        string                 `json:"sheetId"`
	Position       int                    `json:"position"`
	Title          string                 `json:"title"`
	DataType       DataType               `json:"dataType"`
	OperatorType   OperatorType           `json:"operatorType,omitempty"`
	Prompt         string                 `json:"prompt,omitempty"`
	OperatorConfig map[string]interface{} `json:"operatorConfig,omitempty"`
	MaxLength      int                    `json:"maxLength,omitempty"`
	MinLength      int                    `json:"minLength,omitempty"`
	Examples       []string               `json:"examples,omitempty"`
	Description    string                 `json:"description,omitempty"`
	Required       bool                   `json:"required,omitempty"`
}

// IsSeed reports whether this is the column-0 seed column.
func (c *Column) IsSeed() bool { return c.Position == 0 }

// Validate checks a single column's invariants in isolation (not
// cross-column gap/duplicate checks, which belong to ValidateColumnPositions).
func (c *Column) Validate() error {
	if c.ID == "" {
		return &ValidationError{Field: "id", Message: "column ID is required"}
	}
	if c.Title == "" {
		return &ValidationError{Field: "title", Message: "column title is required"}
	}
	if c.Position < 0 {
		return &ValidationError{Field: "position", Message: "position must be >= 0"}
	}
	if c.Position == 0 && c.OperatorType != "" {
		return ErrSeedColumnHasOperator
	}
	return nil
}

// ValidateColumnPositions enforces invariant 1 of the testable properties:
// the set of positions is exactly {0, ..., N-1}, dense, with no gaps.
func ValidateColumnPositions(columns []*Column) error {
	positions := make([]int, len(columns))
	seen := make(map[int]bool, len(columns))
	for i, c := range columns {
		if seen[c.Position] {
			return fmt.Errorf("%w: duplicate position %d", ErrInvalidColumnPositions, c.Position)
		}
		seen[c.Position] = true
		positions[i] = c.Position
	}
	sort.Ints(positions)
	for i, p := range positions {
		if p != i {
			return fmt.Errorf("%w: expected position %d, found %d", ErrInvalidColumnPositions, i, p)
		}
	}
	return nil
}

// SortedByPosition returns a copy of columns ordered by ascending position.
func SortedByPosition(columns []*Column) []*Column {
	sorted := make([]*Column, len(columns))
	copy(sorted, columns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	return sorted
}

// Cell holds the content at (sheetId, rowIndex, colIndex). A Cell's absence
// from storage is distinct from it holding an empty string; it exists only
// once a write has occurred.
type Cell struct {
	SheetID   string    `json:"sheetId"`
	RowIndex  int       `json:"rowIndex"`
	ColIndex  int       `json:"colIndex"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CellKey uniquely addresses a cell within a sheet.
type CellKey struct {
	SheetID  string
	RowIndex int
	ColIndex int
}

// Key returns the natural key identifying this cell.
func (c *Cell) Key() CellKey {
	return CellKey{SheetID: c.SheetID, RowIndex: c.RowIndex, ColIndex: c.ColIndex}
}
