package models

// SheetContext is built fresh at dispatch time for every event; it is never
// cached across events, because row state changes between them.
type SheetContext struct {
	SheetID            string
	TemplateType       TemplateType
	SystemPrompt       string
	Columns            []*Column // ordered by position
	RowIndex           int
	CurrentColumnIndex int // the source column of the triggering event
	RowData            map[int]string
}

// TargetColumnIndex is the column the operator is about to fill.
func (sc *SheetContext) TargetColumnIndex() int {
	return sc.CurrentColumnIndex + 1
}

// TargetColumn returns the Column at TargetColumnIndex, or nil if out of range.
func (sc *SheetContext) TargetColumn() *Column {
	return sc.ColumnAt(sc.TargetColumnIndex())
}

// ColumnAt returns the Column at the given position, or nil if none exists.
func (sc *SheetContext) ColumnAt(position int) *Column {
	for _, c := range sc.Columns {
		if c.Position == position {
			return c
		}
	}
	return nil
}

// IsLastColumn reports whether position is the final column of the sheet.
func (sc *SheetContext) IsLastColumn(position int) bool {
	return position >= len(sc.Columns)-1
}

// SourceContent returns the accumulated content of the source column, the
// one whose presence triggered this event.
func (sc *SheetContext) SourceContent() string {
	return sc.RowData[sc.CurrentColumnIndex]
}
