// Package wrapper implements the column-aware wrapper of:
// everything around an operator call that is not the call itself — prompt
// construction, result extraction, sanitization, validated write-through,
// and successor enqueue.
package wrapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sheetfill/engine/internal/application/validator"
	"github.com/sheetfill/engine/pkg/models"
)

// scientificFocusBlock is the fixed block appended for scientific-template
// sheets
const scientificFocusBlock = `SCIENTIFIC FOCUS:
- Prefer peer-reviewed sources over general web results.
- Prefer recent publications over older ones when both are available.
- Prefer a direct PDF link over a landing page when citing a source.`

// BuildContextualPrompt assembles the deterministic prompt string described
// in: GOAL, scientific focus (if applicable), COLUMN
// STRUCTURE, FORMAT REQUIREMENTS, COMPATIBILITY NOTES, and TASK sections.
func BuildContextualPrompt(ctx *models.SheetContext, target *models.Column) string {
	var b strings.Builder

	if ctx.SystemPrompt != "" {
		fmt.Fprintf(&b, "GOAL:\n%s\n\n", ctx.SystemPrompt)
	}

	if ctx.TemplateType == models.TemplateTypeScientific {
		b.WriteString(scientificFocusBlock)
		b.WriteString("\n\n")
	}

	b.WriteString("COLUMN STRUCTURE:\n")
	for _, col := range models.SortedByPosition(ctx.Columns) {
		marker := "  "
		if col.Position == target.Position {
			marker = "→ "
		}
		value := ctx.RowData[col.Position]
		if value == "" {
			fmt.Fprintf(&b, "%s[%d] %s\n", marker, col.Position, col.Title)
		} else {
			fmt.Fprintf(&b, "%s[%d] %s: %s\n", marker, col.Position, col.Title, value)
		}
	}
	b.WriteString("\n")

	b.WriteString("FORMAT REQUIREMENTS:\n")
	b.WriteString(formatRequirements(target))
	b.WriteString("\n")

	if note := validator.CompatibilityWarning(target.OperatorType, target.DataType); note != "" {
		fmt.Fprintf(&b, "COMPATIBILITY NOTES:\n%s\n\n", note)
	}

	fmt.Fprintf(&b, "TASK:\nFill %q based on the data in this row.", target.Title)

	return b.String()
}

// formatRequirements describes the target column's dataType and optional
// maxLength/minLength/examples constraints.
func formatRequirements(column *models.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- data type: %s\n", column.DataType)
	if column.MaxLength > 0 {
		fmt.Fprintf(&b, "- max length: %s\n", strconv.Itoa(column.MaxLength))
	}
	if column.MinLength > 0 {
		fmt.Fprintf(&b, "- min length: %s\n", strconv.Itoa(column.MinLength))
	}
	if len(column.Examples) > 0 {
		fmt.Fprintf(&b, "- examples: %s\n", strings.Join(column.Examples, "; "))
	}
	return b.String()
}
