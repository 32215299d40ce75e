package validator

import (
	"fmt"
	"strings"

	"github.com/sheetfill/engine/pkg/models"
)

// GenerateImprovementPrompt builds the retry prompt of:
// a RETRY header listing issues and suggestions, then the column's
// dataType requirement, then maxLength/minLength/examples, then the
// original prompt verbatim. Used only when a retry is triggered.
func GenerateImprovementPrompt(originalPrompt string, column *models.Column, result *Result) string {
	var b strings.Builder

	b.WriteString("RETRY — the previous attempt did not meet requirements.\n")

	if len(result.Issues) > 0 {
		b.WriteString("ISSUES:\n")
		for _, issue := range result.Issues {
			fmt.Fprintf(&b, "- [%s] %s\n", issue.Severity, issue.Message)
		}
	}
	if len(result.Suggestions) > 0 {
		b.WriteString("SUGGESTIONS:\n")
		for _, s := range result.Suggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- data type: %s\n", column.DataType)
	if column.MaxLength > 0 {
		fmt.Fprintf(&b, "- max length: %d\n", column.MaxLength)
	}
	if column.MinLength > 0 {
		fmt.Fprintf(&b, "- min length: %d\n", column.MinLength)
	}
	if len(column.Examples) > 0 {
		fmt.Fprintf(&b, "- examples: %s\n", strings.Join(column.Examples, "; "))
	}

	b.WriteString("\n")
	b.WriteString(originalPrompt)

	return b.String()
}
