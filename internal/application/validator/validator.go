package validator

import (
	"strings"

	"github.com/sheetfill/engine/pkg/models"
)

// Validator runs the per-dataType rule plus the cross-cutting checks
// (required, length bounds, relevance) against a candidate cell value.
type Validator struct {
	lowConfidenceThreshold float64
	blockedHosts           []string
}

// New creates a Validator. lowConfidenceThreshold is the confidence below
// which the dispatcher triggers a retry (
// validator.lowConfidenceThreshold, default 0.5).
func New(lowConfidenceThreshold float64, blockedHosts []string) *Validator {
	return &Validator{lowConfidenceThreshold: lowConfidenceThreshold, blockedHosts: blockedHosts}
}

// Validate checks content against column's rules and returns a Result.
// content should already have passed wrapper sanitization; this function
// only ever lowers confidence or, on a hard failure, sets Valid to false —
// it never itself rejects a write.
func (v *Validator) Validate(content string, column *models.Column) *Result {
	sanitized, result := applyTypeRule(column.DataType, content, v.blockedHosts)
	result.Sanitized = sanitized

	if column.Required && strings.TrimSpace(sanitized) == "" {
		result.addHard("required", "column is required but content is empty")
	}

	if column.MaxLength > 0 && len(sanitized) > column.MaxLength {
		result.addWarning("maxLength", "content exceeds configured maxLength", "")
		sanitized = sanitized[:column.MaxLength]
		result.Sanitized = sanitized
	}
	if column.MinLength > 0 && len(sanitized) < column.MinLength {
		result.addWarning("minLength", "content is shorter than configured minLength", "provide more detail")
		result.lowerConfidence(0.8)
	}

	if score := relevanceScore(column.Title, sanitized); score < 0.3 {
		result.addWarning("relevance", "content has low keyword overlap with the column title", "")
		result.lowerConfidence(0.8)
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}

	return result
}

// relevanceScore is the fraction of column-title tokens that also appear
// (case-insensitively) in content.
func relevanceScore(title, content string) float64 {
	titleTokens := tokenize(title)
	if len(titleTokens) == 0 {
		return 1.0
	}
	contentSet := make(map[string]bool)
	for _, t := range tokenize(content) {
		contentSet[t] = true
	}
	matches := 0
	for _, t := range titleTokens {
		if contentSet[t] {
			matches++
		}
	}
	return float64(matches) / float64(len(titleTokens))
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

// NeedsRetry reports whether result is invalid or below the configured
// confidence threshold
func (v *Validator) NeedsRetry(result *Result) bool {
	return !result.Valid || result.Confidence < v.lowConfidenceThreshold
}
