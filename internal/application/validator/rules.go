package validator

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/sheetfill/engine/pkg/models"
)

// jsonIdentityQuery is ".", compiled once and reused to walk a decoded JSON
// value the same way pkg/operator's structured_output schema check does,
// rather than hand-rolling a recursive map walk.
var jsonIdentityQuery = gojq.MustParse(".")

// validJSON reports whether content decodes as JSON and gojq can walk the
// decoded value without error.
func validJSON(content string) bool {
	var v interface{}
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return false
	}
	iter := jsonIdentityQuery.Run(v)
	for {
		out, ok := iter.Next()
		if !ok {
			return true
		}
		if err, ok := out.(error); ok {
			_ = err
			return false
		}
	}
}

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	currencyRe = regexp.MustCompile(`^[$€£¥₹]?\s?-?[\d,]+(\.\d+)?$`)
	dateISORe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateLongRe = regexp.MustCompile(`^[A-Z][a-z]+ \d{1,2},? \d{4}$`)
	dateSlashRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
	personRe   = regexp.MustCompile(`^[A-Z][a-zA-Z'\-]*(\s+[A-Z][a-zA-Z'\-]*)+$`)
	companyKeywords = []string{"inc", "inc.", "llc", "ltd", "corp", "corp.", "co.", "company", "gmbh", "s.a.", "plc"}
	boolTrue  = map[string]bool{"yes": true, "true": true, "1": true, "y": true}
	boolFalse = map[string]bool{"no": true, "false": true, "0": true, "n": true}
)

// applyTypeRule runs the per-dataType rule from against
// content, mutating result in place and returning the (possibly
// auto-sanitized) content to carry forward.
func applyTypeRule(dataType models.DataType, content string, blockedHosts []string) (string, *Result) {
	result := &Result{Valid: true, Confidence: 1.0}

	switch dataType {
	case models.DataTypeShortText:
		if len(content) > 100 {
			result.addWarning("length", "short_text recommended length is <= 100 characters", "")
			content = content[:97] + "..."
		}
		if strings.ContainsAny(content, ":-") && len(content) > 60 {
			result.addWarning("format", "short_text should avoid colon/dash explanations", "keep the value terse, without an inline explanation")
		}

	case models.DataTypeLongText:
		if len(content) < 10 {
			result.addWarning("length", "long_text recommended minimum length is 10 characters", "expand the answer with more detail")
			result.lowerConfidence(0.7)
		}

	case models.DataTypeURL:
		lower := strings.ToLower(content)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			if strings.Contains(content, ".") {
				content = "https://" + content
				result.addWarning("format", "url missing protocol", "")
			} else {
				result.addHard("format", "url must start with http:// or https://")
			}
		}
		for _, host := range blockedHosts {
			if strings.Contains(content, host) {
				result.addHard("redirect", "url is a known redirect/tracker host")
			}
		}

	case models.DataTypeEmail:
		lower := strings.ToLower(content)
		if !emailRe.MatchString(lower) {
			result.addHard("format", "value is not a valid email address")
		}
		content = lower

	case models.DataTypeNumber:
		trimmed := strings.ReplaceAll(strings.TrimSpace(content), ",", "")
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			result.addHard("format", "value is not a parseable number")
		}

	case models.DataTypeCurrency:
		if !currencyRe.MatchString(strings.TrimSpace(content)) {
			result.addWarning("format", "value does not look like a currency amount", "")
			result.lowerConfidence(0.8)
		}

	case models.DataTypeDate:
		trimmed := strings.TrimSpace(content)
		if !dateISORe.MatchString(trimmed) && !dateLongRe.MatchString(trimmed) && !dateSlashRe.MatchString(trimmed) {
			result.addWarning("format", "date does not match YYYY-MM-DD, \"Month D, YYYY\", or M/D/YYYY", "")
			result.lowerConfidence(0.7)
		}

	case models.DataTypeBoolean:
		lower := strings.ToLower(strings.TrimSpace(content))
		switch {
		case boolTrue[lower]:
			content = "Yes"
		case boolFalse[lower]:
			content = "No"
		default:
			result.addWarning("format", "value is not a recognizable boolean", "use Yes/No, true/false, or 0/1")
			result.lowerConfidence(0.6)
		}

	case models.DataTypeList:
		if !strings.ContainsAny(content, ",;\n") {
			result.addWarning("format", "list should contain comma, semicolon, or newline separated items", "")
			result.lowerConfidence(0.8)
		} else {
			parts := splitList(content)
			content = strings.Join(parts, ", ")
		}

	case models.DataTypePerson:
		if !personRe.MatchString(strings.TrimSpace(content)) {
			result.addWarning("format", "value does not look like a full name (>= 2 capitalized words)", "")
			result.lowerConfidence(0.7)
		}

	case models.DataTypeCompany:
		lower := strings.ToLower(content)
		hasKeyword := false
		for _, kw := range companyKeywords {
			if strings.Contains(lower, kw) {
				hasKeyword = true
				break
			}
		}
		if !hasKeyword && (content == "" || content[0] < 'A' || content[0] > 'Z') {
			result.addWarning("format", "value does not look like a company name", "")
			result.lowerConfidence(0.8)
		}

	case models.DataTypeJSON:
		if !validJSON(content) {
			result.addHard("format", "value is not valid JSON")
		}
	}

	return content, result
}

func splitList(content string) []string {
	replaced := strings.NewReplacer(";", ",", "\n", ",").Replace(content)
	rawParts := strings.Split(replaced, ",")
	parts := make([]string, 0, len(rawParts))
	for _, p := range rawParts {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
