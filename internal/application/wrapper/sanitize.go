package wrapper

import (
	"encoding/json"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sheetfill/engine/pkg/models"
)

// unicodeNormalizer canonicalizes Unicode form (NFC) and strips control
// characters an operator might leak into its output (stray BOMs, zero-width
// joins), ahead of the quote/whitespace passes that follow.
var unicodeNormalizer = transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.C)))

// normalizeUnicode runs content through unicodeNormalizer, passing it back
// unchanged if the transform itself fails on malformed input.
func normalizeUnicode(content string) string {
	out, _, err := transform.String(unicodeNormalizer, content)
	if err != nil {
		return content
	}
	return out
}

// sentinels are null-ish strings an operator might return in place of real
// content; writing any of them verbatim would poison the cell.
var sentinels = map[string]bool{
	"null":      true,
	"undefined": true,
	"{}":        true,
	"[]":        true,
}

// Sanitize applies, in order: Unicode normalization, repeated
// quote-stripping, redirect-host rejection, URL normalization, whitespace
// trim, sentinel rejection, all-null-JSON-object rejection, and truncation
// to maxLength. A redirect URL or sentinel value returns a
// models.PipelineError of kind ErrorKindRejectedWrite; the caller must not
// write the cell or enqueue a successor for such a result.
func Sanitize(content string, blockedHosts []string, maxLength int) (string, error) {
	content = normalizeUnicode(content)
	content = stripQuotes(content)

	if isKnownRedirectHost(content, blockedHosts) {
		return "", models.NewPipelineError(models.ErrorKindRejectedWrite, errRejectedRedirect)
	}

	content = normalizeURL(content)
	content = strings.TrimSpace(content)

	lower := strings.ToLower(content)
	if sentinels[lower] || content == "" {
		return "", models.NewPipelineError(models.ErrorKindRejectedWrite, errRejectedEmpty)
	}

	if isAllNullJSONObject(content) {
		return "", models.NewPipelineError(models.ErrorKindRejectedWrite, errRejectedAllNull)
	}

	if maxLength > 0 && len(content) > maxLength {
		content = content[:maxLength]
	}

	return content, nil
}

// stripQuotes repeatedly removes a matching pair of leading/trailing quote
// characters (", ', `) until none remain.
func stripQuotes(s string) string {
	for {
		trimmed := strings.TrimSpace(s)
		if len(trimmed) < 2 {
			return trimmed
		}
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = trimmed[1 : len(trimmed)-1]
			continue
		}
		return trimmed
	}
}

// normalizeURL re-serializes content if it parses as an absolute http(s)
// URL, canonicalizing escaping; non-URL content passes through unchanged.
func normalizeURL(content string) string {
	trimmed := strings.TrimSpace(content)
	parsed, err := url.Parse(trimmed)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return content
	}
	return parsed.String()
}

func isAllNullJSONObject(content string) bool {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err != nil || len(obj) == 0 {
		return false
	}
	for _, v := range obj {
		if v != nil {
			return false
		}
	}
	return true
}

var (
	errRejectedRedirect = rejectedWriteError("sanitization rejected a redirect-host url")
	errRejectedEmpty    = rejectedWriteError("sanitization rejected empty or sentinel content")
	errRejectedAllNull  = rejectedWriteError("sanitization rejected an all-null JSON object")
)

type rejectedWriteError string

func (e rejectedWriteError) Error() string { return string(e) }
