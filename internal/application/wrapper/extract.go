package wrapper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sheetfill/engine/pkg/models"
)

// ExtractContent pulls a single content string out of an operator's
// structured output, per a fixed per-operator extraction table.
func ExtractContent(operatorType models.OperatorType, output map[string]interface{}, blockedHosts []string) string {
	switch operatorType {
	case models.OperatorGoogleSearch:
		return extractSearchResult(output, blockedHosts)
	case models.OperatorAcademicSearch:
		return extractAcademicResult(output)
	case models.OperatorURLContext:
		return extractURLContext(output)
	case models.OperatorStructuredOutput:
		return extractStructuredOutput(output)
	case models.OperatorSimilarityExpand:
		return extractSimilarTerms(output, 5)
	case models.OperatorFunctionCalling:
		return extractFunctionCalling(output)
	default:
		return ""
	}
}

func extractSearchResult(output map[string]interface{}, blockedHosts []string) string {
	results, _ := output["results"].([]map[string]interface{})
	var fallbackTitle string
	for _, r := range results {
		url, _ := r["url"].(string)
		if isRedirect, _ := r["isRedirect"].(bool); isRedirect {
			continue
		}
		if isKnownRedirectHost(url, blockedHosts) {
			continue
		}
		if url != "" {
			return url
		}
		if fallbackTitle == "" {
			fallbackTitle, _ = r["title"].(string)
		}
	}
	if len(results) > 0 {
		if title, ok := results[0]["title"].(string); ok {
			return title
		}
	}
	return fallbackTitle
}

func extractAcademicResult(output map[string]interface{}) string {
	academic, _ := output["academicResults"].([]map[string]interface{})
	if len(academic) == 0 {
		return ""
	}
	for _, r := range academic {
		if direct, _ := r["isPdfDirect"].(bool); direct {
			return urlOrTitle(r)
		}
		if url, ok := r["url"].(string); ok && strings.Contains(strings.ToLower(url), ".pdf") {
			return url
		}
	}
	for _, r := range academic {
		if hi, _ := r["isHighImpact"].(bool); hi {
			return urlOrTitle(r)
		}
	}
	return urlOrTitle(academic[0])
}

func urlOrTitle(r map[string]interface{}) string {
	if url, ok := r["url"].(string); ok && url != "" {
		return url
	}
	title, _ := r["title"].(string)
	return title
}

func extractURLContext(output map[string]interface{}) string {
	if summary, ok := output["summary"].(string); ok && summary != "" {
		return summary
	}
	enriched, _ := output["enrichedData"].([]map[string]interface{})
	for _, e := range enriched {
		if content, ok := e["content"].(string); ok && content != "" {
			return content
		}
	}
	return ""
}

func extractStructuredOutput(output map[string]interface{}) string {
	structured, _ := output["structuredData"].(map[string]interface{})
	if len(structured) == 1 {
		for _, v := range structured {
			return fmt.Sprintf("%v", v)
		}
	}
	encoded, err := json.Marshal(structured)
	if err != nil {
		return ""
	}
	return string(encoded)
}

func extractSimilarTerms(output map[string]interface{}, n int) string {
	terms, _ := output["similarTerms"].([]string)
	if len(terms) > n {
		terms = terms[:n]
	}
	return strings.Join(terms, ", ")
}

func extractFunctionCalling(output map[string]interface{}) string {
	calls, _ := output["functionCalls"].([]map[string]interface{})
	if len(calls) == 0 {
		if response, ok := output["response"].(string); ok {
			return response
		}
		return ""
	}
	encoded, err := json.Marshal(calls)
	if err != nil {
		return ""
	}
	return string(encoded)
}

func isKnownRedirectHost(url string, blockedHosts []string) bool {
	for _, host := range blockedHosts {
		if strings.Contains(url, host) {
			return true
		}
	}
	return false
}
