package dispatcher

import (
	"regexp"

	"github.com/sheetfill/engine/pkg/models"
)

// BuildOperatorInput assembles the operator-specific input map for
// operatorType, carrying the wrapper's contextual (or
// retry) prompt in whichever field that operator treats as prompt-like
// (query, extractionPrompt, prompt, concept, topic), and filling the
// remaining fields from the target column's OperatorConfig and the
// triggering event's source content.
func BuildOperatorInput(operatorType models.OperatorType, prompt, sourceContent string, config map[string]interface{}) map[string]interface{} {
	switch operatorType {
	case models.OperatorGoogleSearch:
		return map[string]interface{}{
			"query":      prompt,
			"maxResults": configInt(config, "maxResults", 5),
		}

	case models.OperatorURLContext:
		urls := extractURLs(sourceContent)
		if len(urls) == 0 {
			urls = extractURLs(prompt)
		}
		return map[string]interface{}{
			"urls":             urls,
			"extractionPrompt": prompt,
		}

	case models.OperatorStructuredOutput:
		return map[string]interface{}{
			"rawData":      sourceContent,
			"outputSchema": config["outputSchema"],
			"prompt":       prompt,
		}

	case models.OperatorFunctionCalling:
		return map[string]interface{}{
			"prompt":             prompt,
			"availableFunctions": config["availableFunctions"],
			"toolConfig":         config["toolConfig"],
		}

	case models.OperatorSimilarityExpand:
		input := map[string]interface{}{
			"concept":       prompt,
			"expansionType": configString(config, "expansionType", "related"),
			"maxResults":    configInt(config, "maxResults", 5),
		}
		if domain := configString(config, "domain", ""); domain != "" {
			input["domain"] = domain
		}
		if c := configString(config, "context", ""); c != "" {
			input["context"] = c
		}
		return input

	case models.OperatorAcademicSearch:
		return map[string]interface{}{
			"topic":          prompt,
			"researchField":  configString(config, "researchField", ""),
			"yearRange":      configString(config, "yearRange", ""),
			"minCitations":   configInt(config, "minCitations", 0),
			"includeReviews": configBool(config, "includeReviews", false),
			"authorFilter":   configString(config, "authorFilter", ""),
			"maxResults":     configInt(config, "maxResults", 5),
		}

	default:
		return map[string]interface{}{"prompt": prompt}
	}
}

// WithRetryPrompt returns a copy of input with its prompt-like field
// replaced by retryPrompt step 7.
func WithRetryPrompt(operatorType models.OperatorType, input map[string]interface{}, retryPrompt string) map[string]interface{} {
	out := make(map[string]interface{}, len(input))
	for k, v := range input {
		out[k] = v
	}
	switch operatorType {
	case models.OperatorGoogleSearch:
		out["query"] = retryPrompt
	case models.OperatorURLContext:
		out["extractionPrompt"] = retryPrompt
	case models.OperatorStructuredOutput, models.OperatorFunctionCalling:
		out["prompt"] = retryPrompt
	case models.OperatorSimilarityExpand:
		out["concept"] = retryPrompt
	case models.OperatorAcademicSearch:
		out["topic"] = retryPrompt
	}
	return out
}

var urlExtractRe = regexp.MustCompile(`https?://\S+`)

func extractURLs(content string) []string {
	return urlExtractRe.FindAllString(content, -1)
}

func configString(config map[string]interface{}, key, def string) string {
	if v, ok := config[key].(string); ok {
		return v
	}
	return def
}

func configInt(config map[string]interface{}, key string, def int) int {
	if v, ok := config[key].(int); ok {
		return v
	}
	if v, ok := config[key].(float64); ok {
		return int(v)
	}
	return def
}

func configBool(config map[string]interface{}, key string, def bool) bool {
	if v, ok := config[key].(bool); ok {
		return v
	}
	return def
}
