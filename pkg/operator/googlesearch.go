package operator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sheetfill/engine/pkg/models"
)

// GoogleSearchOperator implements the google_search operator:
// in {query, maxResults} → out {results, webSearchQueries, timestamp}.
type GoogleSearchOperator struct {
	BaseOperator
	client        SearchClient
	blockedHosts  []string
}

// NewGoogleSearchOperator creates a google_search operator backed by client.
// blockedHosts are vendor redirect/tracker hosts to flag in results.
func NewGoogleSearchOperator(client SearchClient, blockedHosts []string) *GoogleSearchOperator {
	return &GoogleSearchOperator{client: client, blockedHosts: blockedHosts}
}

func (o *GoogleSearchOperator) Operate(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	query, _ := input["query"].(string)
	if query == "" {
		return nil, models.NewPipelineError(models.ErrorKindValidation, fmt.Errorf("google_search: query is required"))
	}
	maxResults := 5
	if v, ok := input["maxResults"].(int); ok && v > 0 {
		maxResults = v
	}

	results, queries, err := o.client.Search(ctx, query, maxResults)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrorKindTransientOperator, fmt.Errorf("google_search: %w", err))
	}

	out := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		out = append(out, map[string]interface{}{
			"title":      r.Title,
			"url":        r.URL,
			"snippet":    r.Snippet,
			"isRedirect": o.isRedirectHost(r.URL),
		})
	}

	return map[string]interface{}{
		"results":          out,
		"webSearchQueries": queries,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// isRedirectHost reports whether rawURL's host is a known vendor
// grounding/redirect host that must not be treated as a real destination.
func (o *GoogleSearchOperator) isRedirectHost(rawURL string) bool {
	for _, host := range o.blockedHosts {
		if strings.Contains(rawURL, host) {
			return true
		}
	}
	return false
}
