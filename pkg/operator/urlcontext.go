package operator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/sheetfill/engine/pkg/models"
)

// maxURLContextURLs bounds how many URLs a single url_context call fetches.
const maxURLContextURLs = 5

// URLContextOperator implements the url_context operator: in
// {urls, extractionPrompt?} → out {enrichedData, summary?}. It fetches and
// extracts readable content itself rather than delegating to a vendor
// grounding call, since goquery/go-readability are real libraries available
// to do so.
type URLContextOperator struct {
	BaseOperator
	httpClient *http.Client
}

// NewURLContextOperator creates a url_context operator with a bounded-time
// HTTP client.
func NewURLContextOperator(timeout time.Duration) *URLContextOperator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &URLContextOperator{httpClient: &http.Client{Timeout: timeout}}
}

func (o *URLContextOperator) Operate(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	rawURLs, _ := input["urls"].([]string)
	if len(rawURLs) == 0 {
		return nil, models.NewPipelineError(models.ErrorKindValidation, fmt.Errorf("url_context: urls is required"))
	}
	if len(rawURLs) > maxURLContextURLs {
		rawURLs = rawURLs[:maxURLContextURLs]
	}

	enriched := make([]map[string]interface{}, 0, len(rawURLs))
	var summaries []string
	for _, raw := range rawURLs {
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return nil, models.NewPipelineError(models.ErrorKindValidation, fmt.Errorf("url_context: rejected non-http(s) url %q", raw))
		}

		content, err := o.extract(ctx, raw)
		if err != nil {
			return nil, models.NewPipelineError(models.ErrorKindTransientOperator, fmt.Errorf("url_context: fetch %s: %w", raw, err))
		}

		enriched = append(enriched, map[string]interface{}{
			"url":     raw,
			"content": content,
			"metadata": map[string]interface{}{
				"host": parsed.Host,
			},
		})
		if content != "" {
			summaries = append(summaries, truncate(content, 280))
		}
	}

	out := map[string]interface{}{"enrichedData": enriched}
	if len(summaries) > 0 {
		out["summary"] = strings.Join(summaries, "\n\n")
	}
	return out, nil
}

// extract fetches rawURL and returns its readable text content, falling
// back to a goquery stripped-tag extraction if readability finds nothing.
func (o *URLContextOperator) extract(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(resp.Body, parsedURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return strings.TrimSpace(article.TextContent), nil
	}

	// readability consumed the body; re-fetch for the goquery fallback.
	req2, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp2, err := o.httpClient.Do(req2)
	if err != nil {
		return "", err
	}
	defer resp2.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp2.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("body").Text()), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
