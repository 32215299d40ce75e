package operator

import (
	"context"
	"fmt"

	"github.com/sheetfill/engine/pkg/models"
)

// AcademicSearchOperator implements the academic_search operator:
// in {topic, researchField?, yearRange?, minCitations?,
// includeReviews?, authorFilter?, maxResults?} → out {results,
// academicResults, totalPdfsFound, averageCitations?}.
type AcademicSearchOperator struct {
	BaseOperator
	client AcademicClient
}

// NewAcademicSearchOperator creates an academic_search operator.
func NewAcademicSearchOperator(client AcademicClient) *AcademicSearchOperator {
	return &AcademicSearchOperator{client: client}
}

func (o *AcademicSearchOperator) Operate(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	topic, _ := input["topic"].(string)
	if topic == "" {
		return nil, models.NewPipelineError(models.ErrorKindValidation, fmt.Errorf("academic_search: topic is required"))
	}

	opts := AcademicSearchOptions{
		ResearchField: stringField(input, "researchField"),
		YearRange:     stringField(input, "yearRange"),
		AuthorFilter:  stringField(input, "authorFilter"),
		MaxResults:    5,
	}
	if v, ok := input["minCitations"].(int); ok {
		opts.MinCitations = v
	}
	if v, ok := input["includeReviews"].(bool); ok {
		opts.IncludeReviews = v
	}
	if v, ok := input["maxResults"].(int); ok && v > 0 {
		opts.MaxResults = v
	}

	results, err := o.client.Search(ctx, topic, opts)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrorKindTransientOperator, fmt.Errorf("academic_search: %w", err))
	}

	academicResults := make([]map[string]interface{}, 0, len(results))
	plainResults := make([]map[string]interface{}, 0, len(results))
	pdfCount := 0
	citationSum := 0
	for _, r := range results {
		if r.IsPdfDirect {
			pdfCount++
		}
		citationSum += r.EstimatedCitations

		plainResults = append(plainResults, map[string]interface{}{
			"title":   r.Title,
			"url":     r.URL,
			"snippet": r.Snippet,
		})
		academicResults = append(academicResults, map[string]interface{}{
			"title":              r.Title,
			"url":                r.URL,
			"snippet":            r.Snippet,
			"estimatedCitations": r.EstimatedCitations,
			"publicationYear":    r.PublicationYear,
			"journal":            r.Journal,
			"isPdfDirect":        r.IsPdfDirect,
			"isHighImpact":       r.IsHighImpact,
			"academicSource":     r.AcademicSource,
		})
	}

	out := map[string]interface{}{
		"results":          plainResults,
		"academicResults":  academicResults,
		"totalPdfsFound":   pdfCount,
	}
	if len(results) > 0 {
		out["averageCitations"] = float64(citationSum) / float64(len(results))
	}
	return out, nil
}

func stringField(input map[string]interface{}, key string) string {
	s, _ := input[key].(string)
	return s
}
