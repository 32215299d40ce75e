package operator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sheetfill/engine/pkg/models"
)

// similarityExpansionPrompt templates the completion request. The model is
// expected to return a JSON object matching similarityExpansionResult.
const similarityExpansionPrompt = `Given the concept %q, generate related terms of type %q.
%s
Respond as JSON with keys: similarTerms, synonyms, relatedConcepts, searchTerms, categories, reasoning.`

type similarityExpansionResult struct {
	SimilarTerms    []string `json:"similarTerms"`
	Synonyms        []string `json:"synonyms"`
	RelatedConcepts []string `json:"relatedConcepts"`
	SearchTerms     []string `json:"searchTerms"`
	Categories      []string `json:"categories"`
	Reasoning       string   `json:"reasoning"`
}

// SimilarityExpansionOperator implements the similarity_expansion operator:
// in {concept, expansionType, maxResults?, domain?, context?} → out
// {originalConcept, similarTerms, synonyms?, relatedConcepts?, searchTerms?,
// categories?, confidence, reasoning?}.
type SimilarityExpansionOperator struct {
	BaseOperator
	client CompletionClient
}

// NewSimilarityExpansionOperator creates a similarity_expansion operator.
func NewSimilarityExpansionOperator(client CompletionClient) *SimilarityExpansionOperator {
	return &SimilarityExpansionOperator{client: client}
}

func (o *SimilarityExpansionOperator) Operate(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	concept, _ := input["concept"].(string)
	if concept == "" {
		return nil, models.NewPipelineError(models.ErrorKindValidation, fmt.Errorf("similarity_expansion: concept is required"))
	}
	expansionType, _ := input["expansionType"].(string)
	if expansionType == "" {
		expansionType = "related"
	}

	var context string
	if domain, ok := input["domain"].(string); ok && domain != "" {
		context += fmt.Sprintf("Domain: %s. ", domain)
	}
	if ctxVal, ok := input["context"].(string); ok && ctxVal != "" {
		context += fmt.Sprintf("Context: %s.", ctxVal)
	}

	response, err := o.client.Complete(ctx, fmt.Sprintf(similarityExpansionPrompt, concept, expansionType, context))
	if err != nil {
		return nil, models.NewPipelineError(models.ErrorKindTransientOperator, fmt.Errorf("similarity_expansion: %w", err))
	}

	var result similarityExpansionResult
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return nil, models.NewPipelineError(models.ErrorKindSchema, fmt.Errorf("similarity_expansion: response is not valid JSON: %w", err))
	}

	maxResults := 5
	if v, ok := input["maxResults"].(int); ok && v > 0 {
		maxResults = v
	}
	terms := result.SimilarTerms
	if len(terms) > maxResults {
		terms = terms[:maxResults]
	}

	confidence := 0.8
	if len(terms) == 0 {
		confidence = 0.2
	}

	out := map[string]interface{}{
		"originalConcept": concept,
		"similarTerms":    terms,
		"confidence":      confidence,
	}
	if len(result.Synonyms) > 0 {
		out["synonyms"] = result.Synonyms
	}
	if len(result.RelatedConcepts) > 0 {
		out["relatedConcepts"] = result.RelatedConcepts
	}
	if len(result.SearchTerms) > 0 {
		out["searchTerms"] = result.SearchTerms
	}
	if len(result.Categories) > 0 {
		out["categories"] = result.Categories
	}
	if result.Reasoning != "" {
		out["reasoning"] = result.Reasoning
	}
	return out, nil
}
