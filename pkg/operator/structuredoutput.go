package operator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/sheetfill/engine/pkg/models"
)

// StructuredOutputOperator implements the structured_output operator: in
// {rawData, outputSchema, prompt?} → out {structuredData, confidence,
// rawResponse?}. outputSchema, when supplied, is a gojq filter expression
// evaluated against the candidate structured data; a filter that produces
// no truthy result is a schema violation.
type StructuredOutputOperator struct {
	BaseOperator
	client CompletionClient
}

// NewStructuredOutputOperator creates a structured_output operator.
func NewStructuredOutputOperator(client CompletionClient) *StructuredOutputOperator {
	return &StructuredOutputOperator{client: client}
}

func (o *StructuredOutputOperator) Operate(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	raw := input["rawData"]
	if raw == nil {
		return nil, models.NewPipelineError(models.ErrorKindValidation, fmt.Errorf("structured_output: rawData is required"))
	}

	var structured map[string]interface{}
	switch v := raw.(type) {
	case string:
		response, err := o.client.Complete(ctx, buildStructuredPrompt(v, input["prompt"], input["outputSchema"]))
		if err != nil {
			return nil, models.NewPipelineError(models.ErrorKindTransientOperator, fmt.Errorf("structured_output: %w", err))
		}
		if err := json.Unmarshal([]byte(response), &structured); err != nil {
			return nil, models.NewPipelineError(models.ErrorKindSchema, fmt.Errorf("structured_output: response is not valid JSON: %w", err))
		}
	case map[string]interface{}:
		structured = v
	default:
		return nil, models.NewPipelineError(models.ErrorKindValidation, fmt.Errorf("structured_output: rawData must be a string or object"))
	}

	if schemaExpr, ok := input["outputSchema"].(string); ok && schemaExpr != "" {
		if err := checkSchema(schemaExpr, structured); err != nil {
			return nil, models.NewPipelineError(models.ErrorKindSchema, fmt.Errorf("structured_output: %w", err))
		}
	}

	return map[string]interface{}{
		"structuredData": structured,
		"confidence":     0.9,
	}, nil
}

func buildStructuredPrompt(rawData string, prompt, schema interface{}) string {
	p := fmt.Sprintf("Convert the following data into JSON:\n%s", rawData)
	if s, ok := prompt.(string); ok && s != "" {
		p = s + "\n\n" + p
	}
	if s, ok := schema.(string); ok && s != "" {
		p += fmt.Sprintf("\n\nThe result must satisfy this jq filter: %s", s)
	}
	return p
}

// checkSchema evaluates a gojq filter against data and fails unless the
// filter yields at least one truthy, non-error result.
func checkSchema(filterExpr string, data map[string]interface{}) error {
	query, err := gojq.Parse(filterExpr)
	if err != nil {
		return fmt.Errorf("invalid schema filter: %w", err)
	}

	iter := query.Run(data)
	for {
		v, ok := iter.Next()
		if !ok {
			return fmt.Errorf("schema filter produced no result")
		}
		if err, ok := v.(error); ok {
			return fmt.Errorf("schema filter error: %w", err)
		}
		if isTruthy(v) {
			return nil
		}
		return fmt.Errorf("schema filter returned falsy result: %v", v)
	}
}

func isTruthy(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case nil:
		return false
	default:
		return true
	}
}
