package operator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sheetfill/engine/pkg/models"
)

// FunctionDeclaration describes one callable function offered to the model,
// matching the availableFunctions input field's shape.
type FunctionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// FunctionCall is one call the model decided to make.
type FunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// FunctionCallingClient is the vendor boundary for function_calling: given a
// prompt and the declared functions, it returns the model's decision about
// which (if any) to call. It never executes anything itself.
type FunctionCallingClient interface {
	Decide(ctx context.Context, prompt string, functions []FunctionDeclaration, toolConfig map[string]interface{}) (calls []FunctionCall, response string, err error)
}

// FunctionCallingOperator implements the function_calling operator: in
// {prompt, availableFunctions, toolConfig?} → out {functionCalls, response?,
// requiresExecution}. It must never execute a call itself; execution is an
// external concern the dispatcher never invokes.
type FunctionCallingOperator struct {
	BaseOperator
	client FunctionCallingClient
}

// NewFunctionCallingOperator creates a function_calling operator.
func NewFunctionCallingOperator(client FunctionCallingClient) *FunctionCallingOperator {
	return &FunctionCallingOperator{client: client}
}

func (o *FunctionCallingOperator) Operate(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	prompt, _ := input["prompt"].(string)
	if prompt == "" {
		return nil, models.NewPipelineError(models.ErrorKindValidation, fmt.Errorf("function_calling: prompt is required"))
	}

	functions, err := decodeDeclarations(input["availableFunctions"])
	if err != nil {
		return nil, models.NewPipelineError(models.ErrorKindValidation, fmt.Errorf("function_calling: %w", err))
	}

	toolConfig, _ := input["toolConfig"].(map[string]interface{})

	calls, response, err := o.client.Decide(ctx, prompt, functions, toolConfig)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrorKindTransientOperator, fmt.Errorf("function_calling: %w", err))
	}

	out := []map[string]interface{}{}
	for _, c := range calls {
		out = append(out, map[string]interface{}{"name": c.Name, "args": c.Args})
	}

	return map[string]interface{}{
		"functionCalls":     out,
		"response":          response,
		"requiresExecution": len(out) > 0,
	}, nil
}

func decodeDeclarations(raw interface{}) ([]FunctionDeclaration, error) {
	if raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []FunctionDeclaration:
		return v, nil
	case []map[string]interface{}:
		declarations := make([]FunctionDeclaration, 0, len(v))
		for _, m := range v {
			var d FunctionDeclaration
			encoded, err := json.Marshal(m)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(encoded, &d); err != nil {
				return nil, err
			}
			declarations = append(declarations, d)
		}
		return declarations, nil
	default:
		return nil, fmt.Errorf("availableFunctions has unsupported type %T", raw)
	}
}
