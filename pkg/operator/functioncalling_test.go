package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetfill/engine/pkg/models"
)

type stubFunctionCallingClient struct {
	calls    []FunctionCall
	response string
	err      error
}

func (s stubFunctionCallingClient) Decide(ctx context.Context, prompt string, functions []FunctionDeclaration, toolConfig map[string]interface{}) ([]FunctionCall, string, error) {
	return s.calls, s.response, s.err
}

func TestFunctionCallingOperator_ReturnsDecidedCalls(t *testing.T) {
	client := stubFunctionCallingClient{calls: []FunctionCall{{Name: "lookup_revenue", Args: map[string]interface{}{"company": "Acme"}}}}
	op := NewFunctionCallingOperator(client)

	out, err := op.Operate(context.Background(), map[string]interface{}{
		"prompt":             "look up revenue",
		"availableFunctions": []map[string]interface{}{{"name": "lookup_revenue"}},
	})

	require.NoError(t, err)
	calls := out["functionCalls"].([]map[string]interface{})
	require.Len(t, calls, 1)
	assert.Equal(t, "lookup_revenue", calls[0]["name"])
	assert.Equal(t, true, out["requiresExecution"])
}

func TestFunctionCallingOperator_FallsBackToResponse(t *testing.T) {
	client := stubFunctionCallingClient{response: "no function matched, here's a direct answer"}
	op := NewFunctionCallingOperator(client)

	out, err := op.Operate(context.Background(), map[string]interface{}{"prompt": "anything"})

	require.NoError(t, err)
	assert.Equal(t, "no function matched, here's a direct answer", out["response"])
	assert.Equal(t, false, out["requiresExecution"])
}

func TestFunctionCallingOperator_RejectsEmptyPrompt(t *testing.T) {
	op := NewFunctionCallingOperator(stubFunctionCallingClient{})
	_, err := op.Operate(context.Background(), map[string]interface{}{"prompt": ""})
	require.Error(t, err)
	var pe *models.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, models.ErrorKindValidation, pe.Kind)
}

func TestFunctionCallingOperator_PropagatesClientError(t *testing.T) {
	op := NewFunctionCallingOperator(stubFunctionCallingClient{err: assert.AnError})
	_, err := op.Operate(context.Background(), map[string]interface{}{"prompt": "anything"})
	require.Error(t, err)
	var pe *models.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, models.ErrorKindTransientOperator, pe.Kind)
}
