package operator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetfill/engine/pkg/models"
)

type fakeSearchClient struct{}

func (fakeSearchClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, []string, error) {
	return nil, nil, nil
}

type fakeCompletionClient struct{}

func (fakeCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

type fakeFunctionCallingClient struct{}

func (fakeFunctionCallingClient) Decide(ctx context.Context, prompt string, functions []FunctionDeclaration, toolConfig map[string]interface{}) ([]FunctionCall, string, error) {
	return nil, "", nil
}

type fakeAcademicClient struct{}

func (fakeAcademicClient) Search(ctx context.Context, topic string, opts AcademicSearchOptions) ([]AcademicResult, error) {
	return nil, nil
}

func TestRegisterAll_OnlyURLContextByDefault(t *testing.T) {
	registry, err := RegisterAll(Clients{BlockedHosts: []string{"vertexaisearch.cloud.google.com"}, URLContextTimeout: 5 * time.Second})
	require.NoError(t, err)

	assert.True(t, registry.Has(models.OperatorURLContext))
	assert.False(t, registry.Has(models.OperatorGoogleSearch))
	assert.False(t, registry.Has(models.OperatorStructuredOutput))
	assert.False(t, registry.Has(models.OperatorSimilarityExpand))
	assert.False(t, registry.Has(models.OperatorFunctionCalling))
	assert.False(t, registry.Has(models.OperatorAcademicSearch))
}

func TestRegisterAll_RegistersEachClientItReceives(t *testing.T) {
	registry, err := RegisterAll(Clients{
		Search:         fakeSearchClient{},
		Academic:       fakeAcademicClient{},
		Completion:     fakeCompletionClient{},
		FunctionCaller: fakeFunctionCallingClient{},
	})
	require.NoError(t, err)

	for _, opType := range []models.OperatorType{
		models.OperatorURLContext,
		models.OperatorGoogleSearch,
		models.OperatorAcademicSearch,
		models.OperatorStructuredOutput,
		models.OperatorSimilarityExpand,
		models.OperatorFunctionCalling,
	} {
		assert.True(t, registry.Has(opType), "expected %s to be registered", opType)
	}
}

func TestRegistry_GetUnregisteredReturnsNotFound(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Get(models.OperatorGoogleSearch)
	assert.ErrorIs(t, err, models.ErrOperatorNotFound)
}

func TestRegistry_RegisterRejectsEmptyTypeOrNilOperator(t *testing.T) {
	registry := NewRegistry()
	assert.Error(t, registry.Register("", NewURLContextOperator(0)))
	assert.Error(t, registry.Register(models.OperatorURLContext, nil))
}
