package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sheetfill/engine/pkg/models"
)

func TestSelectOperator_ExplicitColumnConfigWins(t *testing.T) {
	target := &models.Column{OperatorType: models.OperatorFunctionCalling}
	got := SelectOperator(target, models.TemplateTypeGeneric, "search: anything")
	assert.Equal(t, models.OperatorFunctionCalling, got)
}

func TestSelectOperator_ScientificAndSearchQuery(t *testing.T) {
	target := &models.Column{}
	got := SelectOperator(target, models.TemplateTypeScientific, "what is CRISPR?")
	assert.Equal(t, models.OperatorAcademicSearch, got)
}

func TestSelectOperator_AcademicSignal(t *testing.T) {
	target := &models.Column{}
	got := SelectOperator(target, models.TemplateTypeGeneric, "recent peer-reviewed research on this topic")
	assert.Equal(t, models.OperatorAcademicSearch, got)
}

func TestSelectOperator_SearchQuery(t *testing.T) {
	target := &models.Column{}
	got := SelectOperator(target, models.TemplateTypeGeneric, "search: best coffee shops")
	assert.Equal(t, models.OperatorGoogleSearch, got)
}

func TestSelectOperator_ContainsURL(t *testing.T) {
	target := &models.Column{}
	got := SelectOperator(target, models.TemplateTypeGeneric, "see https://example.com/about")
	assert.Equal(t, models.OperatorURLContext, got)
}

func TestSelectOperator_FallsBackToStructuredOutput(t *testing.T) {
	target := &models.Column{}
	got := SelectOperator(target, models.TemplateTypeGeneric, "Acme Corporation")
	assert.Equal(t, models.OperatorStructuredOutput, got)
}

func TestSelectForManualTrigger(t *testing.T) {
	assert.Equal(t, models.OperatorGoogleSearch, SelectForManualTrigger("google_search"))
	assert.Equal(t, models.OperatorStructuredOutput, SelectForManualTrigger("not_a_real_operator"))
}

func TestIsAcademicSignal(t *testing.T) {
	assert.True(t, isAcademicSignal("research: quantum computing"))
	assert.True(t, isAcademicSignal("a recent arxiv preprint"))
	assert.False(t, isAcademicSignal("Acme Corp homepage"))
}

func TestIsSearchQuery(t *testing.T) {
	assert.True(t, isSearchQuery("who is the CEO?"))
	assert.True(t, isSearchQuery("search: pizza places"))
	assert.False(t, isSearchQuery("a plain declarative sentence with no query marker"))
}

func TestContainsURL(t *testing.T) {
	assert.True(t, containsURL("visit https://acme.com today"))
	assert.False(t, containsURL("no links here"))
}
