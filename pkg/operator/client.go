package operator

import "context"

// SearchResult is one hit from a web search, shared between google_search
// and academic_search.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// SearchClient is the vendor boundary for google_search. Concrete vendor
// API shape, model choice, and grounding are intentionally not implemented
// here; callers inject a real implementation at wiring time.
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, []string, error)
}

// AcademicResult is one hit from an academic search, richer than SearchResult.
type AcademicResult struct {
	SearchResult
	EstimatedCitations int
	PublicationYear    int
	Journal            string
	IsPdfDirect        bool
	IsHighImpact       bool
	AcademicSource     string
}

// AcademicClient is the vendor boundary for academic_search.
type AcademicClient interface {
	Search(ctx context.Context, topic string, opts AcademicSearchOptions) ([]AcademicResult, error)
}

// AcademicSearchOptions carries the optional academic_search input fields.
type AcademicSearchOptions struct {
	ResearchField  string
	YearRange      string
	MinCitations   int
	IncludeReviews bool
	AuthorFilter   string
	MaxResults     int
}

// CompletionClient is the vendor boundary for structured_output,
// function_calling, and similarity_expansion, all of which ultimately ask a
// language model to produce text or JSON from a prompt. The concrete vendor
// call is out of scope; only the contract around it is implemented here.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
