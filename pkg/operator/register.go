package operator

import (
	"time"

	"github.com/sheetfill/engine/pkg/models"
)

// Clients bundles the vendor-boundary implementations that concrete
// operators are built from. Any field left nil is simply not registered by
// RegisterAll; callers wiring only a subset of operators can leave the rest
// zero-valued.
type Clients struct {
	Search         SearchClient
	Academic       AcademicClient
	Completion     CompletionClient
	FunctionCaller FunctionCallingClient

	// BlockedHosts lists vendor redirect/tracker hosts that google_search
	// must flag rather than invent or silently pass through.
	BlockedHosts []string
	// URLContextTimeout bounds each url_context fetch. Zero uses the
	// operator's own default.
	URLContextTimeout time.Duration
}

// RegisterAll constructs and registers every operator for which a backing
// client was supplied in clients, returning the populated registry.
func RegisterAll(clients Clients) (*Registry, error) {
	registry := NewRegistry()

	type entry struct {
		opType models.OperatorType
		op     Operator
	}

	var entries []entry
	if clients.Search != nil {
		entries = append(entries, entry{models.OperatorGoogleSearch, NewGoogleSearchOperator(clients.Search, clients.BlockedHosts)})
	}
	entries = append(entries, entry{models.OperatorURLContext, NewURLContextOperator(clients.URLContextTimeout)})
	if clients.Completion != nil {
		entries = append(entries, entry{models.OperatorStructuredOutput, NewStructuredOutputOperator(clients.Completion)})
		entries = append(entries, entry{models.OperatorSimilarityExpand, NewSimilarityExpansionOperator(clients.Completion)})
	}
	if clients.FunctionCaller != nil {
		entries = append(entries, entry{models.OperatorFunctionCalling, NewFunctionCallingOperator(clients.FunctionCaller)})
	}
	if clients.Academic != nil {
		entries = append(entries, entry{models.OperatorAcademicSearch, NewAcademicSearchOperator(clients.Academic)})
	}

	for _, e := range entries {
		if err := registry.Register(e.opType, e.op); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
