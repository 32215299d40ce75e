package dispatcher

import (
	"regexp"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/sheetfill/engine/pkg/models"
)

// academicSignalWords is the closed vocabulary that marks content as
// academic in intent.
var academicSignalWords = []string{
	"research", "paper", "study", "journal", "article", "academic",
	"scholar", "citation", "doi", "arxiv", "pubmed", "peer-reviewed",
}

var (
	academicPrefixRe = regexp.MustCompile(`(?i)^(research:|find papers|literature review)`)
	searchQueryRe    = regexp.MustCompile(`(?i)^(search:|find:|query:|what is|who is|where is|when is|how to)`)
	urlRe            = regexp.MustCompile(`https?://\S+`)
)

// isAcademicSignal reports whether content matches the academic-signal
// heuristic: contains a closed-vocabulary keyword or an academic prefix.
func isAcademicSignal(content string) bool {
	if academicPrefixRe.MatchString(content) {
		return true
	}
	lower := strings.ToLower(content)
	for _, w := range academicSignalWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// isSearchQuery reports whether content matches the search-query heuristic:
// a recognized prefix, or a short string containing '?'.
func isSearchQuery(content string) bool {
	if searchQueryRe.MatchString(content) {
		return true
	}
	return strings.Contains(content, "?") && len(content) < 200
}

// containsURL reports whether content contains an http(s) URL.
func containsURL(content string) bool {
	return urlRe.MatchString(content)
}

// selectionEnv is the expr evaluation environment for operator-selection
// predicates: regex/keyword feature extraction happens in Go, then the
// priority order between features is expressed declaratively.
type selectionEnv struct {
	IsScientific     bool
	IsAcademicSignal bool
	IsSearchQuery    bool
	ContainsURL      bool
}

// selectionRule pairs a priority-ordered boolean predicate with the
// operator it selects when true. Rules are evaluated in order; the first
// match wins.
type selectionRule struct {
	operator  models.OperatorType
	predicate string
}

var selectionRules = []selectionRule{
	{models.OperatorAcademicSearch, "IsScientific && IsSearchQuery"},
	{models.OperatorAcademicSearch, "IsAcademicSignal"},
	{models.OperatorGoogleSearch, "IsSearchQuery"},
	{models.OperatorURLContext, "ContainsURL"},
}

// conditionCache compiles and caches selectionRules' predicates. The rule
// set is fixed and small, so a plain map (no LRU eviction) suffices.
var (
	conditionCacheMu sync.Mutex
	conditionCache   = map[string]*vm.Program{}
)

func compileCondition(predicate string) (*vm.Program, error) {
	conditionCacheMu.Lock()
	defer conditionCacheMu.Unlock()

	if program, ok := conditionCache[predicate]; ok {
		return program, nil
	}
	program, err := expr.Compile(predicate, expr.Env(selectionEnv{}), expr.AsBool())
	if err != nil {
		return nil, err
	}
	conditionCache[predicate] = program
	return program, nil
}

// evalCondition compiles (or reuses the cached compilation of) predicate
// and runs it against env. A compile or eval error is treated as false: a
// malformed rule must never pick an operator, only fail to match one.
func evalCondition(predicate string, env selectionEnv) bool {
	program, err := compileCondition(predicate)
	if err != nil {
		return false
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	matched, _ := out.(bool)
	return matched
}

// SelectOperator picks an operator for target in priority order: explicit
// column configuration first, then the selectionRules predicates in order.
// target is the column about to be filled; content is the triggering
// event's source content (or, for manual_trigger events, the empty string —
// those are resolved by triggerType before this is reached).
func SelectOperator(target *models.Column, templateType models.TemplateType, content string) models.OperatorType {
	if target.OperatorType != "" {
		return target.OperatorType
	}

	env := selectionEnv{
		IsScientific:     templateType == models.TemplateTypeScientific,
		IsAcademicSignal: isAcademicSignal(content),
		IsSearchQuery:    isSearchQuery(content),
		ContainsURL:      containsURL(content),
	}
	for _, rule := range selectionRules {
		if evalCondition(rule.predicate, env) {
			return rule.operator
		}
	}
	return models.OperatorStructuredOutput
}

// SelectForManualTrigger maps a manual_trigger payload's triggerType
// directly to an operator, falling back to structured_output for unknown
// triggers.
func SelectForManualTrigger(triggerType string) models.OperatorType {
	switch models.OperatorType(triggerType) {
	case models.OperatorGoogleSearch, models.OperatorURLContext, models.OperatorStructuredOutput,
		models.OperatorFunctionCalling, models.OperatorSimilarityExpand, models.OperatorAcademicSearch:
		return models.OperatorType(triggerType)
	default:
		return models.OperatorStructuredOutput
	}
}
