package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/guardian/internal/lang"
	"github.com/dusk-indust/guardian/internal/metrics"
	"github.com/dusk-indust/guardian/internal/rules"
)

// FeatureVector is the fixed input contract for advisors: the normalized
// models, the aggregated findings, and the computed metrics of a run. A
// learned ranking strategy consumes exactly this shape.
type FeatureVector struct {
	Models   map[string]*lang.Model
	Findings []rules.Finding
	Metrics  []metrics.FileMetrics
}

// Suggestion is one ranked improvement recommendation. The rationale
// references the findings and metrics it was derived from.
type Suggestion struct {
	Title     string   `json:"title"`
	Rationale string   `json:"rationale"`
	RuleIDs   []string `json:"ruleIds,omitempty"`
	Priority  int      `json:"priority"`
}

// Advisor ranks improvement suggestions. The pipeline depends only on
// this contract, so the heuristic implementation below can be swapped
// for a learned model without touching anything else.
type Advisor interface {
	Suggest(fv FeatureVector) []Suggestion
}

// HeuristicAdvisor derives suggestions from fixed rules of thumb over
// the feature vector.
type HeuristicAdvisor struct{}

func (HeuristicAdvisor) Suggest(fv FeatureVector) []Suggestion {
	var out []Suggestion

	if s := suggestSecurity(fv.Findings); s != nil {
		out = append(out, *s)
	}
	if s := suggestComplexity(fv.Metrics); s != nil {
		out = append(out, *s)
	}
	if s := suggestErrorHandling(fv.Findings); s != nil {
		out = append(out, *s)
	}
	if s := suggestDocumentation(fv.Metrics); s != nil {
		out = append(out, *s)
	}
	if s := suggestRiskyImports(fv.Models); s != nil {
		out = append(out, *s)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

func suggestSecurity(findings []rules.Finding) *Suggestion {
	var ruleIDs []string
	seen := map[string]bool{}
	count := 0
	for _, f := range findings {
		if f.Category != rules.CategoryVulnerability || f.Severity < rules.SeverityHigh {
			continue
		}
		count++
		if !seen[f.RuleID] {
			seen[f.RuleID] = true
			ruleIDs = append(ruleIDs, f.RuleID)
		}
	}
	if count == 0 {
		return nil
	}
	sort.Strings(ruleIDs)
	return &Suggestion{
		Title:     "Address high-severity security findings first",
		Rationale: fmt.Sprintf("%d HIGH or CRITICAL vulnerability findings (%s) dominate the security score", count, strings.Join(ruleIDs, ", ")),
		RuleIDs:   ruleIDs,
		Priority:  1,
	}
}

func suggestComplexity(fileMetrics []metrics.FileMetrics) *Suggestion {
	var worst *metrics.FunctionMetrics
	var worstPath string
	for i := range fileMetrics {
		for j := range fileMetrics[i].Functions {
			fn := &fileMetrics[i].Functions[j]
			if fn.Cyclomatic > 10 && (worst == nil || fn.Cyclomatic > worst.Cyclomatic) {
				worst = fn
				worstPath = fileMetrics[i].Path
			}
		}
	}
	if worst == nil {
		return nil
	}
	return &Suggestion{
		Title:     "Refactor the most complex function",
		Rationale: fmt.Sprintf("%s (%s:%d) has cyclomatic complexity %d; decision-heavy functions hide bugs and resist testing", worst.Name, worstPath, worst.StartLine, worst.Cyclomatic),
		Priority:  2,
	}
}

func suggestErrorHandling(findings []rules.Finding) *Suggestion {
	count := 0
	for _, f := range findings {
		if f.RuleID == "empty-catch" {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return &Suggestion{
		Title:     "Stop swallowing exceptions",
		Rationale: fmt.Sprintf("%d empty exception handlers hide failures that should surface", count),
		RuleIDs:   []string{"empty-catch"},
		Priority:  3,
	}
}

// riskyImports are modules whose presence warrants a review regardless
// of how they are called.
var riskyImports = map[string]string{
	"pickle":    "deserializes arbitrary objects",
	"marshal":   "deserializes arbitrary objects",
	"telnetlib": "plaintext remote access",
	"ftplib":    "plaintext file transfer",
	"md5":       "broken hash function",
}

func suggestRiskyImports(models map[string]*lang.Model) *Suggestion {
	var notes []string
	paths := make([]string, 0, len(models))
	for p := range models {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		for _, imp := range models[path].Imports {
			name := imp
			if idx := strings.LastIndex(name, "."); idx >= 0 {
				name = name[idx+1:]
			}
			if reason, ok := riskyImports[name]; ok {
				notes = append(notes, fmt.Sprintf("%s imports %s (%s)", path, imp, reason))
			}
		}
	}
	if len(notes) == 0 {
		return nil
	}
	return &Suggestion{
		Title:     "Review risky module imports",
		Rationale: strings.Join(notes, "; "),
		Priority:  5,
	}
}

func suggestDocumentation(fileMetrics []metrics.FileMetrics) *Suggestion {
	var code, comment int
	for _, fm := range fileMetrics {
		code += fm.Lines.Code
		comment += fm.Lines.Comment
	}
	if code < 200 || float64(comment) >= 0.05*float64(code) {
		return nil
	}
	return &Suggestion{
		Title:     "Raise the comment ratio",
		Rationale: fmt.Sprintf("%d comment lines against %d code lines; the maintainability index penalizes undocumented code", comment, code),
		Priority:  4,
	}
}
