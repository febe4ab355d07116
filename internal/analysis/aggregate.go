package analysis

import (
	"sort"

	"github.com/dusk-indust/guardian/internal/metrics"
	"github.com/dusk-indust/guardian/internal/rules"
)

// Aggregator deduplicates and ranks findings and applies contextual
// severity escalation using per-function complexity.
type Aggregator struct {
	complexityThreshold int
	minSeverity         rules.Severity
}

// NewAggregator builds an aggregator. Findings below minSeverity are
// dropped from the final list.
func NewAggregator(complexityThreshold int, minSeverity rules.Severity) *Aggregator {
	if complexityThreshold <= 0 {
		complexityThreshold = 10
	}
	return &Aggregator{
		complexityThreshold: complexityThreshold,
		minSeverity:         minSeverity,
	}
}

// Aggregate produces the final ordered finding list. fileMetrics is
// keyed by path and supplies the complexity context for escalation.
func (a *Aggregator) Aggregate(findings []rules.Finding, fileMetrics map[string]*metrics.FileMetrics) []rules.Finding {
	deduped := dedupe(findings)

	out := make([]rules.Finding, 0, len(deduped))
	for _, f := range deduped {
		f = a.escalate(f, fileMetrics[f.Path])
		if f.Severity < a.minSeverity {
			continue
		}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		if out[i].StartLine != out[j].StartLine {
			return out[i].StartLine < out[j].StartLine
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}

// dedupe collapses findings of the same rule on the same file with
// overlapping line ranges, which happens when a rule's text and
// structural matchers double-fire on one construct. The higher
// confidence finding (structural over text) wins.
func dedupe(findings []rules.Finding) []rules.Finding {
	// highest confidence first, so a kept finding always beats the
	// overlapping ones examined after it
	ordered := make([]rules.Finding, len(findings))
	copy(ordered, findings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	type key struct {
		rule string
		path string
	}
	kept := map[key][]rules.Finding{}
	var out []rules.Finding

	for _, f := range ordered {
		k := key{rule: f.RuleID, path: f.Path}
		overlaps := false
		for _, existing := range kept[k] {
			if f.StartLine <= existing.EndLine && existing.StartLine <= f.EndLine {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		kept[k] = append(kept[k], f)
		out = append(out, f)
	}
	return out
}

// escalate raises a MEDIUM finding to HIGH when it sits inside a
// function whose cyclomatic complexity exceeds the threshold: high
// complexity compounds risk. Severities are never lowered.
func (a *Aggregator) escalate(f rules.Finding, fm *metrics.FileMetrics) rules.Finding {
	if f.Severity != rules.SeverityMedium || fm == nil {
		return f
	}
	fn := fm.FunctionAt(f.StartLine)
	if fn != nil && fn.Cyclomatic > a.complexityThreshold {
		f.Severity = rules.SeverityHigh
	}
	return f
}
