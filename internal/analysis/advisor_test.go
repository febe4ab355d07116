package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/guardian/internal/lang"
	"github.com/dusk-indust/guardian/internal/metrics"
	"github.com/dusk-indust/guardian/internal/rules"
)

func TestHeuristicAdvisor_Empty(t *testing.T) {
	assert.Empty(t, HeuristicAdvisor{}.Suggest(FeatureVector{}))
}

func TestHeuristicAdvisor_Security(t *testing.T) {
	fv := FeatureVector{Findings: []rules.Finding{
		{RuleID: "sql-injection", Category: rules.CategoryVulnerability, Severity: rules.SeverityCritical},
		{RuleID: "xss", Category: rules.CategoryVulnerability, Severity: rules.SeverityHigh},
		{RuleID: "weak-crypto", Category: rules.CategoryVulnerability, Severity: rules.SeverityMedium},
	}}

	out := HeuristicAdvisor{}.Suggest(fv)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Priority)
	assert.Equal(t, []string{"sql-injection", "xss"}, out[0].RuleIDs,
		"only HIGH and above make the security suggestion")
	assert.Contains(t, out[0].Rationale, "2 HIGH or CRITICAL")
}

func TestHeuristicAdvisor_Complexity(t *testing.T) {
	fv := FeatureVector{Metrics: []metrics.FileMetrics{
		{Path: "a.py", Functions: []metrics.FunctionMetrics{
			{Name: "fine", StartLine: 1, Cyclomatic: 9},
			{Name: "worst", StartLine: 40, Cyclomatic: 17},
		}},
		{Path: "b.py", Functions: []metrics.FunctionMetrics{
			{Name: "bad", StartLine: 5, Cyclomatic: 12},
		}},
	}}

	out := HeuristicAdvisor{}.Suggest(fv)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Priority)
	assert.Contains(t, out[0].Rationale, "worst")
	assert.Contains(t, out[0].Rationale, "a.py:40")
}

func TestHeuristicAdvisor_ErrorHandling(t *testing.T) {
	fv := FeatureVector{Findings: []rules.Finding{
		{RuleID: "empty-catch", Category: rules.CategoryBugPattern, Severity: rules.SeverityMedium},
		{RuleID: "empty-catch", Category: rules.CategoryBugPattern, Severity: rules.SeverityMedium},
	}}

	out := HeuristicAdvisor{}.Suggest(fv)
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].Priority)
	assert.Contains(t, out[0].Rationale, "2 empty exception handlers")
}

func TestHeuristicAdvisor_Documentation(t *testing.T) {
	fv := FeatureVector{Metrics: []metrics.FileMetrics{
		{Lines: metrics.LineCounts{Code: 300, Comment: 2}},
	}}

	out := HeuristicAdvisor{}.Suggest(fv)
	require.Len(t, out, 1)
	assert.Equal(t, 4, out[0].Priority)

	// small or well-commented codebases get no documentation nag
	assert.Empty(t, HeuristicAdvisor{}.Suggest(FeatureVector{Metrics: []metrics.FileMetrics{
		{Lines: metrics.LineCounts{Code: 100, Comment: 0}},
	}}))
	assert.Empty(t, HeuristicAdvisor{}.Suggest(FeatureVector{Metrics: []metrics.FileMetrics{
		{Lines: metrics.LineCounts{Code: 300, Comment: 40}},
	}}))
}

func TestHeuristicAdvisor_RiskyImports(t *testing.T) {
	fv := FeatureVector{Models: map[string]*lang.Model{
		"b.py": {Imports: []string{"os", "pickle"}},
		"a.py": {Imports: []string{"hashlib", "telnetlib"}},
	}}

	out := HeuristicAdvisor{}.Suggest(fv)
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Priority)
	assert.Contains(t, out[0].Rationale, "a.py imports telnetlib")
	assert.Contains(t, out[0].Rationale, "b.py imports pickle")

	assert.Empty(t, HeuristicAdvisor{}.Suggest(FeatureVector{Models: map[string]*lang.Model{
		"a.py": {Imports: []string{"os", "json"}},
	}}))
}

func TestHeuristicAdvisor_PriorityOrder(t *testing.T) {
	fv := FeatureVector{
		Findings: []rules.Finding{
			{RuleID: "empty-catch", Category: rules.CategoryBugPattern, Severity: rules.SeverityMedium},
			{RuleID: "xss", Category: rules.CategoryVulnerability, Severity: rules.SeverityHigh},
		},
		Metrics: []metrics.FileMetrics{
			{Path: "a.py", Functions: []metrics.FunctionMetrics{{Name: "f", Cyclomatic: 20}}},
		},
	}

	out := HeuristicAdvisor{}.Suggest(fv)
	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].Priority, out[i].Priority, "suggestions are ranked")
	}
}
