package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dusk-indust/guardian/internal/metrics"
	"github.com/dusk-indust/guardian/internal/rules"
)

func vuln(sev rules.Severity) rules.Finding {
	return rules.Finding{Category: rules.CategoryVulnerability, Severity: sev}
}

func TestSecurityScore(t *testing.T) {
	assert.Equal(t, 100, SecurityScore(nil))

	assert.Equal(t, 75, SecurityScore([]rules.Finding{vuln(rules.SeverityCritical)}))
	assert.Equal(t, 85, SecurityScore([]rules.Finding{vuln(rules.SeverityHigh)}))
	assert.Equal(t, 92, SecurityScore([]rules.Finding{vuln(rules.SeverityMedium)}))
	assert.Equal(t, 97, SecurityScore([]rules.Finding{vuln(rules.SeverityLow)}))
	assert.Equal(t, 100, SecurityScore([]rules.Finding{vuln(rules.SeverityInfo)}))

	assert.Equal(t, 52, SecurityScore([]rules.Finding{
		vuln(rules.SeverityCritical), vuln(rules.SeverityHigh), vuln(rules.SeverityMedium),
	}))
}

func TestSecurityScore_FlooredAtZero(t *testing.T) {
	var many []rules.Finding
	for i := 0; i < 10; i++ {
		many = append(many, vuln(rules.SeverityCritical))
	}
	assert.Equal(t, 0, SecurityScore(many))
}

func TestSecurityScore_IgnoresBugPatterns(t *testing.T) {
	findings := []rules.Finding{
		{Category: rules.CategoryBugPattern, Severity: rules.SeverityCritical},
		{Category: rules.CategoryBugPattern, Severity: rules.SeverityHigh},
	}
	assert.Equal(t, 100, SecurityScore(findings), "only vulnerability findings weigh in")
}

func TestSecurityScore_Deterministic(t *testing.T) {
	findings := []rules.Finding{vuln(rules.SeverityHigh), vuln(rules.SeverityMedium)}
	first := SecurityScore(findings)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, SecurityScore(findings))
	}
}

func TestMaintainabilityGrade(t *testing.T) {
	mi := func(v float64) metrics.FileMetrics {
		return metrics.FileMetrics{MaintainabilityIndex: v}
	}

	assert.Equal(t, GradeA, MaintainabilityGrade(nil), "no files means nothing to penalize")
	assert.Equal(t, GradeA, MaintainabilityGrade([]metrics.FileMetrics{mi(85)}))
	assert.Equal(t, GradeB, MaintainabilityGrade([]metrics.FileMetrics{mi(84.9)}))
	assert.Equal(t, GradeB, MaintainabilityGrade([]metrics.FileMetrics{mi(70)}))
	assert.Equal(t, GradeC, MaintainabilityGrade([]metrics.FileMetrics{mi(55)}))
	assert.Equal(t, GradeD, MaintainabilityGrade([]metrics.FileMetrics{mi(40)}))
	assert.Equal(t, GradeF, MaintainabilityGrade([]metrics.FileMetrics{mi(39.9)}))

	// the grade uses the average across files
	assert.Equal(t, GradeB, MaintainabilityGrade([]metrics.FileMetrics{mi(100), mi(60)}))
}

func TestQualityGrade(t *testing.T) {
	tests := []struct {
		security        int
		maintainability Grade
		want            Grade
	}{
		{100, GradeA, GradeA},
		{90, GradeA, GradeA},
		{89, GradeA, GradeB}, // security band B drags the grade down
		{100, GradeC, GradeC},
		{50, GradeA, GradeD},
		{10, GradeB, GradeF},
		{75, GradeD, GradeD},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QualityGrade(tt.security, tt.maintainability),
			"security=%d maintainability=%s", tt.security, tt.maintainability)
	}
}
