package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/guardian/internal/analysis"
	"github.com/dusk-indust/guardian/internal/lang"
	"github.com/dusk-indust/guardian/internal/metrics"
	"github.com/dusk-indust/guardian/internal/rules"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func sampleReport() *analysis.Report {
	finding := rules.Finding{
		RuleID:      "sql-injection",
		Category:    rules.CategoryVulnerability,
		Severity:    rules.SeverityCritical,
		Path:        "db.py",
		StartLine:   2,
		EndLine:     2,
		Snippet:     "cursor.execute",
		Description: "Query built by string concatenation or formatting reaches a query call",
		Confidence:  rules.ConfidenceStructural,
	}
	low := rules.Finding{
		RuleID:      "long-function",
		Category:    rules.CategoryBugPattern,
		Severity:    rules.SeverityLow,
		Path:        "db.py",
		StartLine:   1,
		EndLine:     60,
		Description: "Function exceeds the line-count limit",
		Confidence:  rules.ConfidenceStructural,
	}
	return &analysis.Report{
		Files: []analysis.FileReport{{
			Path:     "db.py",
			Language: lang.LangPython,
			Status:   analysis.StatusAnalyzed,
			Findings: []rules.Finding{finding, low},
			Metrics: metrics.FileMetrics{
				Path:                 "db.py",
				Lines:                metrics.LineCounts{Code: 50, Comment: 5, Blank: 5},
				MaintainabilityIndex: 90,
			},
		}},
		Findings: []rules.Finding{finding, low},
		Summary: analysis.Summary{
			FilesAnalyzed:      1,
			TotalFindings:      2,
			TotalLines:         60,
			FindingsBySeverity: map[string]int{"CRITICAL": 1, "LOW": 1},
		},
		SecurityScore:        75,
		MaintainabilityGrade: analysis.GradeA,
		QualityGrade:         analysis.GradeB,
		Suggestions: []analysis.Suggestion{{
			Title:     "Address high-severity security findings first",
			Rationale: "1 HIGH or CRITICAL vulnerability findings (sql-injection) dominate the security score",
			RuleIDs:   []string{"sql-injection"},
			Priority:  1,
		}},
	}
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.EqualValues(t, 75, decoded["securityScore"])
	assert.Equal(t, "A", decoded["maintainabilityGrade"])
	assert.Equal(t, "B", decoded["qualityGrade"])

	findings, ok := decoded["findings"].([]interface{})
	require.True(t, ok)
	require.Len(t, findings, 2)
	first := findings[0].(map[string]interface{})
	assert.Equal(t, "sql-injection", first["ruleId"])
	assert.Equal(t, "CRITICAL", first["severity"], "severities serialize by name")
}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "Code Analysis Report")
	assert.Contains(t, out, "Security score:        75/100")
	assert.Contains(t, out, "Maintainability grade: A")
	assert.Contains(t, out, "Quality grade:         B")
	assert.Contains(t, out, "--- db.py (analyzed)")
	assert.Contains(t, out, "[CRITICAL] sql-injection L2: cursor.execute")
	assert.Contains(t, out, "[LOW] long-function L1")
	assert.Contains(t, out, "Suggestions")
	assert.Contains(t, out, "Address high-severity security findings first")
}

// ---------------------------------------------------------------------------
// SARIF
// ---------------------------------------------------------------------------

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, sampleReport()))

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "guardian", run.Tool.Driver.Name)
	require.Len(t, run.Tool.Driver.Rules, 2, "each rule is declared once")

	require.Len(t, run.Results, 2)
	assert.Equal(t, "sql-injection", run.Results[0].RuleID)
	assert.Equal(t, "error", run.Results[0].Level, "CRITICAL maps to error")
	assert.Equal(t, "note", run.Results[1].Level, "LOW maps to note")
	require.Len(t, run.Results[0].Locations, 1)
	assert.Equal(t, "db.py", run.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 2, run.Results[0].Locations[0].PhysicalLocation.Region.StartLine)
}
