package analysis

import (
	"github.com/dusk-indust/guardian/internal/lang"
	"github.com/dusk-indust/guardian/internal/metrics"
	"github.com/dusk-indust/guardian/internal/rules"
)

// FileReport is one file's section of the Report. Status distinguishes
// a clean file from one the run could not analyze.
type FileReport struct {
	Path       string              `json:"path"`
	Language   lang.Language       `json:"language"`
	Status     Status              `json:"status"`
	FailDetail string              `json:"failDetail,omitempty"`
	Findings   []rules.Finding     `json:"findings,omitempty"`
	Metrics    metrics.FileMetrics `json:"metrics"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// Summary aggregates run-level counts.
type Summary struct {
	FilesAnalyzed      int            `json:"filesAnalyzed"`
	FilesFailed        int            `json:"filesFailed"`
	FilesSkipped       int            `json:"filesSkipped,omitempty"`
	TotalFindings      int            `json:"totalFindings"`
	FindingsBySeverity map[string]int `json:"findingsBySeverity,omitempty"`
	TotalLines         int            `json:"totalLines"`
}

// Report is the sole externally consumed artifact of a run: per-file
// sections in lexicographic path order, the aggregated finding list, and
// the synthesized scores. Immutable after synthesis.
type Report struct {
	Files                []FileReport    `json:"files"`
	Findings             []rules.Finding `json:"findings"`
	Summary              Summary         `json:"summary"`
	SecurityScore        int             `json:"securityScore"`
	MaintainabilityGrade Grade           `json:"maintainabilityGrade"`
	QualityGrade         Grade           `json:"qualityGrade"`
	Suggestions          []Suggestion    `json:"suggestions,omitempty"`
}
