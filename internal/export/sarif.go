package export

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/dusk-indust/guardian/internal/analysis"
	"github.com/dusk-indust/guardian/internal/rules"
)

// WriteSARIF renders the aggregated findings as a SARIF 2.1.0 report so
// standard scanner tooling can ingest them.
func WriteSARIF(w io.Writer, report *analysis.Report) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("create sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("guardian", "https://github.com/dusk-indust/guardian")
	seen := map[string]bool{}

	for _, f := range report.Findings {
		if !seen[f.RuleID] {
			seen[f.RuleID] = true
			run.AddRule(f.RuleID).
				WithDescription(f.Description).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: sarifLevel(f.Severity),
				})
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Path)).
				WithRegion(sarif.NewRegion().
					WithStartLine(f.StartLine).
					WithEndLine(f.EndLine)),
		)

		result := sarif.NewRuleResult(f.RuleID).
			WithMessage(sarif.NewTextMessage(f.Description)).
			WithLevel(sarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	doc.AddRun(run)
	return doc.PrettyWrite(w)
}

func sarifLevel(s rules.Severity) string {
	switch s {
	case rules.SeverityCritical, rules.SeverityHigh:
		return "error"
	case rules.SeverityMedium:
		return "warning"
	case rules.SeverityLow:
		return "note"
	default:
		return "none"
	}
}
