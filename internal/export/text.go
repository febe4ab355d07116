package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/guardian/internal/analysis"
)

// WriteText renders the report as a human-readable summary: run totals,
// scores, then per-file sections in their stable path order.
func WriteText(w io.Writer, report *analysis.Report) error {
	var b strings.Builder

	b.WriteString("Code Analysis Report\n")
	b.WriteString("====================\n\n")
	fmt.Fprintf(&b, "Files analyzed: %d", report.Summary.FilesAnalyzed)
	if report.Summary.FilesFailed > 0 {
		fmt.Fprintf(&b, " (%d failed)", report.Summary.FilesFailed)
	}
	if report.Summary.FilesSkipped > 0 {
		fmt.Fprintf(&b, " (%d skipped)", report.Summary.FilesSkipped)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total lines:    %d\n", report.Summary.TotalLines)
	fmt.Fprintf(&b, "Findings:       %d\n\n", report.Summary.TotalFindings)

	fmt.Fprintf(&b, "Security score:        %d/100\n", report.SecurityScore)
	fmt.Fprintf(&b, "Maintainability grade: %s\n", report.MaintainabilityGrade)
	fmt.Fprintf(&b, "Quality grade:         %s\n\n", report.QualityGrade)

	for _, f := range report.Files {
		fmt.Fprintf(&b, "--- %s (%s)\n", f.Path, f.Status)
		if f.FailDetail != "" {
			fmt.Fprintf(&b, "    %s\n", f.FailDetail)
		}
		if f.Status == analysis.StatusAnalyzed || f.Status == analysis.StatusParseFailed {
			fmt.Fprintf(&b, "    lines: %d code / %d comment / %d blank",
				f.Metrics.Lines.Code, f.Metrics.Lines.Comment, f.Metrics.Lines.Blank)
			if !f.Metrics.Degraded {
				fmt.Fprintf(&b, ", avg complexity %.1f, MI %.0f",
					f.Metrics.AvgCyclomatic, f.Metrics.MaintainabilityIndex)
			}
			b.WriteString("\n")
		}
		for _, finding := range f.Findings {
			fmt.Fprintf(&b, "    [%s] %s L%d", finding.Severity, finding.RuleID, finding.StartLine)
			if finding.Snippet != "" {
				fmt.Fprintf(&b, ": %s", finding.Snippet)
			}
			b.WriteString("\n")
		}
		for _, warn := range f.Warnings {
			fmt.Fprintf(&b, "    warning: %s\n", warn)
		}
	}

	if len(report.Suggestions) > 0 {
		b.WriteString("\nSuggestions\n-----------\n")
		for _, s := range report.Suggestions {
			fmt.Fprintf(&b, "%d. %s\n   %s\n", s.Priority, s.Title, s.Rationale)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
