// Package analysis wires the per-file pipeline: parse, metrics, rule
// evaluation, then aggregation and score synthesis into a Report.
package analysis

import (
	"github.com/dusk-indust/guardian/internal/lang"
)

// Status records how far a file made it through the pipeline. The
// Report always distinguishes "clean" from "failed to analyze".
type Status string

const (
	// StatusAnalyzed means the full pipeline ran, structural rules
	// included.
	StatusAnalyzed Status = "analyzed"

	// StatusParseFailed means normalization failed; text rules and line
	// counts still ran against the raw text.
	StatusParseFailed Status = "parse-failed"

	// StatusIOFailed means the file could not be read at all.
	StatusIOFailed Status = "io-failed"

	// StatusSkipped means the run was cancelled before the file was
	// scheduled.
	StatusSkipped Status = "skipped"
)

// SourceUnit is one analyzed file. Immutable once parsed; discarded
// after its findings and metrics are folded into the Report.
type SourceUnit struct {
	Path     string
	Language lang.Language
	Text     []byte

	// Model is nil when parsing failed.
	Model      *lang.Model
	Status     Status
	FailDetail string
}

// NewSourceUnit parses raw text into a unit. A parse failure is recorded
// on the unit, not returned: the caller still runs text rules and
// degraded metrics.
func NewSourceUnit(path string, language lang.Language, text []byte) *SourceUnit {
	u := &SourceUnit{
		Path:     path,
		Language: language,
		Text:     text,
		Status:   StatusAnalyzed,
	}

	adapter, ok := lang.ForLanguage(language)
	if !ok {
		u.Status = StatusParseFailed
		u.FailDetail = "no adapter for language " + string(language)
		return u
	}

	model, failure := adapter.Parse(text)
	if failure != nil {
		u.Status = StatusParseFailed
		u.FailDetail = string(failure.Reason)
		if failure.Detail != "" {
			u.FailDetail += ": " + failure.Detail
		}
		return u
	}
	u.Model = model
	return u
}
