// Package export renders a Report for external consumers. The core owns
// the Report schema; this package owns its serialized forms.
package export

import (
	"encoding/json"
	"io"

	"github.com/dusk-indust/guardian/internal/analysis"
)

// WriteJSON renders the report as indented JSON.
func WriteJSON(w io.Writer, report *analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
