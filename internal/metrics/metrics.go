// Package metrics computes per-function and per-file complexity figures
// from the normalized model: cyclomatic complexity, nesting depth, a
// code/comment/blank line breakdown, and a maintainability index.
package metrics

import (
	"math"

	"github.com/dusk-indust/guardian/internal/lang"
)

// Maintainability index constants. The index is a fixed, documented
// formula so identical inputs always produce identical scores:
//
//	MI = clamp(100 - 4*avgCyclomatic - 3*avgNesting + 20*commentRatio, 0, 100)
//
// where commentRatio = commentLines / max(codeLines, 1), capped at 1.
const (
	miBase          = 100.0
	miComplexityWt  = 4.0
	miNestingWt     = 3.0
	miCommentWt     = 20.0
	maxCommentRatio = 1.0
)

// FunctionMetrics holds the figures for one function or method.
type FunctionMetrics struct {
	Name       string        `json:"name"`
	Kind       lang.DeclKind `json:"kind"`
	StartLine  int           `json:"startLine"`
	EndLine    int           `json:"endLine"`
	Lines      int           `json:"lines"`
	Cyclomatic int           `json:"cyclomatic"`
	MaxNesting int           `json:"maxNesting"`
}

// FileMetrics holds the per-file aggregate. Degraded marks files where
// parsing failed and only line counts are reliable.
type FileMetrics struct {
	Path                 string            `json:"path"`
	Lines                LineCounts        `json:"lines"`
	Functions            []FunctionMetrics `json:"functions,omitempty"`
	AvgCyclomatic        float64           `json:"avgCyclomatic"`
	MaxCyclomatic        int               `json:"maxCyclomatic"`
	AvgNesting           float64           `json:"avgNesting"`
	MaintainabilityIndex float64           `json:"maintainabilityIndex"`
	Degraded             bool              `json:"degraded,omitempty"`
}

// FunctionAt returns the function metrics whose line range contains the
// given line, or nil. Used by the aggregator for severity escalation.
func (m *FileMetrics) FunctionAt(line int) *FunctionMetrics {
	for i := range m.Functions {
		f := &m.Functions[i]
		if line >= f.StartLine && line <= f.EndLine {
			return f
		}
	}
	return nil
}

// Compute derives full metrics from a parsed model. A nil model yields
// line-count-only metrics with the Degraded flag set.
func Compute(path string, source []byte, language lang.Language, model *lang.Model) FileMetrics {
	m := FileMetrics{
		Path:  path,
		Lines: CountLines(source, language),
	}

	if model == nil {
		m.Degraded = true
		m.MaintainabilityIndex = maintainabilityIndex(0, 0, m.Lines)
		return m
	}

	for _, d := range model.Decls {
		if d.Body == nil {
			continue
		}
		m.Functions = append(m.Functions, FunctionMetrics{
			Name:       d.Name,
			Kind:       d.Kind,
			StartLine:  d.StartLine,
			EndLine:    d.EndLine,
			Lines:      d.EndLine - d.StartLine + 1,
			Cyclomatic: Cyclomatic(d.Body),
			MaxNesting: MaxNesting(d.Body),
		})
	}

	var sumCyc, sumNest int
	for _, f := range m.Functions {
		sumCyc += f.Cyclomatic
		sumNest += f.MaxNesting
		if f.Cyclomatic > m.MaxCyclomatic {
			m.MaxCyclomatic = f.Cyclomatic
		}
	}
	if n := len(m.Functions); n > 0 {
		m.AvgCyclomatic = float64(sumCyc) / float64(n)
		m.AvgNesting = float64(sumNest) / float64(n)
	}
	m.MaintainabilityIndex = maintainabilityIndex(m.AvgCyclomatic, m.AvgNesting, m.Lines)
	return m
}

// Cyclomatic is 1 plus the number of decision points in the subtree:
// branches, loops, short-circuit boolean operators, and case clauses.
func Cyclomatic(body *lang.Node) int {
	c := 1
	body.Walk(func(n *lang.Node, _ int) {
		switch n.Kind {
		case lang.NodeBranch, lang.NodeLoop, lang.NodeBoolOp, lang.NodeCase:
			c++
		}
	})
	return c
}

// MaxNesting is the deepest branch/loop nesting level in the subtree.
func MaxNesting(body *lang.Node) int {
	max := 0
	body.Walk(func(n *lang.Node, depth int) {
		if n.Kind == lang.NodeBranch || n.Kind == lang.NodeLoop {
			if depth+1 > max {
				max = depth + 1
			}
		}
	})
	return max
}

func maintainabilityIndex(avgCyclomatic, avgNesting float64, lines LineCounts) float64 {
	ratio := float64(lines.Comment) / math.Max(float64(lines.Code), 1)
	if ratio > maxCommentRatio {
		ratio = maxCommentRatio
	}
	mi := miBase - miComplexityWt*avgCyclomatic - miNestingWt*avgNesting + miCommentWt*ratio
	return math.Min(math.Max(mi, 0), 100)
}
