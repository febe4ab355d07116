package rules

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dusk-indust/guardian/internal/lang"
)

// Options tune engine evaluation. Zero values are replaced by defaults.
type Options struct {
	// TextWindow is how many lines a text matcher joins when scanning,
	// so statements split across lines still match.
	TextWindow int

	// NestingThreshold is the deep-nesting rule default.
	NestingThreshold int

	// LongFunctionLines is the long-function rule default.
	LongFunctionLines int

	// DuplicateLiteralMin is the duplicated-literal rule default.
	DuplicateLiteralMin int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		TextWindow:          3,
		NestingThreshold:    4,
		LongFunctionLines:   50,
		DuplicateLiteralMin: 3,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TextWindow <= 0 {
		o.TextWindow = d.TextWindow
	}
	if o.NestingThreshold <= 0 {
		o.NestingThreshold = d.NestingThreshold
	}
	if o.LongFunctionLines <= 0 {
		o.LongFunctionLines = d.LongFunctionLines
	}
	if o.DuplicateLiteralMin <= 0 {
		o.DuplicateLiteralMin = d.DuplicateLiteralMin
	}
	return o
}

// Engine evaluates the registry against one file at a time. It holds no
// per-file state, so a single Engine is shared across workers.
type Engine struct {
	reg  *Registry
	opts Options
	log  hclog.Logger
}

// NewEngine creates an engine over a loaded registry.
func NewEngine(reg *Registry, opts Options, logger hclog.Logger) *Engine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Engine{
		reg:  reg,
		opts: opts.withDefaults(),
		log:  logger.Named("rules"),
	}
}

// Evaluate runs every applicable rule against the file. model may be nil
// (parse failure); text matchers still run. Rules evaluate in ID order
// so identical input yields identical output. A rule that faults is
// isolated: the engine records a warning and continues.
func (e *Engine) Evaluate(path string, source []byte, language lang.Language, model *lang.Model) ([]Finding, []string) {
	var (
		findings []Finding
		warnings []string
	)
	lines := strings.Split(string(source), "\n")

	applicable := e.reg.RulesFor(language)
	for i := range applicable {
		rule := applicable[i]
		fs, err := e.evalRule(&rule, path, lines, model)
		if err != nil {
			warning := fmt.Sprintf("rule %s failed on %s: %v", rule.ID, path, err)
			e.log.Warn("rule evaluation fault", "rule", rule.ID, "path", path, "error", err)
			warnings = append(warnings, warning)
			continue
		}
		findings = append(findings, fs...)
	}
	return findings, warnings
}

// evalRule evaluates one rule's matchers, converting panics into errors
// so a single faulty rule cannot abort the run.
func (e *Engine) evalRule(rule *Rule, path string, lines []string, model *lang.Model) (fs []Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			fs = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	for i := range rule.Matchers {
		m := &rule.Matchers[i]
		switch m.Kind {
		case MatcherText:
			fs = append(fs, e.evalText(rule, m, path, lines)...)
		case MatcherStructural:
			if model == nil {
				continue
			}
			ctx := &predicateContext{path: path, model: model, rule: rule, opts: e.opts}
			fs = append(fs, predicates[m.Predicate](ctx, m)...)
		}
	}
	return fs, nil
}

// evalText scans each line with the matcher's pattern over a bounded
// window of following lines. A match is attributed to the line where it
// starts; matches beginning later in the window fire when the window
// advances to them.
func (e *Engine) evalText(rule *Rule, m *Matcher, path string, lines []string) []Finding {
	var out []Finding
	for i := range lines {
		end := i + e.opts.TextWindow
		if end > len(lines) {
			end = len(lines)
		}
		window := strings.Join(lines[i:end], "\n")

		loc := m.re.FindStringIndex(window)
		if loc == nil || loc[0] > len(lines[i]) {
			continue
		}

		snippet := window[loc[0]:loc[1]]
		endLine := i + 1 + strings.Count(window[:loc[1]], "\n")
		out = append(out, Finding{
			RuleID:      rule.ID,
			Category:    rule.Category,
			Severity:    rule.Severity,
			Path:        path,
			StartLine:   i + 1,
			EndLine:     endLine,
			Snippet:     strings.TrimSpace(snippet),
			Description: rule.Description,
			Confidence:  ConfidenceText,
		})
	}
	return out
}
