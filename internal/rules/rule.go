// Package rules holds the declarative rule registry and the pattern
// engine that evaluates it against source files. Rules are data records
// interpreted by matcher kind, not subclasses: adding a rule is a
// registry change, not a new type.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/guardian/internal/lang"
)

// Severity ranks a finding's impact.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityInfo:     "INFO",
	SeverityLow:      "LOW",
	SeverityMedium:   "MEDIUM",
	SeverityHigh:     "HIGH",
	SeverityCritical: "CRITICAL",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseSeverity resolves a case-insensitive severity name.
func ParseSeverity(name string) (Severity, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for sev, n := range severityNames {
		if n == upper {
			return sev, nil
		}
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", name)
}

// UnmarshalYAML accepts severity names in rule files.
func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	sev, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// MarshalYAML renders severities by name.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// MarshalJSON renders severities by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Category distinguishes security rules from bug-pattern rules. Only
// vulnerability findings weigh into the security score.
type Category string

const (
	CategoryVulnerability Category = "vulnerability"
	CategoryBugPattern    Category = "bug-pattern"
)

// MatcherKind selects the evaluation strategy for one matcher.
type MatcherKind string

const (
	// MatcherText scans raw source lines with a regular expression over
	// a bounded multi-line window.
	MatcherText MatcherKind = "text"

	// MatcherStructural evaluates a named predicate over the normalized
	// model.
	MatcherStructural MatcherKind = "structural"
)

// Matcher is one way a rule can fire. A rule may carry both a text and
// a structural matcher for the same construct; the aggregator collapses
// double fires.
type Matcher struct {
	Kind      MatcherKind            `yaml:"kind"`
	Pattern   string                 `yaml:"pattern,omitempty"`
	Predicate string                 `yaml:"predicate,omitempty"`
	Params    map[string]interface{} `yaml:"params,omitempty"`

	re *regexp.Regexp
}

// Rule is one immutable registry entry. An empty language set means the
// rule applies to every supported language.
type Rule struct {
	ID          string          `yaml:"id"`
	Category    Category        `yaml:"category"`
	Severity    Severity        `yaml:"severity"`
	Languages   []lang.Language `yaml:"languages,omitempty"`
	Matchers    []Matcher       `yaml:"matchers"`
	Description string          `yaml:"description"`
	Remediation string          `yaml:"remediation,omitempty"`
}

// AppliesTo reports whether the rule covers the given language.
func (r *Rule) AppliesTo(l lang.Language) bool {
	if len(r.Languages) == 0 {
		return true
	}
	for _, rl := range r.Languages {
		if rl == l {
			return true
		}
	}
	return false
}

// Matcher confidence levels. Structural matches know the surrounding
// syntax; text matches can misfire inside strings and comments.
const (
	ConfidenceStructural = 0.9
	ConfidenceText       = 0.6
)

// Finding is a single reported issue: one rule firing on one file. It is
// a value object; the aggregator fixes its final severity.
type Finding struct {
	RuleID      string   `json:"ruleId"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Path        string   `json:"path"`
	StartLine   int      `json:"startLine"`
	EndLine     int      `json:"endLine"`
	Snippet     string   `json:"snippet,omitempty"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
}
