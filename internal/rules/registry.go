package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/guardian/internal/lang"
)

// builtinRules is the shipped rule catalogue, embedded so the binary
// needs no external files to run.
//
//go:embed builtin.yml
var builtinRules []byte

// ConfigError is fatal at startup: running with a broken rule set would
// produce misleading scores, so loading halts before any file is read.
type ConfigError struct {
	RuleID string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.RuleID == "" {
		return "rule registry: " + e.Reason
	}
	return fmt.Sprintf("rule %q: %s", e.RuleID, e.Reason)
}

// ruleFile is the on-disk registry document shape.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Registry holds the loaded rule set. It is populated at startup and
// read-only afterwards, so concurrent workers share it by reference
// without synchronization.
type Registry struct {
	rules []Rule
	seen  map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: map[string]bool{}}
}

// LoadBuiltin returns a registry holding the embedded catalogue.
func LoadBuiltin() (*Registry, error) {
	r := NewRegistry()
	if err := r.loadBytes(builtinRules); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadFile adds rules from an external yaml registry file.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Reason: fmt.Sprintf("read %s: %v", path, err)}
	}
	return r.loadBytes(data)
}

func (r *Registry) loadBytes(data []byte) error {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &ConfigError{Reason: fmt.Sprintf("parse registry: %v", err)}
	}
	for i := range doc.Rules {
		if err := r.add(&doc.Rules[i]); err != nil {
			return err
		}
	}
	// stable evaluation order regardless of file order
	sort.Slice(r.rules, func(i, j int) bool { return r.rules[i].ID < r.rules[j].ID })
	return nil
}

// add validates one rule and compiles its matchers. Every rejection is a
// ConfigError naming the offending rule.
func (r *Registry) add(rule *Rule) error {
	if rule.ID == "" {
		return &ConfigError{Reason: "rule with empty id"}
	}
	if r.seen[rule.ID] {
		return &ConfigError{RuleID: rule.ID, Reason: "duplicate rule id"}
	}
	switch rule.Category {
	case CategoryVulnerability, CategoryBugPattern:
	default:
		return &ConfigError{RuleID: rule.ID, Reason: fmt.Sprintf("unknown category %q", rule.Category)}
	}
	for _, l := range rule.Languages {
		if !lang.IsSupported(l) {
			return &ConfigError{RuleID: rule.ID, Reason: fmt.Sprintf("unsupported language tag %q", l)}
		}
	}
	if len(rule.Matchers) == 0 {
		return &ConfigError{RuleID: rule.ID, Reason: "rule has no matchers"}
	}
	for i := range rule.Matchers {
		m := &rule.Matchers[i]
		switch m.Kind {
		case MatcherText:
			if m.Pattern == "" {
				return &ConfigError{RuleID: rule.ID, Reason: "text matcher without pattern"}
			}
			re, err := regexp.Compile(m.Pattern)
			if err != nil {
				return &ConfigError{RuleID: rule.ID, Reason: fmt.Sprintf("invalid pattern: %v", err)}
			}
			m.re = re
		case MatcherStructural:
			if _, ok := predicates[m.Predicate]; !ok {
				return &ConfigError{RuleID: rule.ID, Reason: fmt.Sprintf("unknown predicate %q", m.Predicate)}
			}
		default:
			return &ConfigError{RuleID: rule.ID, Reason: fmt.Sprintf("unknown matcher kind %q", m.Kind)}
		}
	}

	r.seen[rule.ID] = true
	r.rules = append(r.rules, *rule)
	return nil
}

// Rules returns the full rule set in stable ID order.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// RulesFor returns the rules applicable to a language, in ID order.
func (r *Registry) RulesFor(l lang.Language) []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if rule.AppliesTo(l) {
			out = append(out, rule)
		}
	}
	return out
}

// Len returns the number of loaded rules.
func (r *Registry) Len() int {
	return len(r.rules)
}
