package rules

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dusk-indust/guardian/internal/lang"
	"github.com/dusk-indust/guardian/internal/metrics"
)

// predicateContext carries everything a structural predicate can see.
type predicateContext struct {
	path  string
	model *lang.Model
	rule  *Rule
	opts  Options
}

type predicateFunc func(ctx *predicateContext, m *Matcher) []Finding

// predicates is the structural matcher dispatch table. Registry
// validation rejects rules naming a predicate absent from this table.
var predicates = map[string]predicateFunc{
	"deny-listed-call":   predDenyListedCall,
	"empty-handler":      predEmptyHandler,
	"deep-nesting":       predDeepNesting,
	"long-function":      predLongFunction,
	"duplicated-literal": predDuplicatedLiteral,
}

// forEachBody visits every declaration body plus module-level code.
func forEachBody(model *lang.Model, visit func(name string, startLine, endLine int, body *lang.Node)) {
	for _, d := range model.Decls {
		if d.Body != nil {
			visit(d.Name, d.StartLine, d.EndLine, d.Body)
		}
	}
	if model.Top != nil {
		visit("", model.Top.StartLine, model.Top.EndLine, model.Top)
	}
}

func (ctx *predicateContext) newFinding(startLine, endLine int, snippet string) Finding {
	return Finding{
		RuleID:      ctx.rule.ID,
		Category:    ctx.rule.Category,
		Severity:    ctx.rule.Severity,
		Path:        ctx.path,
		StartLine:   startLine,
		EndLine:     endLine,
		Snippet:     snippet,
		Description: ctx.rule.Description,
		Confidence:  ConfidenceStructural,
	}
}

// predDenyListedCall fires on call nodes whose callee matches the
// deny-list. With require_nonliteral_arg set, at least one argument must
// be something other than a literal, which is the injection shape: a
// dangerous sink fed a constructed value.
func predDenyListedCall(ctx *predicateContext, m *Matcher) []Finding {
	callees := stringListParam(m.Params, "callees")
	requireNonLiteral := boolParam(m.Params, "require_nonliteral_arg")
	if len(callees) == 0 {
		return nil
	}

	deny := make(map[string]bool, len(callees))
	for _, c := range callees {
		deny[strings.ToLower(c)] = true
	}

	var out []Finding
	forEachBody(ctx.model, func(_ string, _, _ int, body *lang.Node) {
		body.Walk(func(n *lang.Node, _ int) {
			if n.Kind != lang.NodeCall || !calleeMatches(n.Callee, deny) {
				return
			}
			if requireNonLiteral && !hasNonLiteralArg(n) {
				return
			}
			out = append(out, ctx.newFinding(n.StartLine, n.EndLine, n.Callee))
		})
	})
	return out
}

// calleeMatches checks both the full dotted callee and its last segment,
// so "cursor.execute" matches a deny-list entry of either form.
func calleeMatches(callee string, deny map[string]bool) bool {
	c := strings.ToLower(callee)
	if deny[c] {
		return true
	}
	if idx := strings.LastIndex(c, "."); idx >= 0 {
		return deny[c[idx+1:]]
	}
	return false
}

func hasNonLiteralArg(call *lang.Node) bool {
	for _, arg := range call.Children {
		if arg.Kind != lang.NodeLiteral {
			return true
		}
	}
	return false
}

// predEmptyHandler fires on exception handlers whose normalized body is
// empty: swallowed errors.
func predEmptyHandler(ctx *predicateContext, _ *Matcher) []Finding {
	var out []Finding
	forEachBody(ctx.model, func(_ string, _, _ int, body *lang.Node) {
		body.Walk(func(n *lang.Node, _ int) {
			if n.Kind == lang.NodeHandler && len(n.Children) == 0 {
				out = append(out, ctx.newFinding(n.StartLine, n.EndLine, ""))
			}
		})
	})
	return out
}

// predDeepNesting fires once per function whose branch/loop nesting
// exceeds the threshold (rule param "threshold", falling back to the
// engine option).
func predDeepNesting(ctx *predicateContext, m *Matcher) []Finding {
	threshold := intParam(m.Params, "threshold", ctx.opts.NestingThreshold)

	var out []Finding
	forEachBody(ctx.model, func(name string, startLine, endLine int, body *lang.Node) {
		if depth := metrics.MaxNesting(body); depth > threshold {
			out = append(out, ctx.newFinding(startLine, endLine, name))
		}
	})
	return out
}

// predLongFunction fires once per function longer than the line limit
// (rule param "max_lines", falling back to the engine option).
func predLongFunction(ctx *predicateContext, m *Matcher) []Finding {
	limit := intParam(m.Params, "max_lines", ctx.opts.LongFunctionLines)

	var out []Finding
	for _, d := range ctx.model.Decls {
		if d.Body == nil {
			continue
		}
		if d.EndLine-d.StartLine+1 > limit {
			out = append(out, ctx.newFinding(d.StartLine, d.EndLine, d.Name))
		}
	}
	return out
}

// predDuplicatedLiteral fires once per numeric literal value repeated at
// least min_occurrences times in the file. 0, 1, and -1 are conventional
// and skipped.
func predDuplicatedLiteral(ctx *predicateContext, m *Matcher) []Finding {
	min := intParam(m.Params, "min_occurrences", ctx.opts.DuplicateLiteralMin)

	type occurrence struct {
		count     int
		firstLine int
	}
	byValue := map[string]*occurrence{}

	forEachBody(ctx.model, func(_ string, _, _ int, body *lang.Node) {
		body.Walk(func(n *lang.Node, _ int) {
			if n.Kind != lang.NodeLiteral {
				return
			}
			v := strings.TrimSpace(n.Value)
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return
			}
			switch v {
			case "0", "1", "-1", "0.0", "1.0":
				return
			}
			occ := byValue[v]
			if occ == nil {
				occ = &occurrence{firstLine: n.StartLine}
				byValue[v] = occ
			}
			occ.count++
		})
	})

	values := make([]string, 0, len(byValue))
	for v, occ := range byValue {
		if occ.count >= min {
			values = append(values, v)
		}
	}
	sort.Strings(values)

	var out []Finding
	for _, v := range values {
		occ := byValue[v]
		out = append(out, ctx.newFinding(occ.firstLine, occ.firstLine, v))
	}
	return out
}

// --- param helpers ---

func stringListParam(params map[string]interface{}, key string) []string {
	raw, ok := params[key]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func boolParam(params map[string]interface{}, key string) bool {
	v, ok := params[key].(bool)
	return ok && v
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	if v, ok := params[key].(int); ok {
		return v
	}
	return fallback
}
