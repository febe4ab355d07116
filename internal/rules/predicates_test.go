package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/guardian/internal/lang"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testContext(model *lang.Model) *predicateContext {
	return &predicateContext{
		path:  "test.py",
		model: model,
		rule: &Rule{
			ID:       "test-rule",
			Category: CategoryBugPattern,
			Severity: SeverityMedium,
		},
		opts: DefaultOptions(),
	}
}

func fnModel(name string, body *lang.Node) *lang.Model {
	return &lang.Model{Decls: []lang.Decl{
		{Name: name, Kind: lang.DeclFunction, StartLine: 1, EndLine: 10, Body: body},
	}}
}

// ---------------------------------------------------------------------------
// deny-listed-call
// ---------------------------------------------------------------------------

func TestPredDenyListedCall(t *testing.T) {
	model := fnModel("handler", &lang.Node{Kind: lang.NodeSequence, Children: []*lang.Node{
		{Kind: lang.NodeCall, Callee: "cursor.execute", StartLine: 3, EndLine: 3, Children: []*lang.Node{
			{Kind: lang.NodeRef, Value: "query"},
		}},
		{Kind: lang.NodeCall, Callee: "log.debug", StartLine: 4, EndLine: 4},
	}})

	m := &Matcher{Kind: MatcherStructural, Params: map[string]interface{}{
		"callees": []interface{}{"execute"},
	}}
	findings := predDenyListedCall(testContext(model), m)

	require.Len(t, findings, 1)
	assert.Equal(t, "cursor.execute", findings[0].Snippet, "dotted callee matches by last segment")
	assert.Equal(t, 3, findings[0].StartLine)
	assert.Equal(t, ConfidenceStructural, findings[0].Confidence)
}

func TestPredDenyListedCall_RequireNonLiteralArg(t *testing.T) {
	model := fnModel("handler", &lang.Node{Kind: lang.NodeSequence, Children: []*lang.Node{
		// constant query: all arguments are literals
		{Kind: lang.NodeCall, Callee: "execute", StartLine: 2, EndLine: 2, Children: []*lang.Node{
			{Kind: lang.NodeLiteral, Value: `"SELECT 1"`},
		}},
		// constructed query: a ref argument
		{Kind: lang.NodeCall, Callee: "execute", StartLine: 5, EndLine: 5, Children: []*lang.Node{
			{Kind: lang.NodeRef, Value: "query"},
		}},
	}})

	m := &Matcher{Kind: MatcherStructural, Params: map[string]interface{}{
		"callees":                []interface{}{"execute"},
		"require_nonliteral_arg": true,
	}}
	findings := predDenyListedCall(testContext(model), m)

	require.Len(t, findings, 1, "literal-only call should not fire")
	assert.Equal(t, 5, findings[0].StartLine)
}

func TestPredDenyListedCall_TopLevel(t *testing.T) {
	model := &lang.Model{Top: &lang.Node{Kind: lang.NodeSequence, StartLine: 1, EndLine: 3, Children: []*lang.Node{
		{Kind: lang.NodeCall, Callee: "eval", StartLine: 2, EndLine: 2, Children: []*lang.Node{
			{Kind: lang.NodeRef, Value: "payload"},
		}},
	}}}

	m := &Matcher{Kind: MatcherStructural, Params: map[string]interface{}{
		"callees": []interface{}{"eval"},
	}}
	findings := predDenyListedCall(testContext(model), m)
	require.Len(t, findings, 1, "module-level code is scanned too")
}

// ---------------------------------------------------------------------------
// empty-handler
// ---------------------------------------------------------------------------

func TestPredEmptyHandler(t *testing.T) {
	model := fnModel("f", &lang.Node{Kind: lang.NodeSequence, Children: []*lang.Node{
		{Kind: lang.NodeHandler, StartLine: 4, EndLine: 5},
		{Kind: lang.NodeHandler, StartLine: 8, EndLine: 9, Children: []*lang.Node{
			{Kind: lang.NodeCall, Callee: "log.error"},
		}},
	}})

	findings := predEmptyHandler(testContext(model), &Matcher{})
	require.Len(t, findings, 1)
	assert.Equal(t, 4, findings[0].StartLine)
}

// ---------------------------------------------------------------------------
// deep-nesting
// ---------------------------------------------------------------------------

func TestPredDeepNesting(t *testing.T) {
	deep := &lang.Node{Kind: lang.NodeBranch}
	node := deep
	for i := 0; i < 4; i++ {
		child := &lang.Node{Kind: lang.NodeBranch}
		node.Children = []*lang.Node{child}
		node = child
	}
	model := fnModel("tangled", &lang.Node{Kind: lang.NodeSequence, Children: []*lang.Node{deep}})

	// depth 5 exceeds the default threshold of 4
	findings := predDeepNesting(testContext(model), &Matcher{})
	require.Len(t, findings, 1)
	assert.Equal(t, "tangled", findings[0].Snippet)

	// raising the threshold silences it
	m := &Matcher{Params: map[string]interface{}{"threshold": 5}}
	assert.Empty(t, predDeepNesting(testContext(model), m))
}

// ---------------------------------------------------------------------------
// long-function
// ---------------------------------------------------------------------------

func TestPredLongFunction(t *testing.T) {
	model := &lang.Model{Decls: []lang.Decl{
		{Name: "short", Kind: lang.DeclFunction, StartLine: 1, EndLine: 10, Body: &lang.Node{Kind: lang.NodeSequence}},
		{Name: "long", Kind: lang.DeclFunction, StartLine: 12, EndLine: 90, Body: &lang.Node{Kind: lang.NodeSequence}},
		{Name: "Widget", Kind: lang.DeclClass, StartLine: 92, EndLine: 400},
	}}

	findings := predLongFunction(testContext(model), &Matcher{})
	require.Len(t, findings, 1, "classes have no body and are never long functions")
	assert.Equal(t, "long", findings[0].Snippet)

	m := &Matcher{Params: map[string]interface{}{"max_lines": 5}}
	assert.Len(t, predLongFunction(testContext(model), m), 2)
}

// ---------------------------------------------------------------------------
// duplicated-literal
// ---------------------------------------------------------------------------

func TestPredDuplicatedLiteral(t *testing.T) {
	lit := func(v string, line int) *lang.Node {
		return &lang.Node{Kind: lang.NodeLiteral, Value: v, StartLine: line, EndLine: line}
	}
	model := fnModel("f", &lang.Node{Kind: lang.NodeSequence, Children: []*lang.Node{
		lit("42", 2), lit("42", 3), lit("42", 7),
		lit("7", 4), lit("7", 5),
		// conventional values and non-numeric strings are skipped
		lit("1", 1), lit("1", 2), lit("1", 3),
		lit(`"text"`, 6), lit(`"text"`, 7), lit(`"text"`, 8),
	}})

	findings := predDuplicatedLiteral(testContext(model), &Matcher{})
	require.Len(t, findings, 1)
	assert.Equal(t, "42", findings[0].Snippet)
	assert.Equal(t, 2, findings[0].StartLine, "finding points at the first occurrence")

	m := &Matcher{Params: map[string]interface{}{"min_occurrences": 2}}
	values := findingsByValue(predDuplicatedLiteral(testContext(model), m))
	assert.Equal(t, []string{"42", "7"}, values)
}

// findingsByValue extracts snippets in reported order.
func findingsByValue(fs []Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Snippet
	}
	return out
}
