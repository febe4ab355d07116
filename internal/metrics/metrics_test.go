package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/guardian/internal/lang"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// nestedBranches builds n branch nodes nested inside each other.
func nestedBranches(n int) *lang.Node {
	node := &lang.Node{Kind: lang.NodeBranch}
	root := node
	for i := 1; i < n; i++ {
		child := &lang.Node{Kind: lang.NodeBranch}
		node.Children = []*lang.Node{child}
		node = child
	}
	return &lang.Node{Kind: lang.NodeSequence, Children: []*lang.Node{root}}
}

// ---------------------------------------------------------------------------
// Cyclomatic / MaxNesting
// ---------------------------------------------------------------------------

func TestCyclomatic(t *testing.T) {
	t.Run("straight line", func(t *testing.T) {
		body := &lang.Node{Kind: lang.NodeSequence, Children: []*lang.Node{
			{Kind: lang.NodeCall, Callee: "f"},
			{Kind: lang.NodeAssign, Value: "x"},
		}}
		assert.Equal(t, 1, Cyclomatic(body))
	})

	t.Run("each decision point adds one", func(t *testing.T) {
		body := &lang.Node{Kind: lang.NodeSequence, Children: []*lang.Node{
			{Kind: lang.NodeBranch},
			{Kind: lang.NodeLoop},
			{Kind: lang.NodeBoolOp},
			{Kind: lang.NodeCase},
			{Kind: lang.NodeCall},
		}}
		assert.Equal(t, 5, Cyclomatic(body))
	})

	t.Run("five nested ifs", func(t *testing.T) {
		assert.Equal(t, 6, Cyclomatic(nestedBranches(5)))
	})
}

func TestMaxNesting(t *testing.T) {
	assert.Equal(t, 0, MaxNesting(&lang.Node{Kind: lang.NodeSequence}))
	assert.Equal(t, 1, MaxNesting(nestedBranches(1)))
	assert.Equal(t, 5, MaxNesting(nestedBranches(5)))

	// a handler between branches does not add nesting
	body := &lang.Node{Kind: lang.NodeSequence, Children: []*lang.Node{
		{Kind: lang.NodeBranch, Children: []*lang.Node{
			{Kind: lang.NodeHandler, Children: []*lang.Node{
				{Kind: lang.NodeBranch},
			}},
		}},
	}}
	assert.Equal(t, 2, MaxNesting(body))
}

// ---------------------------------------------------------------------------
// Compute
// ---------------------------------------------------------------------------

func TestCompute(t *testing.T) {
	source := []byte(strings.Join([]string{
		"# helper",
		"def one():",
		"    if a:",
		"        return 1",
		"    return 2",
		"",
		"def two():",
		"    return 3",
	}, "\n"))

	model := &lang.Model{Decls: []lang.Decl{
		{
			Name: "one", Kind: lang.DeclFunction, StartLine: 2, EndLine: 5,
			Body: &lang.Node{Kind: lang.NodeSequence, Children: []*lang.Node{
				{Kind: lang.NodeBranch, StartLine: 3, EndLine: 4},
			}},
		},
		{
			Name: "two", Kind: lang.DeclFunction, StartLine: 7, EndLine: 8,
			Body: &lang.Node{Kind: lang.NodeSequence},
		},
	}}

	fm := Compute("a.py", source, lang.LangPython, model)

	assert.False(t, fm.Degraded)
	require.Len(t, fm.Functions, 2)
	assert.Equal(t, 2, fm.Functions[0].Cyclomatic)
	assert.Equal(t, 1, fm.Functions[0].MaxNesting)
	assert.Equal(t, 4, fm.Functions[0].Lines)
	assert.Equal(t, 1, fm.Functions[1].Cyclomatic)

	assert.InDelta(t, 1.5, fm.AvgCyclomatic, 1e-9)
	assert.Equal(t, 2, fm.MaxCyclomatic)
	assert.InDelta(t, 0.5, fm.AvgNesting, 1e-9)

	assert.Equal(t, 6, fm.Lines.Code)
	assert.Equal(t, 1, fm.Lines.Comment)
	assert.Equal(t, 1, fm.Lines.Blank)

	// MI = 100 - 4*1.5 - 3*0.5 + 20*(1/6)
	assert.InDelta(t, 100-6-1.5+20.0/6.0, fm.MaintainabilityIndex, 1e-9)
}

func TestCompute_NilModel(t *testing.T) {
	fm := Compute("a.py", []byte("x = 1\n"), lang.LangPython, nil)

	assert.True(t, fm.Degraded)
	assert.Empty(t, fm.Functions)
	assert.Equal(t, 1, fm.Lines.Code)
	assert.Equal(t, 100.0, fm.MaintainabilityIndex, "no functions means no complexity penalty")
}

func TestFunctionAt(t *testing.T) {
	fm := FileMetrics{Functions: []FunctionMetrics{
		{Name: "a", StartLine: 1, EndLine: 5},
		{Name: "b", StartLine: 10, EndLine: 20},
	}}

	require.NotNil(t, fm.FunctionAt(3))
	assert.Equal(t, "a", fm.FunctionAt(3).Name)
	assert.Equal(t, "b", fm.FunctionAt(10).Name)
	assert.Equal(t, "b", fm.FunctionAt(20).Name)
	assert.Nil(t, fm.FunctionAt(7))
	assert.Nil(t, fm.FunctionAt(21))
}
