package lang

import (
	"strconv"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// grammarProfile maps one tree-sitter grammar's node kinds onto the
// normalized model. Each language file declares its own profile; the
// shared walker below interprets it. Kinds absent from every set are
// transparent containers whose children are scanned in place.
type grammarProfile struct {
	// decls maps declaration kinds to their normalized kind. A function
	// kind found inside a class kind is recorded as a method.
	decls map[string]DeclKind

	// wrappers are kinds whose children are scanned as if they appeared
	// at the wrapper's level (decorators, export statements).
	wrappers map[string]bool

	branches map[string]bool
	loops    map[string]bool
	handlers map[string]bool
	cases    map[string]bool
	calls    map[string]bool
	assigns  map[string]bool
	literals map[string]bool
	imports  map[string]bool

	// boolOp reports whether a node is a short-circuit boolean operator.
	boolOp func(n *tree_sitter.Node, source []byte) bool

	// declName extracts a declaration's name. Nil uses the "name" field.
	declName func(n *tree_sitter.Node, source []byte) string

	// callee extracts a call's target expression. Nil uses the
	// "function" field.
	callee func(n *tree_sitter.Node, source []byte) string

	// importPath extracts the imported module path from an import node.
	importPath func(n *tree_sitter.Node, source []byte) string

	// extraDecl recognizes declaration forms that are not plain decl
	// kinds (e.g. an arrow function bound to a const). It returns the
	// name and the node whose body should be normalized.
	extraDecl func(n *tree_sitter.Node, source []byte) (string, *tree_sitter.Node, bool)
}

// treeSitterAdapter normalizes source with a tree-sitter grammar. A new
// parser is created per Parse call, so a single adapter value is safe to
// share across workers.
type treeSitterAdapter struct {
	lang    Language
	grammar *tree_sitter.Language
	profile grammarProfile
}

func (a *treeSitterAdapter) Language() Language { return a.lang }

// Parse normalizes source into a Model, or classifies the failure. An
// empty or all-whitespace file is a valid program and yields an empty
// model.
func (a *treeSitterAdapter) Parse(source []byte) (*Model, *ParseFailure) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(a.grammar); err != nil {
		return nil, &ParseFailure{Reason: FailUnsupported, Detail: err.Error()}
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseFailure{Reason: FailTruncated, Detail: "parser produced no tree"}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &ParseFailure{Reason: FailSyntax, Detail: firstErrorLocation(root)}
	}

	m := &Model{}
	var top []*Node
	a.collect(root, source, false, m, &top)
	if len(top) > 0 {
		m.Top = &Node{
			Kind:      NodeSequence,
			StartLine: int(root.StartPosition().Row) + 1,
			EndLine:   int(root.EndPosition().Row) + 1,
			Children:  top,
		}
	}
	return m, nil
}

// collect walks the tree gathering declarations, imports, and top-level
// control flow. Function bodies are normalized once and not re-entered.
func (a *treeSitterAdapter) collect(n *tree_sitter.Node, source []byte, inClass bool, m *Model, top *[]*Node) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		kind := c.Kind()

		switch {
		case a.profile.wrappers[kind]:
			a.collect(c, source, inClass, m, top)

		case a.profile.imports[kind]:
			if a.profile.importPath != nil {
				if p := a.profile.importPath(c, source); p != "" {
					m.Imports = append(m.Imports, p)
				}
			}

		case a.profile.decls[kind] == DeclClass:
			m.Decls = append(m.Decls, Decl{
				Name:      a.nameOf(c, source),
				Kind:      DeclClass,
				StartLine: int(c.StartPosition().Row) + 1,
				EndLine:   int(c.EndPosition().Row) + 1,
			})
			a.collect(c, source, true, m, top)

		case a.profile.decls[kind] != "":
			dk := a.profile.decls[kind]
			if dk == DeclFunction && inClass {
				dk = DeclMethod
			}
			m.Decls = append(m.Decls, Decl{
				Name:      a.nameOf(c, source),
				Kind:      dk,
				StartLine: int(c.StartPosition().Row) + 1,
				EndLine:   int(c.EndPosition().Row) + 1,
				Body:      a.bodyOf(c, source, m),
			})

		default:
			if a.profile.extraDecl != nil {
				if name, bodyNode, ok := a.profile.extraDecl(c, source); ok {
					dk := DeclFunction
					if inClass {
						dk = DeclMethod
					}
					m.Decls = append(m.Decls, Decl{
						Name:      name,
						Kind:      dk,
						StartLine: int(c.StartPosition().Row) + 1,
						EndLine:   int(c.EndPosition().Row) + 1,
						Body:      a.bodyOf(bodyNode, source, m),
					})
					continue
				}
			}
			if inClass {
				// class bodies hide methods behind container nodes
				a.collect(c, source, true, m, top)
			} else {
				*top = append(*top, a.normalize(c, source, m)...)
			}
		}
	}
}

// bodyOf wraps a declaration's normalized children in a sequence root.
func (a *treeSitterAdapter) bodyOf(n *tree_sitter.Node, source []byte, m *Model) *Node {
	return &Node{
		Kind:      NodeSequence,
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
		Children:  a.normalize(n, source, m),
	}
}

// normalize maps the subtree under n to normalized control-flow nodes.
// Unrecognized kinds are transparent. A nested declaration is a
// boundary for this subtree, but it is still recorded on the model so
// inner functions get their own decl and metrics.
func (a *treeSitterAdapter) normalize(n *tree_sitter.Node, source []byte, m *Model) []*Node {
	var out []*Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		kind := c.Kind()

		switch {
		case a.profile.branches[kind]:
			out = append(out, a.flowNode(NodeBranch, c, source, m))
		case a.profile.loops[kind]:
			out = append(out, a.flowNode(NodeLoop, c, source, m))
		case a.profile.handlers[kind]:
			out = append(out, a.flowNode(NodeHandler, c, source, m))
		case a.profile.cases[kind]:
			out = append(out, a.flowNode(NodeCase, c, source, m))
		case a.profile.boolOp != nil && a.profile.boolOp(c, source):
			out = append(out, a.flowNode(NodeBoolOp, c, source, m))
		case a.profile.calls[kind]:
			out = append(out, a.callNode(c, source, m))
		case a.profile.assigns[kind]:
			out = append(out, a.assignNode(c, source, m))
		case a.profile.literals[kind]:
			out = append(out, literalNode(c, source))
		case a.profile.decls[kind] != "":
			a.collectNested(c, source, m)
		default:
			out = append(out, a.normalize(c, source, m)...)
		}
	}
	return out
}

// collectNested records a declaration found inside another body. The
// nested body is kept out of the enclosing subtree so each function's
// complexity is its own.
func (a *treeSitterAdapter) collectNested(n *tree_sitter.Node, source []byte, m *Model) {
	if a.profile.decls[n.Kind()] == DeclClass {
		m.Decls = append(m.Decls, Decl{
			Name:      a.nameOf(n, source),
			Kind:      DeclClass,
			StartLine: int(n.StartPosition().Row) + 1,
			EndLine:   int(n.EndPosition().Row) + 1,
		})
		var discard []*Node
		a.collect(n, source, true, m, &discard)
		return
	}
	m.Decls = append(m.Decls, Decl{
		Name:      a.nameOf(n, source),
		Kind:      DeclFunction,
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
		Body:      a.bodyOf(n, source, m),
	})
}

func (a *treeSitterAdapter) flowNode(kind NodeKind, n *tree_sitter.Node, source []byte, m *Model) *Node {
	return &Node{
		Kind:      kind,
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
		Children:  a.normalize(n, source, m),
	}
}

// callNode builds a call with one child per argument: literal arguments
// become literal nodes, nested calls recurse, anything else is a ref.
// A ref keeps the argument's normalized flow as children, so control
// flow inside a callback argument stays visible.
func (a *treeSitterAdapter) callNode(n *tree_sitter.Node, source []byte, m *Model) *Node {
	callee := ""
	if a.profile.callee != nil {
		callee = a.profile.callee(n, source)
	} else if fn := n.ChildByFieldName("function"); fn != nil {
		callee = fn.Utf8Text(source)
	}

	node := &Node{
		Kind:      NodeCall,
		Callee:    callee,
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
	}

	args := n.ChildByFieldName("arguments")
	if args == nil {
		return node
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg == nil {
			continue
		}
		switch {
		case a.profile.literals[arg.Kind()]:
			node.Children = append(node.Children, literalNode(arg, source))
		case a.profile.calls[arg.Kind()]:
			node.Children = append(node.Children, a.callNode(arg, source, m))
		default:
			node.Children = append(node.Children, &Node{
				Kind:      NodeRef,
				Value:     truncate(arg.Utf8Text(source), 80),
				StartLine: int(arg.StartPosition().Row) + 1,
				EndLine:   int(arg.EndPosition().Row) + 1,
				Children:  a.normalize(arg, source, m),
			})
		}
	}
	return node
}

func (a *treeSitterAdapter) assignNode(n *tree_sitter.Node, source []byte, m *Model) *Node {
	// Grammars disagree on field names: assignment expressions use
	// left/right, declarators use name/value.
	left := n.ChildByFieldName("left")
	if left == nil {
		left = n.ChildByFieldName("name")
	}
	if left == nil {
		left = n.ChildByFieldName("declarator")
	}
	right := n.ChildByFieldName("right")
	if right == nil {
		right = n.ChildByFieldName("value")
	}

	lhs := ""
	if left != nil {
		lhs = left.Utf8Text(source)
	}
	node := &Node{
		Kind:      NodeAssign,
		Value:     truncate(lhs, 80),
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
	}
	if right != nil {
		node.Children = a.normalizeOne(right, source, m)
	}
	return node
}

// normalizeOne classifies a single node, falling back to scanning its
// children when the node itself is transparent.
func (a *treeSitterAdapter) normalizeOne(n *tree_sitter.Node, source []byte, m *Model) []*Node {
	kind := n.Kind()
	switch {
	case a.profile.calls[kind]:
		return []*Node{a.callNode(n, source, m)}
	case a.profile.literals[kind]:
		return []*Node{literalNode(n, source)}
	case a.profile.boolOp != nil && a.profile.boolOp(n, source):
		return []*Node{a.flowNode(NodeBoolOp, n, source, m)}
	default:
		return a.normalize(n, source, m)
	}
}

func literalNode(n *tree_sitter.Node, source []byte) *Node {
	return &Node{
		Kind:      NodeLiteral,
		Value:     truncate(n.Utf8Text(source), 80),
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
	}
}

func (a *treeSitterAdapter) nameOf(n *tree_sitter.Node, source []byte) string {
	if a.profile.declName != nil {
		return a.profile.declName(n, source)
	}
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		return nameNode.Utf8Text(source)
	}
	return ""
}

// firstErrorLocation reports the line of the first ERROR node, for the
// ParseFailure detail.
func firstErrorLocation(root *tree_sitter.Node) string {
	cursor := root.Walk()
	defer cursor.Close()

	var found *tree_sitter.Node
	var walk func()
	walk = func() {
		if found != nil {
			return
		}
		node := cursor.Node()
		if node.IsError() || node.IsMissing() {
			found = node
			return
		}
		if cursor.GotoFirstChild() {
			walk()
			for found == nil && cursor.GotoNextSibling() {
				walk()
			}
			cursor.GotoParent()
		}
	}
	walk()

	if found == nil {
		return "syntax error"
	}
	return "syntax error near line " + strconv.Itoa(int(found.StartPosition().Row)+1)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// binaryBoolOp is the shared boolOp check for grammars where && and ||
// are binary_expression nodes with an operator field.
func binaryBoolOp(kind string) func(n *tree_sitter.Node, source []byte) bool {
	return func(n *tree_sitter.Node, source []byte) bool {
		if n.Kind() != kind {
			return false
		}
		op := n.ChildByFieldName("operator")
		if op == nil {
			return false
		}
		switch op.Utf8Text(source) {
		case "&&", "||":
			return true
		}
		return false
	}
}
