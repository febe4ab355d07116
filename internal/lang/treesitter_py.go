package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

func init() {
	register(&treeSitterAdapter{
		lang:    LangPython,
		grammar: tree_sitter.NewLanguage(tree_sitter_python.Language()),
		profile: grammarProfile{
			decls: map[string]DeclKind{
				"function_definition": DeclFunction,
				"class_definition":    DeclClass,
			},
			wrappers: map[string]bool{
				"decorated_definition": true,
			},
			branches: map[string]bool{
				"if_statement":           true,
				"elif_clause":            true,
				"conditional_expression": true,
			},
			loops: map[string]bool{
				"for_statement":   true,
				"while_statement": true,
			},
			handlers: map[string]bool{
				"except_clause": true,
			},
			cases: map[string]bool{
				"case_clause": true,
			},
			calls: map[string]bool{
				"call": true,
			},
			assigns: map[string]bool{
				"assignment":           true,
				"augmented_assignment": true,
			},
			literals: map[string]bool{
				"string":  true,
				"integer": true,
				"float":   true,
				"true":    true,
				"false":   true,
				"none":    true,
			},
			imports: map[string]bool{
				"import_statement":      true,
				"import_from_statement": true,
			},
			boolOp: func(n *tree_sitter.Node, _ []byte) bool {
				return n.Kind() == "boolean_operator"
			},
			importPath: pyImportPath,
		},
	})
}

// pyImportPath extracts the module path from an import statement. For
// "from x import y" the module_name field is used; plain imports take
// the first dotted_name child.
func pyImportPath(n *tree_sitter.Node, source []byte) string {
	if module := n.ChildByFieldName("module_name"); module != nil {
		return module.Utf8Text(source)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Kind() == "dotted_name" {
			return c.Utf8Text(source)
		}
	}
	return ""
}
