package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

func init() {
	register(&treeSitterAdapter{
		lang:    LangJava,
		grammar: tree_sitter.NewLanguage(tree_sitter_java.Language()),
		profile: grammarProfile{
			decls: map[string]DeclKind{
				"method_declaration":      DeclMethod,
				"constructor_declaration": DeclMethod,
				"class_declaration":       DeclClass,
				"interface_declaration":   DeclClass,
				"enum_declaration":        DeclClass,
				"record_declaration":      DeclClass,
			},
			branches: map[string]bool{
				"if_statement":       true,
				"ternary_expression": true,
			},
			loops: map[string]bool{
				"for_statement":          true,
				"enhanced_for_statement": true,
				"while_statement":        true,
				"do_statement":           true,
			},
			handlers: map[string]bool{
				"catch_clause": true,
			},
			cases: map[string]bool{
				"switch_block_statement_group": true,
				"switch_rule":                  true,
			},
			calls: map[string]bool{
				"method_invocation":          true,
				"object_creation_expression": true,
			},
			assigns: map[string]bool{
				"assignment_expression": true,
				"variable_declarator":   true,
			},
			literals: map[string]bool{
				"string_literal":                 true,
				"decimal_integer_literal":        true,
				"hex_integer_literal":            true,
				"octal_integer_literal":          true,
				"binary_integer_literal":         true,
				"decimal_floating_point_literal": true,
				"character_literal":              true,
				"true":                           true,
				"false":                          true,
				"null_literal":                   true,
			},
			imports: map[string]bool{
				"import_declaration": true,
			},
			boolOp:     binaryBoolOp("binary_expression"),
			callee:     javaCallee,
			importPath: javaImportPath,
		},
	})
}

// javaCallee renders method invocations as "receiver.name" so deny-list
// matching sees the same dotted form other languages produce.
func javaCallee(n *tree_sitter.Node, source []byte) string {
	switch n.Kind() {
	case "object_creation_expression":
		if t := n.ChildByFieldName("type"); t != nil {
			return t.Utf8Text(source)
		}
		return ""
	default:
		name := ""
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			name = nameNode.Utf8Text(source)
		}
		if obj := n.ChildByFieldName("object"); obj != nil && name != "" {
			return obj.Utf8Text(source) + "." + name
		}
		return name
	}
}

func javaImportPath(n *tree_sitter.Node, source []byte) string {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "scoped_identifier", "identifier":
			return c.Utf8Text(source)
		}
	}
	return ""
}
