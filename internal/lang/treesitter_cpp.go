package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

func init() {
	register(&treeSitterAdapter{
		lang:    LangCPP,
		grammar: tree_sitter.NewLanguage(tree_sitter_cpp.Language()),
		profile: grammarProfile{
			decls: map[string]DeclKind{
				"function_definition": DeclFunction,
				"class_specifier":     DeclClass,
				"struct_specifier":    DeclClass,
			},
			wrappers: map[string]bool{
				"template_declaration":  true,
				"namespace_definition":  true,
				"declaration_list":      true,
				"linkage_specification": true,
				"preproc_ifdef":         true,
				"preproc_if":            true,
			},
			branches: map[string]bool{
				"if_statement":           true,
				"conditional_expression": true,
			},
			loops: map[string]bool{
				"for_statement":   true,
				"for_range_loop":  true,
				"while_statement": true,
				"do_statement":    true,
			},
			handlers: map[string]bool{
				"catch_clause": true,
			},
			cases: map[string]bool{
				"case_statement": true,
			},
			calls: map[string]bool{
				"call_expression": true,
			},
			assigns: map[string]bool{
				"assignment_expression": true,
				"init_declarator":       true,
			},
			literals: map[string]bool{
				"string_literal":       true,
				"raw_string_literal":   true,
				"concatenated_string":  true,
				"number_literal":       true,
				"char_literal":         true,
				"user_defined_literal": true,
				"true":                 true,
				"false":                true,
				"nullptr":              true,
			},
			imports: map[string]bool{
				"preproc_include": true,
			},
			boolOp:     binaryBoolOp("binary_expression"),
			declName:   cppDeclName,
			importPath: cppIncludePath,
		},
	})
}

// cppDeclName digs through declarator wrappers (pointers, references,
// function declarators) to the declared identifier. Class and struct
// specifiers carry a plain name field.
func cppDeclName(n *tree_sitter.Node, source []byte) string {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		return nameNode.Utf8Text(source)
	}
	d := n.ChildByFieldName("declarator")
	for d != nil {
		switch d.Kind() {
		case "function_declarator", "pointer_declarator", "reference_declarator", "parenthesized_declarator":
			d = d.ChildByFieldName("declarator")
		default:
			return d.Utf8Text(source)
		}
	}
	return ""
}

// cppIncludePath strips quotes or angle brackets from an include path.
func cppIncludePath(n *tree_sitter.Node, source []byte) string {
	path := n.ChildByFieldName("path")
	if path == nil {
		return ""
	}
	return strings.Trim(path.Utf8Text(source), `"<>`)
}
