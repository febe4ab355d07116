package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

func init() {
	register(&treeSitterAdapter{
		lang:    LangJavaScript,
		grammar: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		profile: scriptProfile(),
	})
}

// scriptProfile covers the JavaScript grammar family. The TypeScript
// grammar extends JavaScript's, so both adapters share it.
func scriptProfile() grammarProfile {
	return grammarProfile{
		decls: map[string]DeclKind{
			"function_declaration":           DeclFunction,
			"generator_function_declaration": DeclFunction,
			"class_declaration":              DeclClass,
			"abstract_class_declaration":     DeclClass,
			"method_definition":              DeclMethod,
		},
		wrappers: map[string]bool{
			"export_statement":    true,
			"ambient_declaration": true,
		},
		branches: map[string]bool{
			"if_statement":       true,
			"ternary_expression": true,
		},
		loops: map[string]bool{
			"for_statement":    true,
			"for_in_statement": true,
			"while_statement":  true,
			"do_statement":     true,
		},
		handlers: map[string]bool{
			"catch_clause": true,
		},
		cases: map[string]bool{
			"switch_case": true,
		},
		calls: map[string]bool{
			"call_expression": true,
			"new_expression":  true,
		},
		assigns: map[string]bool{
			"assignment_expression":           true,
			"augmented_assignment_expression": true,
			"variable_declarator":             true,
		},
		literals: map[string]bool{
			"string":          true,
			"template_string": true,
			"number":          true,
			"true":            true,
			"false":           true,
			"null":            true,
			"undefined":       true,
			"regex":           true,
		},
		imports: map[string]bool{
			"import_statement": true,
		},
		boolOp:     binaryBoolOp("binary_expression"),
		callee:     scriptCallee,
		importPath: scriptImportPath,
		extraDecl:  scriptExtraDecl,
	}
}

// scriptCallee handles both call_expression (function field) and
// new_expression (constructor field).
func scriptCallee(n *tree_sitter.Node, source []byte) string {
	if fn := n.ChildByFieldName("function"); fn != nil {
		return fn.Utf8Text(source)
	}
	if ctor := n.ChildByFieldName("constructor"); ctor != nil {
		return ctor.Utf8Text(source)
	}
	return ""
}

// scriptImportPath returns the module specifier with quotes stripped.
func scriptImportPath(n *tree_sitter.Node, source []byte) string {
	src := n.ChildByFieldName("source")
	if src == nil {
		return ""
	}
	text := src.Utf8Text(source)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

// scriptExtraDecl recognizes "const f = () => {}" and
// "const f = function() {}" as function declarations.
func scriptExtraDecl(n *tree_sitter.Node, source []byte) (string, *tree_sitter.Node, bool) {
	kind := n.Kind()
	if kind != "lexical_declaration" && kind != "variable_declaration" {
		return "", nil, false
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		d := n.NamedChild(i)
		if d == nil || d.Kind() != "variable_declarator" {
			continue
		}
		value := d.ChildByFieldName("value")
		if value == nil {
			continue
		}
		switch value.Kind() {
		case "arrow_function", "function_expression", "generator_function":
			name := ""
			if nameNode := d.ChildByFieldName("name"); nameNode != nil {
				name = nameNode.Utf8Text(source)
			}
			return name, value, true
		}
	}
	return "", nil, false
}
