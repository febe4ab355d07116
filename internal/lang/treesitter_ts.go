package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

func init() {
	register(&treeSitterAdapter{
		lang:    LangTypeScript,
		grammar: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		profile: scriptProfile(),
	})
}
