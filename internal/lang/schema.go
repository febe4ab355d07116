package lang

import "strings"

// Language identifies a programming language for parsing.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJava       Language = "java"
	LangCPP        Language = "c++"
)

// Supported lists every language with a registered adapter.
var Supported = []Language{LangPython, LangJavaScript, LangTypeScript, LangJava, LangCPP}

// extensions maps file suffixes to their language tag. Extension filtering
// happens upstream in the scanner; this is the shared dispatch table.
var extensions = map[string]Language{
	".py":   LangPython,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".java": LangJava,
	".cpp":  LangCPP,
	".cc":   LangCPP,
	".cxx":  LangCPP,
	".hpp":  LangCPP,
	".h":    LangCPP,
}

// FromExtension resolves a file suffix (with leading dot) to a language tag.
func FromExtension(ext string) (Language, bool) {
	l, ok := extensions[strings.ToLower(ext)]
	return l, ok
}

// IsSupported reports whether the tag names a language with an adapter.
func IsSupported(l Language) bool {
	for _, s := range Supported {
		if s == l {
			return true
		}
	}
	return false
}

// DeclKind classifies top-level declarations in the normalized model.
type DeclKind string

const (
	DeclFunction DeclKind = "function"
	DeclMethod   DeclKind = "method"
	DeclClass    DeclKind = "class"
)

// NodeKind classifies control-flow nodes in a declaration body.
type NodeKind string

const (
	NodeSequence NodeKind = "sequence"
	NodeBranch   NodeKind = "branch"
	NodeLoop     NodeKind = "loop"
	NodeCall     NodeKind = "call"
	NodeAssign   NodeKind = "assign"
	NodeLiteral  NodeKind = "literal"
	NodeRef      NodeKind = "ref"
	NodeHandler  NodeKind = "handler"
	NodeCase     NodeKind = "case"
	NodeBoolOp   NodeKind = "boolop"
)

// Model is the language-agnostic structural view of one source file.
// It is owned by the SourceUnit it was parsed from and never mutated
// after Parse returns.
type Model struct {
	Decls   []Decl   `json:"decls"`
	Imports []string `json:"imports,omitempty"`

	// Top holds control flow found outside any declaration (module-level
	// script code). Nil when the file only declares.
	Top *Node `json:"top,omitempty"`
}

// Decl is a top-level declaration: a function, method, or class.
// Body is nil for classes; their methods appear as separate decls.
type Decl struct {
	Name      string   `json:"name"`
	Kind      DeclKind `json:"kind"`
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Body      *Node    `json:"body,omitempty"`
}

// Node is one control-flow node. Every node carries a 1-based source line
// range. Callee is set for call nodes, Value for literal, ref, and assign
// nodes (the assigned name).
type Node struct {
	Kind      NodeKind `json:"kind"`
	Callee    string   `json:"callee,omitempty"`
	Value     string   `json:"value,omitempty"`
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Children  []*Node  `json:"children,omitempty"`
}

// Walk visits n and all descendants in depth-first order. The visitor
// receives the node and its branch/loop nesting depth.
func (n *Node) Walk(visit func(node *Node, depth int)) {
	n.walk(0, visit)
}

func (n *Node) walk(depth int, visit func(node *Node, depth int)) {
	if n == nil {
		return
	}
	visit(n, depth)
	childDepth := depth
	if n.Kind == NodeBranch || n.Kind == NodeLoop {
		childDepth++
	}
	for _, c := range n.Children {
		c.walk(childDepth, visit)
	}
}

// FailReason categorizes why a file could not be normalized.
type FailReason string

const (
	FailSyntax      FailReason = "syntax-error"
	FailUnsupported FailReason = "unsupported-construct"
	FailTruncated   FailReason = "truncated-input"
)

// ParseFailure reports a recoverable per-file parse problem. The raw text
// is still analyzed by text-based rules and line-count metrics.
type ParseFailure struct {
	Reason FailReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}
