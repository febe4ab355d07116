package lang

// Adapter converts raw source text into the normalized model. One adapter
// per language family; all conform to this one contract. Implementations
// are independent of each other, selected via the dispatch table below
// rather than a shared base type.
type Adapter interface {
	// Parse normalizes source. Exactly one of the results is non-nil.
	// A ParseFailure is recoverable: the caller keeps the raw text for
	// text-based rule matching and degraded metrics.
	Parse(source []byte) (*Model, *ParseFailure)

	// Language returns the tag this adapter handles.
	Language() Language
}

// adapters is the language dispatch table, populated at package init by
// each adapter file.
var adapters = map[Language]Adapter{}

func register(a Adapter) {
	adapters[a.Language()] = a
}

// ForLanguage returns the adapter for a language tag. Callers are expected
// to have filtered unsupported extensions upstream; ok is false only when
// they have not.
func ForLanguage(l Language) (Adapter, bool) {
	a, ok := adapters[l]
	return a, ok
}
