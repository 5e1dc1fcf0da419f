package index

import "time"

// Symbol kinds stored in the index. Function-like kinds are the ones the
// locator and resolver consider callable definitions.
const (
	KindFunction    = "function"
	KindMethod      = "method"
	KindConstructor = "constructor"
	KindClass       = "class"
)

// FunctionKinds lists the kinds treated as function-like definitions.
var FunctionKinds = []string{KindFunction, KindMethod, KindConstructor}

type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	LineCount   int
	LastIndexed time.Time
}

// Symbol is one indexed program entity. Positions are 0-based.
type Symbol struct {
	ID             int64
	FileID         int64
	Name           string
	Kind           string
	StartLine      int
	StartCol       int
	EndLine        int
	EndCol         int
	ParentSymbolID *int64
}

// SymbolHit is a name-search result: a symbol joined with its file path.
type SymbolHit struct {
	Symbol
	Path string
}

// OutlineNode is a symbol with its nested children, reconstructed from the
// flat symbols table via parent links.
type OutlineNode struct {
	Symbol
	Children []*OutlineNode
}
