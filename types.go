package kodx

import (
	"context"

	"github.com/fulopmarton/kodx/internal/index"
	"github.com/fulopmarton/kodx/internal/text"
)

// Position and Range are aliases for the internal text types. They are Go
// type aliases (=), identical to the internal types at compile time, so
// concrete documents from internal/text satisfy the interfaces here without
// conversion.

type Position = text.Position
type Range = text.Range

// Symbol kinds, re-exported from the index package.
const (
	KindFunction    = index.KindFunction
	KindMethod      = index.KindMethod
	KindConstructor = index.KindConstructor
	KindClass       = index.KindClass
)

// AnonymousScope names a heuristically located scope whose preamble matched
// a function shape but carried no usable identifier.
const AnonymousScope = "<anonymous>"

// EnclosingScope is the smallest function-like block containing a queried
// position.
type EnclosingScope struct {
	Range Range
	Name  string
}

// CallSite is one lexical occurrence of `identifier(` inside a scope.
// Line and Column duplicate Range.Start for callers that only need the point.
type CallSite struct {
	Name   string
	Range  Range
	Line   int
	Column int
}

// Definition is a resolved callable: where it lives and its extracted source
// text. Content is non-empty on success.
type Definition struct {
	Name      string
	SourceURI string
	Range     Range
	Content   string
	StartLine int
	EndLine   int
}

// DocumentSymbol is one node of a document outline tree.
type DocumentSymbol struct {
	Name     string
	Kind     string
	Range    Range
	Children []DocumentSymbol
}

// SymbolInformation is one project-wide symbol query result.
type SymbolInformation struct {
	Name  string
	Kind  string
	URI   string
	Range Range
}

// Document is a host-supplied read-only view of one source file.
// Implementations must support concurrent reads.
type Document interface {
	URI() string
	Text() string
	LineCount() int
	Line(i int) string
	Lines() []string
	OffsetAt(p Position) int
	PositionAt(offset int) Position
}

// DocumentSource opens documents by URI, used for cross-file definition
// extraction. Opening is read-only.
type DocumentSource interface {
	Open(ctx context.Context, uri string) (Document, error)
}

// OutlineProvider supplies the symbol tree of a document. Best-effort: an
// empty result and an error both mean the caller falls back to its heuristic
// tier, never that the lookup as a whole fails.
type OutlineProvider interface {
	DocumentSymbols(ctx context.Context, uri string) ([]DocumentSymbol, error)
}

// SymbolSearcher answers project-wide symbol queries by exact name.
// Best-effort, with the same fall-back contract as OutlineProvider.
type SymbolSearcher interface {
	WorkspaceSymbols(ctx context.Context, name string) ([]SymbolInformation, error)
}

// isFunctionKind reports whether kind denotes a callable definition.
func isFunctionKind(kind string) bool {
	switch kind {
	case KindFunction, KindMethod, KindConstructor:
		return true
	}
	return false
}
