package kodx

import (
	"context"
	"log/slog"
	"regexp"
)

// ScopeLocator maps a cursor position to the smallest enclosing
// function-like block, preferring the document outline and falling back to a
// brace-depth heuristic when the outline is missing or empty.
type ScopeLocator struct {
	outline OutlineProvider
	logger  *slog.Logger
}

// NewScopeLocator creates a locator over the given outline provider.
func NewScopeLocator(outline OutlineProvider, logger *slog.Logger) *ScopeLocator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ScopeLocator{outline: outline, logger: logger}
}

// Locate returns the smallest function-like scope containing pos, or nil
// when the position is not inside any function-like block (for example at
// top level). Never returns an error: outline failures fall through to the
// heuristic tier.
func (l *ScopeLocator) Locate(ctx context.Context, doc Document, pos Position) *EnclosingScope {
	return firstMatch(ctx, l.logger, "enclosing scope",
		func(ctx context.Context) (*EnclosingScope, error) {
			return l.fromOutline(ctx, doc, pos)
		},
		func(context.Context) (*EnclosingScope, error) {
			return l.fromBraces(doc, pos), nil
		},
	)
}

// fromOutline walks the outline tree for the narrowest function-like node
// containing pos. Containing non-function nodes (classes, object literals)
// are descended into so a function nested inside them is still found. Span
// narrowness compares line count first, column width second.
func (l *ScopeLocator) fromOutline(ctx context.Context, doc Document, pos Position) (*EnclosingScope, error) {
	symbols, err := l.outline.DocumentSymbols(ctx, doc.URI())
	if err != nil {
		return nil, err
	}

	var best *DocumentSymbol
	var visit func(nodes []DocumentSymbol)
	visit = func(nodes []DocumentSymbol) {
		for i := range nodes {
			node := &nodes[i]
			if !node.Range.Contains(pos) {
				continue
			}
			if isFunctionKind(node.Kind) && (best == nil || node.Range.Narrower(best.Range)) {
				best = node
			}
			visit(node.Children)
		}
	}
	visit(symbols)

	if best == nil {
		return nil, nil
	}
	return &EnclosingScope{Range: best.Range, Name: best.Name}, nil
}

// preambleWindow bounds how far before a candidate `{` the heuristic looks
// for a function-shaped preamble.
const preambleWindow = 200

var (
	// function NAME(args)
	funcPreamble = regexp.MustCompile(`function\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*\([^()]*\)\s*$`)
	// NAME = function(args)  /  NAME = async (args) =>
	assignPreamble = regexp.MustCompile(`([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(?:async\s*)?(?:function\s*\([^()]*\)\s*|\([^()]*\)\s*=>\s*)$`)
	// function-shaped preamble with no usable identifier
	anonPreamble = regexp.MustCompile(`(?:function\s*\([^()]*\)\s*|\([^()]*\)\s*=>\s*)$`)
)

// fromBraces is the heuristic tier: from the cursor's offset, scan forward
// for the first unmatched `}` and backward for the matching `{`, then
// require a function-shaped preamble immediately before that `{`.
func (l *ScopeLocator) fromBraces(doc Document, pos Position) *EnclosingScope {
	src := doc.Text()
	offset := doc.OffsetAt(pos)

	end := -1
	depth := 0
	for i := offset; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				end = i
			} else {
				depth--
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil
	}

	start := -1
	depth = 0
	for i := offset - 1; i >= 0; i-- {
		switch src[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				start = i
			} else {
				depth--
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return nil
	}

	windowStart := start - preambleWindow
	if windowStart < 0 {
		windowStart = 0
	}
	window := src[windowStart:start]

	name := ""
	if m := funcPreamble.FindStringSubmatch(window); m != nil {
		name = m[1]
	} else if m := assignPreamble.FindStringSubmatch(window); m != nil {
		name = m[1]
	} else if anonPreamble.MatchString(window) {
		name = AnonymousScope
	} else {
		return nil
	}

	return &EnclosingScope{
		Range: Range{Start: doc.PositionAt(start), End: doc.PositionAt(end + 1)},
		Name:  name,
	}
}
