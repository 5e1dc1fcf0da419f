package kodx

import (
	"context"
	"log/slog"
	"regexp"
	"unicode/utf8"
)

// DefinitionResolver maps a call name to a concrete definition: a source
// location plus the extracted body text. Tier A queries the project symbol
// index; Tier B falls back to regex shapes over the originating document.
type DefinitionResolver struct {
	symbols SymbolSearcher
	source  DocumentSource
	logger  *slog.Logger
}

// NewDefinitionResolver creates a resolver over the given symbol index and
// document source.
func NewDefinitionResolver(symbols SymbolSearcher, source DocumentSource, logger *slog.Logger) *DefinitionResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DefinitionResolver{symbols: symbols, source: source, logger: logger}
}

// Resolve returns the definition for name, or nil when neither tier finds
// one. Index errors fall through to the local tier; an unterminated body is
// nil for this one name and never affects sibling resolutions.
func (r *DefinitionResolver) Resolve(ctx context.Context, name string, origin Document) *Definition {
	return firstMatch(ctx, r.logger, "definition of "+name,
		func(ctx context.Context) (*Definition, error) {
			return r.fromIndex(ctx, name)
		},
		func(context.Context) (*Definition, error) {
			return r.fromOrigin(name, origin), nil
		},
	)
}

// fromIndex resolves via the project symbol index. The first function-kind
// hit in index order wins, with no proximity or alphabetic re-ranking; the order
// itself is the documented policy (see DESIGN.md). When the body scan fails
// on the winning symbol, the raw text of its reported range is used instead.
func (r *DefinitionResolver) fromIndex(ctx context.Context, name string) (*Definition, error) {
	symbols, err := r.symbols.WorkspaceSymbols(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, sym := range symbols {
		if sym.Name != name || !isFunctionKind(sym.Kind) {
			continue
		}
		doc, err := r.source.Open(ctx, sym.URI)
		if err != nil {
			return nil, err
		}
		if body, ok := ExtractBody(doc.Lines(), sym.Range.Start.Line); ok {
			return bodyDefinition(name, doc, body), nil
		}
		// Raw-range fallback.
		start := doc.OffsetAt(sym.Range.Start)
		end := doc.OffsetAt(sym.Range.End)
		content := doc.Text()[start:end]
		if content == "" {
			return nil, nil
		}
		return &Definition{
			Name:      name,
			SourceURI: doc.URI(),
			Range:     sym.Range,
			Content:   content,
			StartLine: sym.Range.Start.Line,
			EndLine:   sym.Range.End.Line,
		}, nil
	}
	return nil, nil
}

// localShapes are the Tier B definition patterns in priority order:
// function declaration, arrow assignment, method shorthand, and the typed
// signature prefix (lowest priority, most prone to false positives).
func localShapes(name string) []*regexp.Regexp {
	q := regexp.QuoteMeta(name)
	return []*regexp.Regexp{
		regexp.MustCompile(`function\s+` + q + `\s*\(`),
		regexp.MustCompile(`(?:const|let|var)\s+` + q + `\s*=[^\n]*=>`),
		regexp.MustCompile(`(?m)^\s*` + q + `\s*\([^()]*\)\s*\{`),
		regexp.MustCompile(q + `\s*\([^()]*\)\s*:`),
	}
}

// fromOrigin searches the originating document for the first matching
// definition shape and extracts the body from that line. The first shape
// that matches anywhere wins, even if its body turns out unterminated.
func (r *DefinitionResolver) fromOrigin(name string, origin Document) *Definition {
	src := origin.Text()
	for _, shape := range localShapes(name) {
		loc := shape.FindStringIndex(src)
		if loc == nil {
			continue
		}
		line := origin.PositionAt(loc[0]).Line
		body, ok := ExtractBody(origin.Lines(), line)
		if !ok {
			// Mid-edit source; a data condition, not a defect.
			return nil
		}
		return bodyDefinition(name, origin, body)
	}
	return nil
}

func bodyDefinition(name string, doc Document, body Body) *Definition {
	return &Definition{
		Name:      name,
		SourceURI: doc.URI(),
		Range: Range{
			Start: Position{Line: body.StartLine, Column: 0},
			End:   Position{Line: body.EndLine, Column: utf8.RuneCountInString(doc.Line(body.EndLine))},
		},
		Content:   body.Content,
		StartLine: body.StartLine,
		EndLine:   body.EndLine,
	}
}
