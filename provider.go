package kodx

import (
	"context"

	"github.com/fulopmarton/kodx/internal/index"
	"github.com/fulopmarton/kodx/internal/text"
)

// indexProvider adapts the SQLite symbol index to the OutlineProvider and
// SymbolSearcher collaborator interfaces consumed by the core.
type indexProvider struct {
	store *index.Store
}

func (p *indexProvider) DocumentSymbols(_ context.Context, uri string) ([]DocumentSymbol, error) {
	roots, err := p.store.Outline(uri)
	if err != nil {
		return nil, err
	}
	return toDocumentSymbols(roots), nil
}

func (p *indexProvider) WorkspaceSymbols(_ context.Context, name string) ([]SymbolInformation, error) {
	hits, err := p.store.SymbolsByName(name)
	if err != nil {
		return nil, err
	}
	infos := make([]SymbolInformation, 0, len(hits))
	for _, h := range hits {
		infos = append(infos, SymbolInformation{
			Name:  h.Name,
			Kind:  h.Kind,
			URI:   h.Path,
			Range: symbolRange(h.Symbol),
		})
	}
	return infos, nil
}

func toDocumentSymbols(nodes []*index.OutlineNode) []DocumentSymbol {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]DocumentSymbol, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, DocumentSymbol{
			Name:     n.Name,
			Kind:     n.Kind,
			Range:    symbolRange(n.Symbol),
			Children: toDocumentSymbols(n.Children),
		})
	}
	return out
}

func symbolRange(s index.Symbol) Range {
	return Range{
		Start: Position{Line: s.StartLine, Column: s.StartCol},
		End:   Position{Line: s.EndLine, Column: s.EndCol},
	}
}

// fileSource adapts the cached filesystem source to the DocumentSource
// interface.
type fileSource struct {
	src *text.Source
}

func (f fileSource) Open(_ context.Context, uri string) (Document, error) {
	return f.src.Open(uri)
}
