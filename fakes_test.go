package kodx

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/fulopmarton/kodx/internal/text"
)

// Test collaborators. The concrete document type comes from internal/text;
// its Position/Range are aliased at the package root, so it satisfies the
// Document interface directly. Call counters are atomic because the pipeline
// resolves call sites concurrently.

func newDoc(uri, content string) Document {
	return text.NewDocument(uri, content)
}

type fakeOutline struct {
	symbols map[string][]DocumentSymbol
	err     error
	calls   atomic.Int64
}

func (f *fakeOutline) DocumentSymbols(_ context.Context, uri string) ([]DocumentSymbol, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.symbols[uri], nil
}

type fakeSearcher struct {
	results map[string][]SymbolInformation
	err     error
	calls   atomic.Int64
}

func (f *fakeSearcher) WorkspaceSymbols(_ context.Context, name string) ([]SymbolInformation, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[name], nil
}

type fakeSource struct {
	docs map[string]Document
}

func (f *fakeSource) Open(_ context.Context, uri string) (Document, error) {
	doc, ok := f.docs[uri]
	if !ok {
		return nil, errors.New("no such document: " + uri)
	}
	return doc, nil
}
