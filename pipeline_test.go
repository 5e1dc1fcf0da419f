package kodx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newHeuristicPipeline wires a pipeline whose providers are unavailable, so
// every lookup exercises the heuristic tiers.
func newHeuristicPipeline() *Pipeline {
	return NewPipeline(
		&fakeOutline{err: errors.New("outline unavailable")},
		&fakeSearcher{err: errors.New("index unavailable")},
		&fakeSource{},
	)
}

const twoFuncSrc = "function outer() {\n  inner();\n}\nfunction inner() {\n  return 42;\n}\n"

func TestPipeline_EndToEndHeuristic(t *testing.T) {
	t.Parallel()
	doc := newDoc("/a.js", twoFuncSrc)
	p := newHeuristicPipeline()

	res := p.Run(context.Background(), doc, Position{Line: 1, Column: 4})
	require.NotNil(t, res)
	assert.Equal(t, "outer", res.Scope.Name)
	require.Len(t, res.CallSites, 1)
	assert.Equal(t, "inner", res.CallSites[0].Name)
	require.Len(t, res.Definitions, 1)
	assert.Equal(t, "inner", res.Definitions[0].Name)
	assert.Contains(t, res.Definitions[0].Content, "return 42;")
}

func TestPipeline_IndexedResolution(t *testing.T) {
	t.Parallel()
	doc := newDoc("/a.js", "function caller() {\n  helper();\n}\n")
	lib := newDoc("/lib.js", "function helper() {\n  return 'lib';\n}\n")

	p := NewPipeline(
		&fakeOutline{symbols: map[string][]DocumentSymbol{
			"/a.js": {{
				Name: "caller", Kind: KindFunction,
				Range: Range{Start: Position{Line: 0}, End: Position{Line: 2, Column: 1}},
			}},
		}},
		&fakeSearcher{results: map[string][]SymbolInformation{
			"helper": {{
				Name: "helper", Kind: KindFunction, URI: "/lib.js",
				Range: Range{Start: Position{Line: 0}, End: Position{Line: 2, Column: 1}},
			}},
		}},
		&fakeSource{docs: map[string]Document{"/lib.js": lib}},
	)

	res := p.Run(context.Background(), doc, Position{Line: 1, Column: 3})
	require.NotNil(t, res)
	assert.Equal(t, "caller", res.Scope.Name)
	require.Len(t, res.Definitions, 1)
	assert.Equal(t, "/lib.js", res.Definitions[0].SourceURI)
	assert.Contains(t, res.Definitions[0].Content, "'lib'")
}

func TestPipeline_DefinitionsKeepCallSiteOrder(t *testing.T) {
	t.Parallel()
	src := "function main() {\n  bravo();\n  alpha();\n  bravo();\n}\n" +
		"function alpha() {\n  return 'a';\n}\n" +
		"function bravo() {\n  return 'b';\n}\n"
	doc := newDoc("/a.js", src)
	p := newHeuristicPipeline()

	res := p.Run(context.Background(), doc, Position{Line: 1, Column: 2})
	require.NotNil(t, res)
	require.Len(t, res.Definitions, 2)
	// First-occurrence order, not completion or alphabetic order.
	assert.Equal(t, "bravo", res.Definitions[0].Name)
	assert.Equal(t, "alpha", res.Definitions[1].Name)
}

func TestPipeline_UnresolvableCallSiteDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()
	src := "function main() {\n  ghost();\n  alpha();\n}\nfunction alpha() {\n  return 'a';\n}\n"
	doc := newDoc("/a.js", src)
	p := newHeuristicPipeline()

	res := p.Run(context.Background(), doc, Position{Line: 1, Column: 2})
	require.NotNil(t, res)
	require.Len(t, res.CallSites, 2)
	require.Len(t, res.Definitions, 1)
	assert.Equal(t, "alpha", res.Definitions[0].Name)
}

func TestPipeline_NothingToShow(t *testing.T) {
	t.Parallel()
	doc := newDoc("/a.js", "const x = 1;\n")
	p := newHeuristicPipeline()

	assert.Nil(t, p.Run(context.Background(), doc, Position{Line: 0, Column: 3}))
	assert.Nil(t, p.Latest())
}

func TestPipeline_Idempotent(t *testing.T) {
	t.Parallel()
	doc := newDoc("/a.js", twoFuncSrc)
	p := newHeuristicPipeline()

	first := p.Run(context.Background(), doc, Position{Line: 1, Column: 4})
	second := p.Run(context.Background(), doc, Position{Line: 1, Column: 4})
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Definitions, second.Definitions)
}

func TestPipeline_ScopeMemoSkipsRecomputation(t *testing.T) {
	t.Parallel()
	doc := newDoc("/a.js", twoFuncSrc)
	outline := &fakeOutline{symbols: map[string][]DocumentSymbol{
		"/a.js": {{
			Name: "outer", Kind: KindFunction,
			Range: Range{Start: Position{Line: 0}, End: Position{Line: 2, Column: 1}},
		}},
	}}
	searcher := &fakeSearcher{}
	p := NewPipeline(outline, searcher, &fakeSource{})

	first := p.Run(context.Background(), doc, Position{Line: 1, Column: 2})
	require.NotNil(t, first)
	resolverCalls := searcher.calls.Load()

	// Moving the cursor within the same unchanged scope reuses the result
	// without re-running resolution.
	second := p.Run(context.Background(), doc, Position{Line: 1, Column: 7})
	assert.Same(t, first, second)
	assert.Equal(t, resolverCalls, searcher.calls.Load())
}

func TestPipeline_ConcurrentResolutionQueriesEachName(t *testing.T) {
	t.Parallel()
	src := "function main() {\n  one();\n  two();\n  three();\n  four();\n}\n"
	doc := newDoc("/a.js", src)
	outline := &fakeOutline{symbols: map[string][]DocumentSymbol{
		"/a.js": {{
			Name: "main", Kind: KindFunction,
			Range: Range{Start: Position{Line: 0}, End: Position{Line: 5, Column: 1}},
		}},
	}}
	searcher := &fakeSearcher{}
	p := NewPipeline(outline, searcher, &fakeSource{})

	// Resolution fans out one goroutine per distinct call site; the searcher
	// must see exactly one query per name.
	res := p.Run(context.Background(), doc, Position{Line: 1, Column: 2})
	require.NotNil(t, res)
	require.Len(t, res.CallSites, 4)
	assert.EqualValues(t, 4, searcher.calls.Load())
}

func TestPipeline_StaleRunDoesNotOverwriteNewer(t *testing.T) {
	t.Parallel()
	p := newHeuristicPipeline()

	older := &Result{Scope: EnclosingScope{Name: "old"}}
	newer := &Result{Scope: EnclosingScope{Name: "new"}}

	s1 := p.nextSeq()
	s2 := p.nextSeq()
	p.publish(s2, scopeKey{name: "new"}, newer)
	p.publish(s1, scopeKey{name: "old"}, older)

	require.NotNil(t, p.Latest())
	assert.Equal(t, "new", p.Latest().Scope.Name)
}
