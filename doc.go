// Package kodx resolves the callable context around a cursor position: the
// smallest enclosing function-like block, the distinct call sites inside it,
// and the source text of each callee's definition, extracted by structural
// bracket matching rather than a grammar-aware parse.
//
// # Pipeline
//
// One cursor event drives four stages:
//
//  1. Locate: find the smallest function-like scope containing the position,
//     preferring the document outline and falling back to a brace scan.
//  2. Extract: collect `identifier(` call sites inside the scope, filtered
//     through a keyword/builtin denylist and deduplicated by first occurrence.
//  3. Resolve: map each distinct name to a definition, preferring the
//     project symbol index and falling back to local regex shapes. Lookups
//     run concurrently; results keep first-occurrence order.
//  4. Publish: a monotonic run sequence guarantees a stale run never
//     overwrites a newer result.
//
// Both the locator and the resolver share the same two-tier shape: an
// index-based tier, then a local-heuristic tier, first success wins. The
// shared primitive underneath is [ExtractBody], a brace-depth scan that is
// deliberately blind to string literals and comments; a brace inside either
// desynchronizes the count, which yields over- or under-extraction but never
// a crash or an unterminated scan.
//
// # Usage
//
// Create an Engine over a SQLite symbol index, index a project, and run the
// pipeline:
//
//	e, err := kodx.New(".kodx/index.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	err = e.IndexDirectory(ctx, "path/to/project")
//
//	p := e.Pipeline()
//	doc, _ := e.OpenDocument(ctx, "src/app.js")
//	res := p.Run(ctx, doc, kodx.Position{Line: 10, Column: 5})
//
// A nil result means nothing to show, the expected outcome of best-effort
// search over incomplete or unindexed code, never an error state.
//
// The index is built by internal/outline (tree-sitter extraction for
// JavaScript and TypeScript) and stored by internal/index. Hosts with their
// own symbol infrastructure can instead construct a [Pipeline] directly from
// any [OutlineProvider], [SymbolSearcher], and [DocumentSource].
package kodx
