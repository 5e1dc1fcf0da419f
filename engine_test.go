package kodx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulopmarton/kodx/internal/index"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(filepath.Join(t.TempDir(), "index.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEngine_IndexDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	appJS := writeFixture(t, dir, "app.js", `function greet(name) {
  return format(name);
}
class Widget {
  render() {
    return greet('w');
  }
}
`)
	writeFixture(t, dir, "util.ts", "function format(x: string): string {\n  return x.trim();\n}\n")
	writeFixture(t, dir, "README.md", "# notes\n")
	writeFixture(t, dir, "node_modules/dep/index.js", "function ignored() {}\n")

	e := newTestEngine(t)
	require.NoError(t, e.IndexDirectory(ctx, dir))

	hits, err := e.Store().SymbolsByName("greet")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, appJS, hits[0].Path)
	assert.Equal(t, index.KindFunction, hits[0].Kind)

	hits, err = e.Store().SymbolsByName("format")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// node_modules is skipped outside a git worktree.
	hits, err = e.Store().SymbolsByName("ignored")
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Nested symbols carry parent links into the rebuilt outline.
	roots, err := e.Store().Outline(appJS)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "greet", roots[0].Name)
	assert.Equal(t, "Widget", roots[1].Name)
	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, "render", roots[1].Children[0].Name)
}

func TestEngine_UnchangedFileIsSkipped(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFixture(t, dir, "a.js", "function one() {}\n")

	e := newTestEngine(t, WithParallel(false))
	require.NoError(t, e.IndexFiles(ctx, []string{path}))
	first, err := e.Store().FileByPath(path)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Same content: the file row survives untouched.
	require.NoError(t, e.IndexFiles(ctx, []string{path}))
	second, err := e.Store().FileByPath(path)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.LastIndexed, second.LastIndexed)

	// Changed content: old rows are replaced.
	require.NoError(t, os.WriteFile(path, []byte("function two() {}\n"), 0o644))
	require.NoError(t, e.IndexFiles(ctx, []string{path}))

	hits, err := e.Store().SymbolsByName("one")
	require.NoError(t, err)
	assert.Empty(t, hits)
	hits, err = e.Store().SymbolsByName("two")
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestEngine_LanguageFilter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFixture(t, dir, "a.js", "function fromJS() {}\n")
	writeFixture(t, dir, "b.ts", "function fromTS() {}\n")

	e := newTestEngine(t, WithLanguages("typescript"))
	require.NoError(t, e.IndexDirectory(ctx, dir))

	hits, err := e.Store().SymbolsByName("fromJS")
	require.NoError(t, err)
	assert.Empty(t, hits)
	hits, err = e.Store().SymbolsByName("fromTS")
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestEngine_PipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	appJS := writeFixture(t, dir, "app.js", `function main() {
  const out = helper(1);
  return out;
}
`)
	writeFixture(t, dir, "lib.js", "function helper(x) {\n  return x + 1;\n}\n")

	e := newTestEngine(t)
	require.NoError(t, e.IndexDirectory(ctx, dir))

	doc, err := e.OpenDocument(ctx, appJS)
	require.NoError(t, err)

	res := e.Pipeline().Run(ctx, doc, Position{Line: 1, Column: 4})
	require.NotNil(t, res)
	assert.Equal(t, "main", res.Scope.Name)
	require.Len(t, res.CallSites, 1)
	assert.Equal(t, "helper", res.CallSites[0].Name)
	require.Len(t, res.Definitions, 1)
	assert.Contains(t, res.Definitions[0].SourceURI, "lib.js")
	assert.Contains(t, res.Definitions[0].Content, "return x + 1;")
}

func TestEngine_SameNameResolvesToFirstIndexed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	// Discovery order is lexicographic under WalkDir, so a.js wins.
	writeFixture(t, dir, "a.js", "function dup() {\n  return 'first';\n}\n")
	writeFixture(t, dir, "b.js", "function dup() {\n  return 'second';\n}\n")
	caller := writeFixture(t, dir, "c.js", "function use() {\n  dup();\n}\n")

	e := newTestEngine(t)
	require.NoError(t, e.IndexDirectory(ctx, dir))

	doc, err := e.OpenDocument(ctx, caller)
	require.NoError(t, err)

	res := e.Pipeline().Run(ctx, doc, Position{Line: 1, Column: 3})
	require.NotNil(t, res)
	require.Len(t, res.Definitions, 1)
	assert.Contains(t, res.Definitions[0].Content, "'first'")
}

func TestEngine_SerialAndParallelAgree(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, f := range []struct{ name, src string }{
		{"a.js", "function alpha() {}\nconst beta = () => {};\n"},
		{"b.ts", "function gamma(x: number) {\n  return x;\n}\n"},
	} {
		writeFixture(t, dir, f.name, f.src)
	}

	serial := newTestEngine(t, WithParallel(false))
	require.NoError(t, serial.IndexDirectory(ctx, dir))
	parallel := newTestEngine(t, WithParallel(true))
	require.NoError(t, parallel.IndexDirectory(ctx, dir))

	for _, name := range []string{"alpha", "beta", "gamma"} {
		s, err := serial.Store().SymbolsByName(name)
		require.NoError(t, err)
		p, err := parallel.Store().SymbolsByName(name)
		require.NoError(t, err)
		require.Len(t, s, 1, name)
		require.Len(t, p, 1, name)
		assert.Equal(t, s[0].Kind, p[0].Kind, name)
		assert.Equal(t, s[0].StartLine, p[0].StartLine, name)
	}
}
