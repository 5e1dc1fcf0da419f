package kodx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBody_SimpleFunction(t *testing.T) {
	t.Parallel()
	lines := []string{"function f() {", "  return 1;", "}"}

	body, ok := ExtractBody(lines, 0)
	require.True(t, ok)
	assert.Equal(t, strings.Join(lines, "\n"), body.Content)
	assert.Equal(t, 0, body.StartLine)
	assert.Equal(t, 2, body.EndLine)
}

func TestExtractBody_Unterminated(t *testing.T) {
	t.Parallel()
	_, ok := ExtractBody([]string{"function f() {", "  return 1;"}, 0)
	assert.False(t, ok)
}

func TestExtractBody_BraceOnLaterLine(t *testing.T) {
	t.Parallel()
	lines := []string{
		"function f(a,",
		"           b)",
		"{",
		"  return a + b;",
		"}",
	}

	body, ok := ExtractBody(lines, 0)
	require.True(t, ok)
	// Collection begins on the line carrying the first '{'; the signature
	// lines before it are skipped.
	assert.Equal(t, "{\n  return a + b;\n}", body.Content)
	assert.Equal(t, 2, body.StartLine)
	assert.Equal(t, 4, body.EndLine)
}

func TestExtractBody_NestedBraces(t *testing.T) {
	t.Parallel()
	lines := []string{
		"function f() {",
		"  if (x) {",
		"    return { a: 1 };",
		"  }",
		"}",
		"function g() {}",
	}

	body, ok := ExtractBody(lines, 0)
	require.True(t, ok)
	assert.Equal(t, 4, body.EndLine)
	assert.NotContains(t, body.Content, "function g")
}

func TestExtractBody_SingleLine(t *testing.T) {
	t.Parallel()
	body, ok := ExtractBody([]string{"function g() { return 2; }"}, 0)
	require.True(t, ok)
	assert.Equal(t, "function g() { return 2; }", body.Content)
	assert.Equal(t, 0, body.EndLine)
}

func TestExtractBody_StartLineOutOfRange(t *testing.T) {
	t.Parallel()
	_, ok := ExtractBody([]string{"{}"}, 5)
	assert.False(t, ok)

	_, ok = ExtractBody([]string{"{}"}, -1)
	assert.False(t, ok)

	_, ok = ExtractBody(nil, 0)
	assert.False(t, ok)
}

func TestExtractBody_NoBraceAtAll(t *testing.T) {
	t.Parallel()
	_, ok := ExtractBody([]string{"const x = 1;", "const y = 2;"}, 0)
	assert.False(t, ok)
}

func TestExtractBody_StartsBelowDeclaration(t *testing.T) {
	t.Parallel()
	lines := []string{
		"function f() {",
		"  return 1;",
		"}",
		"function g() {",
		"  return 2;",
		"}",
	}

	body, ok := ExtractBody(lines, 3)
	require.True(t, ok)
	assert.Equal(t, "function g() {\n  return 2;\n}", body.Content)
	assert.Equal(t, 3, body.StartLine)
	assert.Equal(t, 5, body.EndLine)
}

// A brace inside a string literal skews the counter. Documented behavior:
// the scan terminates at the wrong line but never loops or panics.
func TestExtractBody_StringBraceBlindness(t *testing.T) {
	t.Parallel()
	lines := []string{
		`function f() {`,
		`  return "}";`,
		`}`,
	}

	body, ok := ExtractBody(lines, 0)
	require.True(t, ok)
	// The literal "}" on line 1 balances the count one line early.
	assert.Equal(t, 1, body.EndLine)
}
