package text

// Position is a zero-based (line, column) location in a document. Columns
// count characters, not bytes.
type Position struct {
	Line   int
	Column int
}

// Before reports whether p is lexicographically before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// Range is a half-open span between two positions, Start <= End.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether p falls within r: inclusive at Start, exclusive
// at End, matching the half-open convention of tree-sitter end points. A
// position exactly at End is outside the range.
func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || p.Line > r.End.Line {
		return false
	}
	if p.Line == r.Start.Line && p.Column < r.Start.Column {
		return false
	}
	if p.Line == r.End.Line && p.Column >= r.End.Column {
		return false
	}
	return true
}

// LineSpan returns the number of lines covered by r.
func (r Range) LineSpan() int {
	return r.End.Line - r.Start.Line
}

// ColSpan returns the column width of r. For multi-line ranges this is the
// column distance between the endpoints, used only as a tie-break.
func (r Range) ColSpan() int {
	w := r.End.Column - r.Start.Column
	if w < 0 {
		return -w
	}
	return w
}

// Narrower reports whether r spans less source than other, comparing line
// count first and column width second, so line distance dominates.
func (r Range) Narrower(other Range) bool {
	if r.LineSpan() != other.LineSpan() {
		return r.LineSpan() < other.LineSpan()
	}
	return r.ColSpan() < other.ColSpan()
}
