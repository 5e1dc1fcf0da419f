package text

import (
	"unicode/utf8"
)

// Document is an immutable text buffer with line-indexed access and
// bidirectional offset/position conversion. Offsets are byte offsets into
// Text(); position columns are character counts within a line. Safe for
// concurrent reads.
type Document struct {
	uri         string
	content     string
	lineOffsets []int // byte offset of each line start
}

// NewDocument builds a Document for the given uri and content.
func NewDocument(uri, content string) *Document {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return &Document{uri: uri, content: content, lineOffsets: offsets}
}

// URI returns the document's identifier, typically a file path.
func (d *Document) URI() string { return d.uri }

// Text returns the full document content.
func (d *Document) Text() string { return d.content }

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int { return len(d.lineOffsets) }

// Line returns the text of line i without its trailing newline. Out-of-range
// indices return the empty string.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lineOffsets) {
		return ""
	}
	start := d.lineOffsets[i]
	end := len(d.content)
	if i+1 < len(d.lineOffsets) {
		end = d.lineOffsets[i+1] - 1
	}
	return d.content[start:end]
}

// Lines returns all lines of the document without trailing newlines.
func (d *Document) Lines() []string {
	lines := make([]string, len(d.lineOffsets))
	for i := range d.lineOffsets {
		lines[i] = d.Line(i)
	}
	return lines
}

// OffsetAt converts a position to a byte offset. Positions past the end of a
// line or document clamp to the nearest valid offset.
func (d *Document) OffsetAt(p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(d.lineOffsets) {
		return len(d.content)
	}
	line := d.Line(p.Line)
	bytePos := 0
	for col := 0; col < p.Column && bytePos < len(line); col++ {
		_, size := utf8.DecodeRuneInString(line[bytePos:])
		bytePos += size
	}
	return d.lineOffsets[p.Line] + bytePos
}

// PositionAt converts a byte offset to a position. Offsets are clamped to
// the document bounds.
func (d *Document) PositionAt(offset int) Position {
	if offset < 0 {
		return Position{}
	}
	if offset > len(d.content) {
		offset = len(d.content)
	}
	// Binary search for the line containing offset.
	lo, hi := 0, len(d.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.lineOffsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	col := utf8.RuneCountInString(d.content[d.lineOffsets[lo]:offset])
	return Position{Line: lo, Column: col}
}

// Slice returns the text covered by r.
func (d *Document) Slice(r Range) string {
	start := d.OffsetAt(r.Start)
	end := d.OffsetAt(r.End)
	if start > end {
		start, end = end, start
	}
	return d.content[start:end]
}

// Hash returns a cheap identity hash of the content, used to detect whether
// a scope's text changed between pipeline runs.
func (d *Document) Hash() uint64 {
	// FNV-1a, inlined to avoid the hash/fnv allocation on a hot path.
	var h uint64 = 14695981039346656037
	for i := 0; i < len(d.content); i++ {
		h ^= uint64(d.content[i])
		h *= 1099511628211
	}
	return h
}
