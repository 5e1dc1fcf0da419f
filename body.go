package kodx

import "strings"

// Body is the result of a bracket-depth body extraction: the collected lines
// joined with newlines and the inclusive line span they cover.
type Body struct {
	Content   string
	StartLine int
	EndLine   int
}

// ExtractBody scans lines from startLine with a signed brace-depth counter
// and returns the block ending where depth first returns to zero after
// having been positive. Lines before the first `{` are skipped; collection
// begins on the line carrying it and every subsequent line is appended
// verbatim, including the terminating one.
//
// The counter has no awareness of string literals, template literals,
// regular expressions, or comments; a brace inside any of those skews the
// count. That is documented behavior. The scan is bounded by len(lines), so
// it always terminates; reaching the end with depth still non-zero returns
// ok=false.
func ExtractBody(lines []string, startLine int) (Body, bool) {
	if startLine < 0 || startLine >= len(lines) {
		return Body{}, false
	}

	var (
		collected []string
		depth     int
		opened    bool // saw the first '{'
		positive  bool // depth has exceeded zero at least once
		first     int
	)
	for i := startLine; i < len(lines); i++ {
		line := lines[i]
		if !opened {
			if !strings.ContainsRune(line, '{') {
				continue
			}
			opened = true
			first = i
		}
		collected = append(collected, line)
		for j := 0; j < len(line); j++ {
			switch line[j] {
			case '{':
				depth++
				if depth > 0 {
					positive = true
				}
			case '}':
				depth--
			}
			if positive && depth == 0 {
				return Body{
					Content:   strings.Join(collected, "\n"),
					StartLine: first,
					EndLine:   i,
				}, true
			}
		}
	}
	return Body{}, false
}
