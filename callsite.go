package kodx

import (
	"regexp"
	"unicode/utf8"
)

// callPattern matches an identifier immediately followed by optional
// whitespace and an opening parenthesis.
var callPattern = regexp.MustCompile(`([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`)

// denylist filters language keywords and well-known globals out of the call
// site scan. A fixed noise filter, not a soundness guarantee: an identifier
// shadowed by a local variable is still reported.
var denylist = map[string]struct{}{
	// control flow and declarations
	"if": {}, "else": {}, "for": {}, "while": {}, "do": {}, "switch": {},
	"case": {}, "return": {}, "throw": {}, "try": {}, "catch": {}, "finally": {},
	"function": {}, "class": {}, "const": {}, "let": {}, "var": {}, "new": {},
	"delete": {}, "typeof": {}, "instanceof": {}, "void": {}, "in": {}, "of": {},
	"yield": {}, "await": {}, "async": {}, "super": {}, "this": {},
	"import": {}, "export": {}, "require": {},
	// well-known globals and builtins
	"console": {}, "Math": {}, "JSON": {}, "Object": {}, "Array": {},
	"String": {}, "Number": {}, "Boolean": {}, "Symbol": {}, "Promise": {},
	"Date": {}, "RegExp": {}, "Error": {}, "Map": {}, "Set": {},
	"parseInt": {}, "parseFloat": {}, "isNaN": {},
	"setTimeout": {}, "setInterval": {}, "clearTimeout": {}, "clearInterval": {},
	"fetch": {}, "alert": {},
}

// CallSites scans the scope's text for call-shaped identifier occurrences,
// mapped back to absolute document coordinates. The scope's own name is
// suppressed (recursive self-calls), denylisted names are dropped, and each
// distinct name keeps only its first textual occurrence, so the output is in
// first-occurrence order. No scope or shadowing analysis is performed.
func CallSites(doc Document, scope *EnclosingScope) []CallSite {
	scopeStart := doc.OffsetAt(scope.Range.Start)
	scopeEnd := doc.OffsetAt(scope.Range.End)
	src := doc.Text()
	if scopeStart > len(src) || scopeEnd > len(src) || scopeStart > scopeEnd {
		return nil
	}
	body := src[scopeStart:scopeEnd]

	var sites []CallSite
	seen := make(map[string]bool)
	for _, m := range callPattern.FindAllStringSubmatchIndex(body, -1) {
		nameStart, nameEnd := m[2], m[3]
		// Reject matches that begin mid-token, e.g. the "f(" tail of "0x1f(".
		if nameStart > 0 && isIdentByte(body[nameStart-1]) {
			continue
		}
		name := body[nameStart:nameEnd]
		if _, denied := denylist[name]; denied {
			continue
		}
		if name == scope.Name || seen[name] {
			continue
		}
		seen[name] = true

		start := doc.PositionAt(scopeStart + nameStart)
		sites = append(sites, CallSite{
			Name: name,
			Range: Range{
				Start: start,
				End:   Position{Line: start.Line, Column: start.Column + utf8.RuneCountInString(name)},
			},
			Line:   start.Line,
			Column: start.Column,
		})
	}
	return sites
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
