// Package outline extracts a nested function/method/class symbol tree from
// JavaScript and TypeScript source using tree-sitter. It is the structural
// feed for the symbol index; the core's heuristic tiers never depend on it.
package outline

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/fulopmarton/kodx/internal/index"
	"github.com/fulopmarton/kodx/internal/text"
)

// Symbol is one extracted program entity with its nested children.
// Ranges are 0-based and cover the whole declaration including the body.
type Symbol struct {
	Name     string
	Kind     string
	Range    text.Range
	Children []*Symbol
}

// Parse extracts the symbol tree from src for the given canonical language.
func Parse(ctx context.Context, src []byte, lang string) ([]*Symbol, error) {
	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return walk(tree.RootNode(), src), nil
}

// functionValueTypes are node types that make a variable declarator or
// object pair a function definition.
var functionValueTypes = map[string]bool{
	"arrow_function":      true,
	"function":            true,
	"function_expression": true,
	"generator_function":  true,
}

// walk visits the named children of n, emitting symbols for function-like
// declarations and containers and recursing into everything else so deeply
// nested definitions are still found.
func walk(n *sitter.Node, src []byte) []*Symbol {
	var out []*Symbol
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "function_declaration", "generator_function_declaration":
			out = append(out, newSymbol(child, src, nameOf(child, src), index.KindFunction))

		case "method_definition":
			name := nameOf(child, src)
			kind := index.KindMethod
			if name == "constructor" {
				kind = index.KindConstructor
			}
			out = append(out, newSymbol(child, src, name, kind))

		case "class_declaration", "abstract_class_declaration":
			out = append(out, newSymbol(child, src, nameOf(child, src), index.KindClass))

		case "lexical_declaration", "variable_declaration":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				decl := child.NamedChild(j)
				if decl.Type() != "variable_declarator" {
					continue
				}
				value := decl.ChildByFieldName("value")
				if value != nil && functionValueTypes[value.Type()] {
					out = append(out, newSymbol(decl, src, nameOf(decl, src), index.KindFunction))
				} else {
					out = append(out, walk(decl, src)...)
				}
			}

		case "pair":
			value := child.ChildByFieldName("value")
			if value != nil && functionValueTypes[value.Type()] {
				out = append(out, newSymbol(child, src, keyOf(child, src), index.KindMethod))
			} else {
				out = append(out, walk(child, src)...)
			}

		default:
			out = append(out, walk(child, src)...)
		}
	}
	return out
}

func newSymbol(n *sitter.Node, src []byte, name, kind string) *Symbol {
	return &Symbol{
		Name:     name,
		Kind:     kind,
		Range:    rangeOf(n),
		Children: walk(n, src),
	}
}

func nameOf(n *sitter.Node, src []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(src)
}

func keyOf(n *sitter.Node, src []byte) string {
	key := n.ChildByFieldName("key")
	if key == nil {
		return ""
	}
	return key.Content(src)
}

func rangeOf(n *sitter.Node) text.Range {
	start := n.StartPoint()
	end := n.EndPoint()
	return text.Range{
		Start: text.Position{Line: int(start.Row), Column: int(start.Column)},
		End:   text.Position{Line: int(end.Row), Column: int(end.Column)},
	}
}
