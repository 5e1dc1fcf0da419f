package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fulopmarton/kodx"
)

var peekCmd = &cobra.Command{
	Use:   "peek <file> <line> <col>",
	Short: "Show the enclosing function and its callees' definitions",
	Long:  "Finds the smallest function-like block containing the zero-based position, lists the distinct call sites inside it, and resolves each name to its definition.",
	Args:  cobra.ExactArgs(3),
	RunE:  runPeek,
}

var callsCmd = &cobra.Command{
	Use:   "calls <file> <line> <col>",
	Short: "List the call sites inside the enclosing function",
	Args:  cobra.ExactArgs(3),
	RunE:  runCalls,
}

// CLIScope is the enclosing scope in CLI output.
type CLIScope struct {
	Name      string `json:"name"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// CLICallSite is one call site in CLI output.
type CLICallSite struct {
	Name   string `json:"name"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// CLIDefinition is one resolved definition in CLI output.
type CLIDefinition struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Content   string `json:"content"`
}

// CLIPeekResult bundles one pipeline run for output.
type CLIPeekResult struct {
	Scope       CLIScope        `json:"scope"`
	CallSites   []CLICallSite   `json:"call_sites"`
	Definitions []CLIDefinition `json:"definitions"`
}

// runAt opens the index nearest to the file, runs the pipeline at the given
// position, and returns the result. A nil result means nothing to show.
func runAt(args []string) (*kodx.Result, error) {
	file, err := filepath.Abs(args[0])
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", args[0], err)
	}
	line, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid line %q", args[1])
	}
	col, err := strconv.Atoi(args[2])
	if err != nil {
		return nil, fmt.Errorf("invalid column %q", args[2])
	}

	dbPath := resolveDBPath(findRepoRoot(filepath.Dir(file)))
	engine, err := kodx.New(dbPath, kodx.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	defer engine.Close()

	ctx := context.Background()
	doc, err := engine.OpenDocument(ctx, file)
	if err != nil {
		return nil, err
	}
	return engine.Pipeline().Run(ctx, doc, kodx.Position{Line: line, Column: col}), nil
}

func runPeek(cmd *cobra.Command, args []string) error {
	res, err := runAt(args)
	if err != nil {
		return err
	}
	if res == nil {
		// Absence of a scope is normal, not an error state.
		fmt.Fprintln(os.Stderr, "Nothing to show: position is not inside a function.")
		return nil
	}

	out := CLIPeekResult{
		Scope: CLIScope{
			Name:      res.Scope.Name,
			StartLine: res.Scope.Range.Start.Line,
			EndLine:   res.Scope.Range.End.Line,
		},
		CallSites:   toCLICallSites(res.CallSites),
		Definitions: make([]CLIDefinition, 0, len(res.Definitions)),
	}
	for _, d := range res.Definitions {
		out.Definitions = append(out.Definitions, CLIDefinition{
			Name:      d.Name,
			File:      d.SourceURI,
			StartLine: d.StartLine,
			EndLine:   d.EndLine,
			Content:   d.Content,
		})
	}

	if flagFormat == "json" {
		return outputJSON(os.Stdout, out)
	}
	formatPeekText(os.Stdout, out)
	return nil
}

func runCalls(cmd *cobra.Command, args []string) error {
	res, err := runAt(args)
	if err != nil {
		return err
	}
	if res == nil {
		fmt.Fprintln(os.Stderr, "Nothing to show: position is not inside a function.")
		return nil
	}

	sites := toCLICallSites(res.CallSites)
	if flagFormat == "json" {
		return outputJSON(os.Stdout, sites)
	}
	formatCallSitesText(os.Stdout, sites)
	return nil
}

func toCLICallSites(sites []kodx.CallSite) []CLICallSite {
	out := make([]CLICallSite, 0, len(sites))
	for _, cs := range sites {
		out = append(out, CLICallSite{Name: cs.Name, Line: cs.Line, Column: cs.Column})
	}
	return out
}
