package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// validateFormat rejects unknown --format values before any command runs.
func validateFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	}
	return fmt.Errorf("invalid format %q (expected json or text)", format)
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatPeekText renders a peek result: scope header, call-site table, then
// each definition with its source text indented.
func formatPeekText(w io.Writer, res CLIPeekResult) {
	fmt.Fprintf(w, "Scope: %s (lines %d-%d)\n", res.Scope.Name, res.Scope.StartLine, res.Scope.EndLine)

	if len(res.CallSites) == 0 {
		fmt.Fprintln(w, "No call sites.")
		return
	}
	fmt.Fprintln(w)
	formatCallSitesText(w, res.CallSites)

	for _, d := range res.Definitions {
		fmt.Fprintf(w, "\n%s  %s:%d-%d\n", d.Name, d.File, d.StartLine, d.EndLine)
		for _, line := range strings.Split(d.Content, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

// formatCallSitesText formats call sites as aligned columns.
func formatCallSitesText(w io.Writer, sites []CLICallSite) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLINE\tCOL")
	for _, cs := range sites {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", cs.Name, cs.Line, cs.Column)
	}
	tw.Flush()
}
