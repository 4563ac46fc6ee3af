package main

import (
	"flag"
	"fmt"

	"github.com/dusk-indust/slngraph/internal/export"
)

func runDiagram(args []string) error {
	var f buildFlags
	fs := flag.NewFlagSet("diagram", flag.ContinueOnError)
	addBuildFlags(fs, &f)
	if err := fs.Parse(args); err != nil {
		return err
	}
	entry, err := entryArg(fs)
	if err != nil {
		return err
	}

	g, err := buildGraph(f, entry)
	if err != nil {
		return err
	}
	printDiagnostics(g)

	fmt.Print(export.GenerateMermaid(g))
	return nil
}
