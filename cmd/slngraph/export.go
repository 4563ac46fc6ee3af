package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/slngraph/internal/export"
)

func runExport(args []string) error {
	var f buildFlags
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
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

	data := export.ExportSolution(g, entry)
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}
