package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/afero"

	"github.com/dusk-indust/slngraph/internal/config"
	"github.com/dusk-indust/slngraph/internal/graph"
	"github.com/dusk-indust/slngraph/internal/source"
)

// buildFlags are the flags shared by every graph-building command.
type buildFlags struct {
	Fast      bool
	ConfigDir string
}

func addBuildFlags(fs *flag.FlagSet, f *buildFlags) {
	fs.BoolVar(&f.Fast, "fast", false, "skip type-usage and namespace-import edges")
	fs.StringVar(&f.ConfigDir, "config", ".", "directory holding slngraph.yml")
}

// buildGraph wires the parser and builder and runs one build for the given
// entry manifest. The build is cancelled on SIGINT.
func buildGraph(f buildFlags, entry string) (*graph.SolutionGraph, error) {
	cfg, err := config.Load(f.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	parser := source.NewTreeSitterParser()
	defer parser.Close()

	opts := graph.BuildDefault
	if f.Fast || cfg.Fast {
		opts = graph.BuildFast
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b := graph.NewBuilder(afero.NewOsFs(), parser, opts, cfg.ExcludeDirs...)
	return b.Build(ctx, entry)
}

// entryArg pulls the single positional entry path off a parsed flag set.
func entryArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one entry path (.sln or .csproj)")
	}
	return fs.Arg(0), nil
}

// printDiagnostics writes build diagnostics to stderr.
func printDiagnostics(g *graph.SolutionGraph) {
	for _, d := range g.Diagnostics() {
		if d.Path != "" {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", d.Path, d.Message)
			continue
		}
		fmt.Fprintf(os.Stderr, "warning: %s\n", d.Message)
	}
}
