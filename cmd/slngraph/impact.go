package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/dusk-indust/slngraph/internal/analysis"
	"github.com/dusk-indust/slngraph/internal/graph"
)

func runImpact(args []string) error {
	var f buildFlags
	var (
		op     string
		target string
		dest   string
		force  bool
		doCopy bool
	)

	fs := flag.NewFlagSet("impact", flag.ContinueOnError)
	addBuildFlags(fs, &f)
	fs.StringVar(&op, "op", "", "operation: move, move-type, rename-ns, delete")
	fs.StringVar(&target, "target", "", "operation target: file/folder paths (comma-separated), type full name, or namespace")
	fs.StringVar(&dest, "dest", "", "destination folder (move) or new namespace (rename-ns)")
	fs.BoolVar(&force, "force", false, "allow delete even when the file is referenced")
	fs.BoolVar(&doCopy, "copy", false, "analyze a copy instead of a move")
	if err := fs.Parse(args); err != nil {
		return err
	}
	entry, err := entryArg(fs)
	if err != nil {
		return err
	}
	if op == "" || target == "" {
		return fmt.Errorf("impact requires -op and -target")
	}

	g, err := buildGraph(f, entry)
	if err != nil {
		return err
	}

	report, err := analyze(g, op, target, dest, force, doCopy)
	if err != nil {
		return err
	}

	fmt.Print(report.Markdown())
	if len(report.Errors) > 0 {
		return errors.New("impact analysis reported errors")
	}
	return nil
}

func analyze(g *graph.SolutionGraph, op, target, dest string, force, doCopy bool) (*analysis.ImpactReport, error) {
	switch op {
	case "move":
		if dest == "" {
			return nil, fmt.Errorf("move requires -dest")
		}
		return analysis.AnalyzeMove(g, analysis.MoveOp{
			Paths: strings.Split(target, ","),
			Dest:  dest,
			Copy:  doCopy,
		}), nil
	case "move-type":
		return analysis.AnalyzeMoveType(g, analysis.MoveTypeOp{TypeFullName: target}), nil
	case "rename-ns":
		if dest == "" {
			return nil, fmt.Errorf("rename-ns requires -dest")
		}
		return analysis.AnalyzeRenameNamespace(g, analysis.RenameNamespaceOp{From: target, To: dest}), nil
	case "delete":
		return analysis.AnalyzeDelete(g, analysis.DeleteOp{Path: target, Force: force}), nil
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}
