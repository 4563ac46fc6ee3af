package main

import (
	"fmt"
	"os"
)

// version is set by goreleaser at build time.
var version = "dev"

const usage = `usage: slngraph <command> [flags] <entry>

Commands:
  build    build the graph and print node/edge statistics
  stats    alias for build
  export   build the graph and print a JSON summary
  diagram  build the graph and print a Mermaid project diagram
  impact   build the graph and analyze a proposed change
  version  print version and exit

Entry is a path to a .sln or .csproj file.`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Println(usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "build", "stats":
		return runStats(rest)
	case "export":
		return runExport(rest)
	case "diagram":
		return runDiagram(rest)
	case "impact":
		return runImpact(rest)
	case "version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}
