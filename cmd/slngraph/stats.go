package main

import (
	"flag"
	"fmt"
	"sort"
)

func runStats(args []string) error {
	var f buildFlags
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
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

	stats := g.Statistics()

	fmt.Println("Nodes:")
	printCounts(toStringMap(stats.Nodes))
	fmt.Println("Edges:")
	printCounts(toStringMap(stats.Edges))
	return nil
}

func toStringMap[K ~string](m map[K]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, n := range m {
		out[string(k)] = n
	}
	return out
}

func printCounts(m map[string]int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-28s %d\n", k, m[k])
	}
}
