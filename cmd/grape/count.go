package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/SynthesisLab/grape/internal/grapeerr"
)

// runCount reports how many accepted trees an automaton has, by size, up
// to a given size.
func runCount(args []string) int {
	fs := pflag.NewFlagSet("count", pflag.ContinueOnError)
	input := fs.String("input", "-", "input automaton path (\"-\" for stdin)")
	format := fs.String("format", "", "input format: native, ebnf, or lark")
	size := fs.Int("size", 0, "max size to count up to")
	finalsOnly := fs.Bool("finals-only", true, "count only trees rooted at a final state")
	configPath := fs.String("config", "", "grape.toml path")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return reportErr(err)
	}
	if *size == 0 {
		*size = cfg.DefaultSize
	}

	g, err := readAutomatonFile(*input, resolveFormat(*format, *input, cfg))
	if err != nil {
		return reportErr(err)
	}

	if g.IsUnbounded() {
		return reportErr(grapeerr.UserInput("automaton is unbounded: tree counts are infinite past some size"))
	}

	bySize := g.TreesBySize(*size, *finalsOnly)
	for s := 1; s <= *size; s++ {
		fmt.Printf("%d\t%d\n", s, bySize[s])
	}
	fmt.Printf("total\t%d\n", g.TreesUntilSize(*size, *finalsOnly))
	return ExitSuccess
}
