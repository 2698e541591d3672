package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/SynthesisLab/grape/internal/enumerator"
)

// runEnum lists every accepted program of an automaton up to a given size,
// one per line, grouped by size.
func runEnum(args []string) int {
	fs := pflag.NewFlagSet("enum", pflag.ContinueOnError)
	input := fs.String("input", "-", "input automaton path (\"-\" for stdin)")
	format := fs.String("format", "", "input format: native, ebnf, or lark")
	size := fs.Int("size", 0, "max program size to enumerate up to")
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

	enum := enumerator.New(g)
	sess := enum.EnumerateUntilSize(*size + 1)
	for {
		_, ok := sess.Next()
		if !ok {
			break
		}
		sess.Keep(true)
	}

	for s := 1; s <= *size; s++ {
		for _, progs := range enum.FinalProgramsAt(s) {
			for _, p := range progs {
				fmt.Printf("%d\t%s\n", s, p.String())
			}
		}
	}
	return ExitSuccess
}
