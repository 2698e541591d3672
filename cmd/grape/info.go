package main

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rosed"
	"github.com/spf13/pflag"

	"github.com/SynthesisLab/grape/internal/automaton"
)

// runInfo prints a column-aligned summary of an automaton file: state and
// rule counts, alphabet, finals, and whether it accepts unboundedly large
// programs.
func runInfo(args []string) int {
	fs := pflag.NewFlagSet("info", pflag.ContinueOnError)
	input := fs.String("input", "-", "input automaton path (\"-\" for stdin)")
	format := fs.String("format", "", "input format: native, ebnf, or lark")
	configPath := fs.String("config", "", "grape.toml path")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return reportErr(err)
	}

	g, err := readAutomatonFile(*input, resolveFormat(*format, *input, cfg))
	if err != nil {
		return reportErr(err)
	}

	fmt.Print(describeAutomaton(g))
	return ExitSuccess
}

func describeAutomaton(g *automaton.DFTA) string {
	data := [][]string{
		{"property", "value"},
		{"states", fmt.Sprint(len(g.States()))},
		{"rules", fmt.Sprint(g.Size())},
		{"finals", fmt.Sprint(len(g.Finals()))},
		{"alphabet size", fmt.Sprint(len(g.Alphabet()))},
		{"max arity", fmt.Sprint(g.MaxArity())},
		{"unbounded", fmt.Sprint(g.IsUnbounded())},
	}

	alphabet := make([]string, 0, len(g.Alphabet()))
	for l := range g.Alphabet() {
		alphabet = append(alphabet, l)
	}
	sort.Strings(alphabet)

	tableOpts := rosed.Options{TableHeaders: true, NoTrailingLineSeparators: true}
	table := rosed.Edit("").InsertTableOpts(0, data, 80, tableOpts).String()

	return table + "\nalphabet: " + fmt.Sprint(alphabet) + "\n"
}
