package main

import (
	"github.com/spf13/pflag"
)

// runUnion writes the union of two automaton files (DFTA.Union).
func runUnion(args []string) int {
	fs := pflag.NewFlagSet("union", pflag.ContinueOnError)
	left := fs.String("left", "", "first input automaton path")
	right := fs.String("right", "", "second input automaton path")
	format := fs.String("format", "", "input/output format: native, ebnf, or lark")
	output := fs.String("output", "-", "output automaton path (\"-\" for stdout)")
	configPath := fs.String("config", "", "grape.toml path")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return reportErr(err)
	}

	a, err := readAutomatonFile(*left, resolveFormat(*format, *left, cfg))
	if err != nil {
		return reportErr(err)
	}
	b, err := readAutomatonFile(*right, resolveFormat(*format, *right, cfg))
	if err != nil {
		return reportErr(err)
	}

	if err := writeAutomatonFile(*output, a.Union(b), resolveFormat(*format, *output, cfg)); err != nil {
		return reportErr(err)
	}
	return ExitSuccess
}
