package main

import (
	"github.com/spf13/pflag"
)

// runDespecialize rewrites a specialized automaton's alphabet back to the
// DSL's base primitive names.
func runDespecialize(args []string) int {
	fs := pflag.NewFlagSet("despecialize", pflag.ContinueOnError)
	dslPath := fs.String("dsl", "", "DSL manifest file")
	input := fs.String("input", "-", "input automaton path (\"-\" for stdin)")
	output := fs.String("output", "-", "output automaton path (\"-\" for stdout)")
	format := fs.String("format", "", "output format: native, ebnf, or lark")
	configPath := fs.String("config", "", "grape.toml path")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return reportErr(err)
	}
	d, _, err := loadDSL(*dslPath)
	if err != nil {
		return reportErr(err)
	}

	g, err := readAutomatonFile(*input, resolveFormat(*format, *input, cfg))
	if err != nil {
		return reportErr(err)
	}

	despecialized := d.MergeTypeVariants(g)
	if err := writeAutomatonFile(*output, despecialized, resolveFormat(*format, *output, cfg)); err != nil {
		return reportErr(err)
	}
	return ExitSuccess
}
