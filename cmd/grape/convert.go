package main

import (
	"github.com/spf13/pflag"
)

// runConvert re-emits an automaton file in a different format (e.g. native
// to EBNF for feeding a third-party parser generator).
func runConvert(args []string) int {
	fs := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	input := fs.String("input", "-", "input automaton path (\"-\" for stdin)")
	inFormat := fs.String("from", "", "input format: native, ebnf, or lark")
	output := fs.String("output", "-", "output automaton path (\"-\" for stdout)")
	outFormat := fs.String("to", "", "output format: native, ebnf, or lark")
	configPath := fs.String("config", "", "grape.toml path")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return reportErr(err)
	}

	g, err := readAutomatonFile(*input, resolveFormat(*inFormat, *input, cfg))
	if err != nil {
		return reportErr(err)
	}
	if err := writeAutomatonFile(*output, g, resolveFormat(*outFormat, *output, cfg)); err != nil {
		return reportErr(err)
	}
	return ExitSuccess
}
