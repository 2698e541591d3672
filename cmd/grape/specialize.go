package main

import (
	"github.com/spf13/pflag"

	"github.com/SynthesisLab/grape/internal/grapeerr"
	"github.com/SynthesisLab/grape/internal/typeexpr"
)

// runSpecialize rewrites a base-named automaton's alphabet to the DSL's
// per-variant synthetic names, inferring each state's monomorphic type
// from the given type request.
func runSpecialize(args []string) int {
	fs := pflag.NewFlagSet("specialize", pflag.ContinueOnError)
	dslPath := fs.String("dsl", "", "DSL manifest file")
	request := fs.String("request", "", "type request the input automaton was built for")
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
	if *request == "" {
		return reportErr(grapeerr.UserInput("--request is required"))
	}

	g, err := readAutomatonFile(*input, resolveFormat(*format, *input, cfg))
	if err != nil {
		return reportErr(err)
	}

	specialized, err := d.MapToVariants(g, typeexpr.Arguments(*request))
	if err != nil {
		return reportErr(grapeerr.WrapDomainInvariant(err, "specializing: %v", err))
	}

	if err := writeAutomatonFile(*output, specialized, resolveFormat(*format, *output, cfg)); err != nil {
		return reportErr(err)
	}
	return ExitSuccess
}
