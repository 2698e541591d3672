package main

import (
	"github.com/spf13/pflag"

	"github.com/SynthesisLab/grape/internal/commute"
	"github.com/SynthesisLab/grape/internal/evaluator"
	"github.com/SynthesisLab/grape/internal/grapeerr"
	"github.com/SynthesisLab/grape/internal/prune"
	"github.com/SynthesisLab/grape/internal/saturate"
	"github.com/SynthesisLab/grape/internal/typeexpr"
)

// runCompile saturates a commutativity-constrained mega grammar for a DSL
// and return type, without running observational-equivalence pruning. This
// is the grammar prune would enumerate against, exposed on its own so a
// caller can inspect its raw size before committing to a (possibly
// expensive) full pruning run.
func runCompile(args []string) int {
	fs := pflag.NewFlagSet("compile", pflag.ContinueOnError)
	dslPath := fs.String("dsl", "", "DSL manifest file")
	request := fs.String("request", "", "return type to build a mega grammar for")
	size := fs.Int("size", 0, "max program size")
	samples := fs.Int("samples", 0, "sample count for commutativity detection")
	seed := fs.Int64("seed", 0, "PRNG seed")
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
	if *size == 0 {
		*size = cfg.DefaultSize
	}
	if *samples == 0 {
		*samples = cfg.DefaultSamples
	}
	if *seed == 0 {
		*seed = cfg.DefaultSeed
	}

	d, baseInputs, err := loadDSL(*dslPath)
	if err != nil {
		return reportErr(err)
	}
	if *request == "" {
		return reportErr(grapeerr.UserInput("--request is required"))
	}

	samplable := make(map[string]bool, len(baseInputs))
	for t := range baseInputs {
		samplable[t] = true
	}
	typeReq := prune.InferMegaTypeRequest(d, *request, *size, samplable)

	ev := evaluator.New(d, baseInputs, *samples, nil, *seed)
	facts, err := commute.Detect(d, ev)
	if err != nil {
		return reportErr(grapeerr.WrapDomainInvariant(err, "detecting commutativity: %v", err))
	}

	grammar := saturate.BySaturation(d, typeReq, []saturate.Constraint{
		saturate.CommutativityConstraint(facts, typeexpr.ReturnType(typeReq)),
	})

	if err := writeAutomatonFile(*output, d.MergeTypeVariants(grammar), resolveFormat(*format, *output, cfg)); err != nil {
		return reportErr(err)
	}
	return ExitSuccess
}
