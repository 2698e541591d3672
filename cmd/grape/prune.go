package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/SynthesisLab/grape/internal/evaluator"
	"github.com/SynthesisLab/grape/internal/grapeerr"
	"github.com/SynthesisLab/grape/internal/prune"
)

// runPrune runs the full pruning driver and writes the despecialized
// (base-primitive-named) result grammar, printing a one-line summary of
// trees-before/after to stderr.
func runPrune(args []string) int {
	fs := pflag.NewFlagSet("prune", pflag.ContinueOnError)
	dslPath := fs.String("dsl", "", "DSL manifest file")
	request := fs.String("request", "", "return type to prune for")
	size := fs.Int("size", 0, "max program size")
	samples := fs.Int("samples", 0, "sample count for evaluation")
	seed := fs.Int64("seed", 0, "PRNG seed")
	output := fs.String("output", "-", "output automaton path (\"-\" for stdout)")
	format := fs.String("format", "", "output format: native, ebnf, or lark")
	configPath := fs.String("config", "", "grape.toml path")
	quiet := fs.Bool("quiet", false, "suppress the progress/summary report on stderr")
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

	ev := evaluator.New(d, baseInputs, *samples, nil, *seed)
	manager := prune.NewEquivalenceManager()

	var progress prune.Progress
	if !*quiet {
		progress = func(candidatesSeen, currentSize int) {
			fmt.Fprintf(os.Stderr, "\rgrape: prune: %d candidates seen (size %d)", candidatesSeen, currentSize)
		}
	}

	result, err := prune.Run(d, ev, manager, *size, *request, samplable, progress)
	if !*quiet {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return reportErr(grapeerr.WrapDomainInvariant(err, "pruning: %v", err))
	}

	if !*quiet {
		fmt.Fprintf(os.Stderr, "grape: prune: %d base trees, %d enumerated, %d kept\n",
			result.BaseTrees, result.EnumTrees, result.PrunedTrees)
	}

	despecialized := d.MergeTypeVariants(result.Grammar)
	if err := writeAutomatonFile(*output, despecialized, resolveFormat(*format, *output, cfg)); err != nil {
		return reportErr(err)
	}
	return ExitSuccess
}
