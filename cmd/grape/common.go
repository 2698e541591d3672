package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/SynthesisLab/grape/internal/config"
	"github.com/SynthesisLab/grape/internal/dsl"
	"github.com/SynthesisLab/grape/internal/dslfile"
	"github.com/SynthesisLab/grape/internal/grapeerr"
	"github.com/SynthesisLab/grape/internal/serialize"
)

// loadConfig reads grape.toml from path if non-empty, else from
// config.DefaultPath, and fills in built-in defaults over whatever it
// finds. A missing file is not an error.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	return cfg.FillDefaults(), nil
}

// loadDSL reads a DSL manifest at path into a registry and its sampler base
// inputs.
func loadDSL(path string) (*dsl.DSL, map[string][]dsl.Value, error) {
	if path == "" {
		return nil, nil, grapeerr.UserInput("--dsl is required")
	}
	def, err := dslfile.Load(path)
	if err != nil {
		return nil, nil, grapeerr.WrapUserInput(err, "loading DSL manifest %s: %v", path, err)
	}
	return def.DSL, def.BaseInputs, nil
}

// resolveFormat picks the serialization format to use: an explicit
// --format flag wins, otherwise the path's extension decides, otherwise
// cfg's configured default.
func resolveFormat(explicit, path string, cfg config.Config) serialize.Format {
	if explicit != "" {
		return serialize.Format(explicit)
	}
	if path != "" && path != "-" {
		return serialize.FormatFromExtension(filepath.Ext(path))
	}
	return serialize.Format(cfg.DefaultFormat)
}

// readAutomatonFile loads an automaton from path (or stdin if path is "-"
// or empty) in the given format.
func readAutomatonFile(path string, format serialize.Format) (*automaton.DFTA, error) {
	var f *os.File
	if path == "" || path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, grapeerr.WrapUserInput(err, "reading automaton %s: %v", path, err)
		}
		defer f.Close()
	}
	if format != serialize.Native {
		return nil, grapeerr.UserInput("reading automata is only supported in native format, got %q", format)
	}
	g, err := serialize.ReadNative(f)
	if err != nil {
		return nil, grapeerr.WrapUserInput(err, "parsing automaton %s: %v", path, err)
	}
	return g, nil
}

// writeAutomatonFile writes g to path (or stdout if path is "-" or empty)
// in the given format.
func writeAutomatonFile(path string, g *automaton.DFTA, format serialize.Format) error {
	var f *os.File
	if path == "" || path == "-" {
		f = os.Stdout
	} else {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return grapeerr.WrapUserInput(err, "writing automaton %s: %v", path, err)
		}
		defer f.Close()
	}
	if err := serialize.Write(f, g, format); err != nil {
		return grapeerr.WrapDomainInvariant(err, "serializing automaton: %v", err)
	}
	return nil
}

// reportErr prints err to stderr and returns the process exit code it maps
// to, via grapeerr.ExitCode for errors from this module's own taxonomy or
// ExitUsageError for anything else.
func reportErr(err error) int {
	fmt.Fprintf(os.Stderr, "grape: %v\n", err)
	if err == nil {
		return ExitSuccess
	}
	return grapeerr.ExitCode(err)
}
