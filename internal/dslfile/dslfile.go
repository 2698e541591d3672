// Package dslfile loads a DSL registry and its sampling inputs from a
// TOML manifest: domain content lives in the file, mechanics stay fixed
// in Go code. A manifest cannot carry executable primitive semantics
// directly — instead each primitive names a "semantic" key that is
// resolved against a small built-in registry (builtins.go) covering the
// integer/boolean/conditional vocabulary used throughout grape's own DSLs.
package dslfile

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/SynthesisLab/grape/internal/dsl"
)

// FileInfo is the common header every DSL manifest file carries, mirroring
// tqw.FileInfo's format/type discriminator.
type FileInfo struct {
	Format string `toml:"format"`
}

// primitiveEntry is one [[primitive]] table in a manifest file.
type primitiveEntry struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"`
	Semantic string `toml:"semantic"`
}

// samplerEntry is one [[sampler]] table, giving a pool of concrete values an
// Evaluator may draw from when sampling inputs of the named type. Values are
// TOML-native (strings, integers, booleans, floats); BoolPool/IntPool/
// StringPool select which field is meaningful for a given type.
type samplerEntry struct {
	Type       string   `toml:"type"`
	IntPool    []int64  `toml:"int_pool"`
	BoolPool   []bool   `toml:"bool_pool"`
	StringPool []string `toml:"string_pool"`
}

// manifest is the raw decoded shape of a DSL manifest file.
type manifest struct {
	FileInfo
	Primitive []primitiveEntry `toml:"primitive"`
	Sampler   []samplerEntry   `toml:"sampler"`
}

// Definition is a loaded DSL manifest: a ready-to-use registry plus the base
// input pools an Evaluator needs for sampling.
type Definition struct {
	DSL        *dsl.DSL
	BaseInputs map[string][]dsl.Value
}

// Load reads and parses the DSL manifest at path.
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("dslfile: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes manifest TOML data into a Definition, resolving each
// primitive's "semantic" key against the built-in registry.
func Parse(data []byte) (Definition, error) {
	var raw manifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Definition{}, fmt.Errorf("dslfile: parse manifest: %w", err)
	}
	if raw.Format != "" && raw.Format != "GRAPE-DSL" {
		return Definition{}, fmt.Errorf("dslfile: unsupported manifest format %q", raw.Format)
	}
	if len(raw.Primitive) == 0 {
		return Definition{}, fmt.Errorf("dslfile: manifest lists no primitives")
	}

	entries := make(map[string]dsl.Entry, len(raw.Primitive))
	for _, p := range raw.Primitive {
		if p.Name == "" || p.Type == "" {
			return Definition{}, fmt.Errorf("dslfile: primitive entry missing name or type: %+v", p)
		}
		sem, ok := builtinSemantics[p.Semantic]
		if !ok {
			return Definition{}, fmt.Errorf("dslfile: primitive %q: unknown semantic %q (%s)", p.Name, p.Semantic, availableSemantics())
		}
		entries[p.Name] = dsl.Entry{Type: p.Type, Semantic: sem}
	}

	registry, err := dsl.New(entries)
	if err != nil {
		return Definition{}, fmt.Errorf("dslfile: building registry: %w", err)
	}

	baseInputs := map[string][]dsl.Value{}
	for _, s := range raw.Sampler {
		if s.Type == "" {
			return Definition{}, fmt.Errorf("dslfile: sampler entry missing type")
		}
		var pool []dsl.Value
		switch {
		case len(s.IntPool) > 0:
			for _, v := range s.IntPool {
				pool = append(pool, int(v))
			}
		case len(s.BoolPool) > 0:
			for _, v := range s.BoolPool {
				pool = append(pool, v)
			}
		case len(s.StringPool) > 0:
			for _, v := range s.StringPool {
				pool = append(pool, v)
			}
		default:
			return Definition{}, fmt.Errorf("dslfile: sampler for type %q has no values", s.Type)
		}
		baseInputs[s.Type] = append(baseInputs[s.Type], pool...)
	}

	return Definition{DSL: registry, BaseInputs: baseInputs}, nil
}

// availableSemantics returns a sorted, comma-joined list of registered
// built-in semantic names, used to build helpful "unknown semantic" errors.
func availableSemantics() string {
	names := make([]string, 0, len(builtinSemantics))
	for n := range builtinSemantics {
		names = append(names, n)
	}
	sort.Strings(names)
	return "known semantics: " + fmt.Sprint(names)
}
