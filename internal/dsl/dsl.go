// Package dsl holds the registry of DSL primitives: each primitive's type
// string, its expansion into monomorphic variants, and its opaque semantic
// callable, plus the DFTA<->DSL bridging operations (state-type inference,
// specialize/despecialize, variant collapse).
package dsl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/SynthesisLab/grape/internal/typeexpr"
)

// variantSep joins a primitive's base name to a monomorphic variant's type
// string when more than one variant exists, e.g. "ite|@>bool->int->int->int".
const variantSep = "|@>"

// Value is the opaque result of evaluating a DSL primitive or program. It
// must be comparable so evaluator signature tuples can use it as a map key.
type Value = any

// Semantic is the callable behind a DSL primitive: given its evaluated
// arguments (already in application order), produce a result.
type Semantic func(args []Value) Value

// Entry is a single registered primitive before variant expansion.
type Entry struct {
	Type     string
	Semantic Semantic
}

// DSL is the expanded primitive registry: name -> (type, semantic), where
// names with more than one monomorphic variant have been split into
// synthetic "name|@>variant-type" entries sharing the base semantic, plus
// the base->original type and the synthetic->base collapse map needed to
// undo that split later.
type DSL struct {
	primitives map[string]Entry // synthetic or original name -> (variant type, semantic)
	original   map[string]string // original name -> original (unexpanded) type string
	toMerge    map[string]string // synthetic name -> base name
	names      []string          // insertion order of original primitive names
}

// New builds a DSL registry from a name -> Entry map, expanding any
// primitive whose type has more than one monomorphic variant into
// synthetic per-variant entries.
func New(entries map[string]Entry) (*DSL, error) {
	d := &DSL{
		primitives: map[string]Entry{},
		original:   map[string]string{},
		toMerge:    map[string]string{},
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	d.names = names

	for _, name := range names {
		e := entries[name]
		d.original[name] = e.Type
		variants, err := typeexpr.AllVariants(e.Type)
		if err != nil {
			return nil, fmt.Errorf("dsl: primitive %q: %w", name, err)
		}
		if len(variants) == 1 {
			d.primitives[name] = e
			continue
		}
		for _, v := range variants {
			synthetic := variantName(name, v)
			d.primitives[synthetic] = Entry{Type: v, Semantic: e.Semantic}
			d.toMerge[synthetic] = name
		}
	}
	return d, nil
}

func variantName(base, variantType string) string {
	return base + variantSep + variantType
}

// Names returns the registered (post-expansion) primitive names, sorted.
func (d *DSL) Names() []string {
	out := make([]string, 0, len(d.primitives))
	for n := range d.primitives {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// OriginalNames returns the primitive names as originally supplied, before
// variant expansion.
func (d *DSL) OriginalNames() []string {
	return append([]string{}, d.names...)
}

// OriginalType returns the type string exactly as registered (before
// variant expansion) for an original primitive name.
func (d *DSL) OriginalType(name string) (string, bool) {
	t, ok := d.original[name]
	return t, ok
}

// Type returns the (post-expansion) type string of a primitive, and whether
// it is registered.
func (d *DSL) Type(name string) (string, bool) {
	e, ok := d.primitives[name]
	if !ok {
		return "", false
	}
	return e.Type, true
}

// Semantic returns the callable behind a registered primitive name.
func (d *DSL) Semantic(name string) (Semantic, bool) {
	e, ok := d.primitives[name]
	if !ok {
		return nil, false
	}
	return e.Semantic, true
}

// Apply invokes the named primitive's semantic on args.
func (d *DSL) Apply(name string, args []Value) (Value, error) {
	fn, ok := d.Semantic(name)
	if !ok {
		return nil, fmt.Errorf("dsl: unknown primitive %q", name)
	}
	return fn(args), nil
}

// MaxArity returns the largest number of arguments among all registered
// (post-expansion) primitives.
func (d *DSL) MaxArity() int {
	max := 0
	for _, e := range d.primitives {
		if n := len(typeexpr.Arguments(e.Type)); n > max {
			max = n
		}
	}
	return max
}

// AmbiguousStateTypeError is raised when get_state_types's fixpoint cannot
// disambiguate which monomorphic variant of a primitive a rule uses.
type AmbiguousStateTypeError struct {
	Letter string
	Rule   automaton.Rule
}

func (e *AmbiguousStateTypeError) Error() string {
	return fmt.Sprintf("dsl: ambiguous state type for primitive %q in rule %+v", e.Letter, e.Rule)
}

// GetStateTypes infers, for every reachable state of a in an automaton whose
// alphabet uses original (non-variant) primitive names and "varN" variable
// letters, the single monomorphic type that state produces. varArgTypes
// gives the type of each variable index (the type request's argument
// list): unlike a primitive's type, a variable's type cannot be derived
// from the automaton's structure alone, since nothing forces its
// destination state's label to reveal it. Runs a fixpoint over a's
// primitive rules, deferring any whose primitive still has more than one
// type-consistent variant given what's known so far, until either every
// state is typed or no further progress can be made (ambiguous).
func (d *DSL) GetStateTypes(a *automaton.DFTA, varArgTypes []string) (map[string]string, error) {
	stateType := map[string]string{}
	pending := a.Rules()

	for len(pending) > 0 {
		progressed := false
		var next []automaton.Rule
		for _, r := range pending {
			var letterType string
			if strings.HasPrefix(r.Letter, "var") {
				idx, err := strconv.Atoi(r.Letter[3:])
				if err != nil || idx < 0 || idx >= len(varArgTypes) {
					return nil, fmt.Errorf("dsl: variable letter %q has no known type", r.Letter)
				}
				letterType = varArgTypes[idx]
			} else {
				base, ok := d.original[r.Letter]
				if !ok {
					return nil, fmt.Errorf("dsl: unknown primitive %q", r.Letter)
				}
				possibles, err := typeexpr.AllVariants(base)
				if err != nil {
					return nil, err
				}
				for i, argState := range r.Args {
					t, known := stateType[argState]
					if !known {
						continue
					}
					filtered := possibles[:0:0]
					for _, p := range possibles {
						if typeexpr.Arguments(p)[i] == t {
							filtered = append(filtered, p)
						}
					}
					possibles = filtered
				}
				if len(possibles) > 1 {
					next = append(next, r)
					continue
				}
				if len(possibles) == 0 {
					return nil, &AmbiguousStateTypeError{Letter: r.Letter, Rule: r}
				}
				letterType = typeexpr.ReturnType(possibles[0])
			}
			if existing, ok := stateType[r.Dst]; ok && existing != letterType {
				return nil, &AmbiguousStateTypeError{Letter: r.Letter, Rule: r}
			}
			stateType[r.Dst] = letterType
			progressed = true
		}
		if !progressed && len(next) > 0 {
			return nil, &AmbiguousStateTypeError{Letter: next[0].Letter, Rule: next[0]}
		}
		pending = next
	}
	return stateType, nil
}

// MapToVariants rewrites each rule of a (whose alphabet uses original
// primitive names) to use the specific synthetic variant matching its
// argument/result state types, inferred via GetStateTypes. varArgTypes
// gives the type of each "varN" letter in a's alphabet.
func (d *DSL) MapToVariants(a *automaton.DFTA, varArgTypes []string) (*automaton.DFTA, error) {
	stateType, err := d.GetStateTypes(a, varArgTypes)
	if err != nil {
		return nil, err
	}
	out := automaton.Empty()
	for _, r := range a.Rules() {
		letter := r.Letter
		if base, ok := d.original[r.Letter]; ok {
			variants, err := typeexpr.AllVariants(base)
			if err != nil {
				return nil, err
			}
			if len(variants) > 1 {
				filtered := variants[:0:0]
				for _, v := range variants {
					if typeexpr.ReturnType(v) == stateType[r.Dst] {
						filtered = append(filtered, v)
					}
				}
				variants = filtered
				for i, argState := range r.Args {
					filtered = variants[:0:0]
					for _, v := range variants {
						if typeexpr.Arguments(v)[i] == stateType[argState] {
							filtered = append(filtered, v)
						}
					}
					variants = filtered
				}
				if len(variants) != 1 {
					return nil, &AmbiguousStateTypeError{Letter: r.Letter, Rule: r}
				}
				letter = variantName(r.Letter, variants[0])
			}
		}
		out.AddRule(automaton.Rule{Letter: letter, Args: r.Args, Dst: r.Dst})
	}
	for _, f := range a.Finals() {
		out.SetFinal(f)
	}
	return out, nil
}

// MergeTypeVariants is the inverse of MapToVariants: it rewrites every
// synthetic "name|@>type" letter back to its base primitive name.
func (d *DSL) MergeTypeVariants(a *automaton.DFTA) *automaton.DFTA {
	return a.MapAlphabet(func(letter string) string {
		if base, ok := d.toMerge[letter]; ok {
			return base
		}
		return letter
	})
}
