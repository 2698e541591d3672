// Package checkpoint persists a pruned grammar to disk between "grape
// prune" invocations using github.com/dekarrin/rezi, a compact binary
// serialization library. A large pruning run can take a long time; "grape
// prune --resume" loads a Snapshot instead of recomputing the base
// grammar from scratch.
package checkpoint

import (
	"fmt"
	"os"

	"github.com/dekarrin/rezi"

	"github.com/SynthesisLab/grape/internal/automaton"
)

// Rule is the exported, rezi-serializable mirror of automaton.Rule (whose
// own fields are already exported, but which we keep decoupled from the
// automaton package's internals in case its representation changes).
type Rule struct {
	Letter string
	Args   []string
	Dst    string
}

// Snapshot is everything a resumed pruning run needs: the type request the
// grammar was built for and the grammar itself, flattened to a plain rule
// list and final-state list.
type Snapshot struct {
	TypeReq string
	Rules   []Rule
	Finals  []string
}

// FromGrammar flattens g into a Snapshot for typeReq.
func FromGrammar(typeReq string, g *automaton.DFTA) Snapshot {
	rules := make([]Rule, 0, g.Size())
	for _, r := range g.Rules() {
		rules = append(rules, Rule{Letter: r.Letter, Args: append([]string{}, r.Args...), Dst: r.Dst})
	}
	return Snapshot{TypeReq: typeReq, Rules: rules, Finals: g.Finals()}
}

// Grammar rebuilds the automaton.DFTA s describes.
func (s Snapshot) Grammar() *automaton.DFTA {
	rules := make([]automaton.Rule, 0, len(s.Rules))
	for _, r := range s.Rules {
		rules = append(rules, automaton.Rule{Letter: r.Letter, Args: r.Args, Dst: r.Dst})
	}
	return automaton.New(rules, s.Finals)
}

// Save rezi-encodes s and writes it to path, overwriting any existing file.
func Save(path string, s Snapshot) error {
	data := rezi.EncBinary(s)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("checkpoint: write %s: %w", path, err)
	}
	return nil
}

// Load reads and rezi-decodes the Snapshot at path.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("checkpoint: read %s: %w", path, err)
	}
	var s Snapshot
	n, err := rezi.DecBinary(data, &s)
	if err != nil {
		return Snapshot{}, fmt.Errorf("checkpoint: decode %s: %w", path, err)
	}
	if n != len(data) {
		return Snapshot{}, fmt.Errorf("checkpoint: decode %s: consumed %d/%d bytes", path, n, len(data))
	}
	return s, nil
}
