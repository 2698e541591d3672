// Package enumerator implements size-stratified, bottom-up enumeration of
// the programs accepted by a DFTA. Iteration is an explicit pull: a Session
// yields one candidate program at a time through Next and the caller
// reports back via Keep whether that program should be memoized for reuse
// by larger programs.
package enumerator

import (
	"strconv"
	"strings"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/SynthesisLab/grape/internal/partition"
	"github.com/SynthesisLab/grape/internal/term"
)

const argsKeySep = "\x1f"

// Enumerator holds the grammar being enumerated plus the size-indexed
// program memory and argument-combination cache that make larger sizes
// reuse smaller ones instead of re-deriving them.
type Enumerator struct {
	grammar             *automaton.DFTA
	states              []string
	memory              map[string]map[int][]*term.Term
	memoryCombinations  map[string]map[int][][]*term.Term
	currentSize         int
}

// New builds an Enumerator over grammar. States are snapshotted (sorted)
// at construction time; rules added to grammar afterwards are not seen.
func New(grammar *automaton.DFTA) *Enumerator {
	e := &Enumerator{
		grammar:            grammar,
		memory:             map[string]map[int][]*term.Term{},
		memoryCombinations: map[string]map[int][][]*term.Term{},
	}
	for s := range grammar.States() {
		e.states = append(e.states, s)
	}
	sortStrings(e.states)
	for _, s := range e.states {
		e.memory[s] = map[int][]*term.Term{}
	}
	for _, s := range e.states {
		for _, r := range grammar.ReversedRules(s) {
			if len(r.Args) == 0 {
				continue
			}
			key := argsKey(r.Args)
			if _, ok := e.memoryCombinations[key]; !ok {
				e.memoryCombinations[key] = map[int][][]*term.Term{}
			}
		}
	}
	return e
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func argsKey(args []string) string {
	return strings.Join(args, argsKeySep)
}

// CountProgramsAtSize sums, across all states, how many programs of exactly
// size have been memoized so far.
func (e *Enumerator) CountProgramsAtSize(size int) int {
	total := 0
	for _, bySize := range e.memory {
		total += len(bySize[size])
	}
	return total
}

// States returns the enumerator's state list, snapshotted at construction,
// in sorted order.
func (e *Enumerator) States() []string {
	return append([]string{}, e.states...)
}

// ProgramsAt returns the memoized programs of exactly size that derive
// state, or nil if none have been enumerated (yet, or ever).
func (e *Enumerator) ProgramsAt(state string, size int) []*term.Term {
	return e.memory[state][size]
}

// FinalProgramsAt returns, per final state, the memoized programs of
// exactly size deriving it.
func (e *Enumerator) FinalProgramsAt(size int) map[string][]*term.Term {
	out := map[string][]*term.Term{}
	for _, s := range e.states {
		if !e.grammar.IsFinal(s) {
			continue
		}
		if progs := e.memory[s][size]; len(progs) > 0 {
			out[s] = progs
		}
	}
	return out
}

func (e *Enumerator) appendMemory(state string, size int, p *term.Term) {
	e.memory[state][size] = append(e.memory[state][size], p)
}

func letterToLeafTerm(letter string) *term.Term {
	if strings.HasPrefix(letter, "var") {
		if idx, err := strconv.Atoi(letter[3:]); err == nil {
			return term.Variable(idx)
		}
	}
	return term.Primitive(letter)
}

// queryCombinations returns every combination of already-memoized programs
// for args (one state per argument position) whose sizes sum to size,
// caching the result the first time it is computed for (args, size).
func (e *Enumerator) queryCombinations(args []string, size int) [][]*term.Term {
	key := argsKey(args)
	if cached, ok := e.memoryCombinations[key][size]; ok {
		return cached
	}
	var mem [][]*term.Term
	partition.Compositions(len(args), size, func(parts []int) bool {
		possibles := make([][]*term.Term, len(args))
		for i, state := range args {
			possibles[i] = e.memory[state][parts[i]]
			if len(possibles[i]) == 0 {
				return true
			}
		}
		mem = append(mem, cartesianTerms(possibles)...)
		return true
	})
	if e.memoryCombinations[key] == nil {
		e.memoryCombinations[key] = map[int][][]*term.Term{}
	}
	e.memoryCombinations[key][size] = mem
	return mem
}

func cartesianTerms(possibles [][]*term.Term) [][]*term.Term {
	total := 1
	for _, p := range possibles {
		total *= len(p)
	}
	out := make([][]*term.Term, 0, total)
	idx := make([]int, len(possibles))
	for {
		combo := make([]*term.Term, len(possibles))
		for i, p := range possibles {
			combo[i] = p[idx[i]]
		}
		out = append(out, combo)
		i := len(possibles) - 1
		for i >= 0 {
			idx[i]++
			if idx[i] < len(possibles[i]) {
				break
			}
			idx[i] = 0
			i--
		}
		if i < 0 {
			break
		}
	}
	return out
}

// Session is one in-flight run of EnumerateUntilSize: a pull-based stream
// of candidate programs at final states, paused after each one until the
// caller reports whether to keep it.
type Session struct {
	out chan *term.Term
	in  chan bool
}

// Next blocks until the next candidate program is ready, or the session has
// finished (ok=false). The caller must call Keep exactly once after a
// successful Next before calling Next again.
func (s *Session) Next() (program *term.Term, ok bool) {
	p, open := <-s.out
	return p, open
}

// Keep reports whether the most recently returned candidate should be
// memoized for reuse by larger derivations.
func (s *Session) Keep(keep bool) {
	s.in <- keep
}

// EnumerateUntilSize grows the enumerator's memory one size at a time, up
// to but excluding size, returning a Session that surfaces every candidate
// program landing in a final state for the caller to accept or reject.
// Calling EnumerateUntilSize again with a larger size resumes from where
// the previous call left off, reusing everything already memoized.
func (e *Enumerator) EnumerateUntilSize(size int) *Session {
	s := &Session{out: make(chan *term.Term), in: make(chan bool)}
	go e.run(s, size)
	return s
}

func (e *Enumerator) run(s *Session, size int) {
	defer close(s.out)
	for e.currentSize+1 < size {
		e.currentSize++
		if e.currentSize == 1 {
			for _, state := range e.states {
				for _, r := range e.grammar.ReversedRules(state) {
					if len(r.Args) != 0 {
						continue
					}
					p := letterToLeafTerm(r.Letter)
					keep := true
					if e.grammar.IsFinal(state) {
						s.out <- p
						keep = <-s.in
					}
					if keep {
						e.appendMemory(state, 1, p)
					}
				}
			}
			continue
		}
		for _, state := range e.states {
			for _, r := range e.grammar.ReversedRules(state) {
				if len(r.Args) == 0 {
					continue
				}
				for _, combo := range e.queryCombinations(r.Args, e.currentSize-1) {
					program := term.Apply(term.Primitive(r.Letter), combo)
					if e.grammar.IsFinal(state) {
						s.out <- program
						if <-s.in {
							e.appendMemory(state, e.currentSize, program)
						}
					} else {
						e.appendMemory(state, e.currentSize, program)
					}
				}
			}
		}
	}
}
