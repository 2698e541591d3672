// Package serialize implements the three textual automaton formats of spec
// 6: native (round-trippable), EBNF, and Lark. State and letter identifiers
// are written exactly as the automaton carries them, so two runs over
// identical inputs (which already produce identical state labels, per spec
// 5) serialize identically.
package serialize

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/SynthesisLab/grape/internal/automaton"
)

// Format names one of the three emission formats a CLI --output path's
// extension or an explicit --format flag may select.
type Format string

const (
	Native Format = "native"
	EBNF   Format = "ebnf"
	Lark   Format = "lark"
)

// FormatFromExtension maps a file extension (".tfa", ".ebnf", ".lark") to a
// Format, defaulting to Native for anything else.
func FormatFromExtension(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "ebnf":
		return EBNF
	case "lark":
		return Lark
	default:
		return Native
	}
}

// Write renders g in the given format to w.
func Write(w io.Writer, g *automaton.DFTA, format Format) error {
	switch format {
	case EBNF:
		return writeGrammarFormat(w, g, " = ", " , ", " ;\n")
	case Lark:
		return writeGrammarFormat(w, g, " : ", " ", "\n")
	default:
		return WriteNative(w, g)
	}
}

// WriteNative renders g in the native format: a finals/letters/states
// header followed by one "dst,letter[,arg,...]" line per rule.
func WriteNative(w io.Writer, g *automaton.DFTA) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "finals:%s\n", strings.Join(g.Finals(), ","))
	fmt.Fprintf(bw, "letters:%s\n", strings.Join(sortedAlphabet(g), ","))
	fmt.Fprintf(bw, "states:%s\n", strings.Join(sortedStates(g), ","))
	for _, r := range g.Rules() {
		fields := append([]string{r.Dst, r.Letter}, r.Args...)
		fmt.Fprintln(bw, strings.Join(fields, ","))
	}
	return bw.Flush()
}

// ReadNative parses the native format written by WriteNative.
func ReadNative(r io.Reader) (*automaton.DFTA, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var finals []string
	lineNo := 0
	var rules []automaton.Rule
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		switch {
		case lineNo == 1:
			finals = splitNonEmpty(strings.TrimPrefix(line, "finals:"))
		case lineNo == 2:
			// letters line: informational, alphabet is re-derived from rules
		case lineNo == 3:
			// states line: informational, states are re-derived from rules
		case line == "":
			continue
		default:
			fields := strings.Split(line, ",")
			if len(fields) < 2 {
				return nil, fmt.Errorf("serialize: malformed rule line %d: %q", lineNo, line)
			}
			rules = append(rules, automaton.Rule{Dst: fields[0], Letter: fields[1], Args: fields[2:]})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("serialize: reading native automaton: %w", err)
	}
	return automaton.New(rules, finals), nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// writeGrammarFormat renders g as a grouped alternatives format: one
// production per destination state, its alternatives (one per producing
// rule) separated by altSep, each alternative a quoted letter followed by
// its argument states joined by argSep, terminated by lineEnd. Used for
// both EBNF (" = ", " , ", " ;\n") and Lark (" : ", " ", "\n").
func writeGrammarFormat(w io.Writer, g *automaton.DFTA, assign, argSep, lineEnd string) error {
	bw := bufio.NewWriter(w)

	byDst := map[string][]automaton.Rule{}
	for _, r := range g.Rules() {
		byDst[r.Dst] = append(byDst[r.Dst], r)
	}
	dsts := make([]string, 0, len(byDst))
	for d := range byDst {
		dsts = append(dsts, d)
	}
	sort.Strings(dsts)

	for _, dst := range dsts {
		rules := byDst[dst]
		sort.Slice(rules, func(i, j int) bool {
			return ruleAltString(rules[i], argSep) < ruleAltString(rules[j], argSep)
		})
		alts := make([]string, len(rules))
		for i, r := range rules {
			alts[i] = ruleAltString(r, argSep)
		}
		fmt.Fprintf(bw, "%s%s%s%s", dst, assign, strings.Join(alts, " | "), lineEnd)
	}
	return bw.Flush()
}

func ruleAltString(r automaton.Rule, argSep string) string {
	parts := append([]string{strconvQuote(r.Letter)}, r.Args...)
	return strings.Join(parts, argSep)
}

func strconvQuote(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

func sortedAlphabet(g *automaton.DFTA) []string {
	out := make([]string, 0)
	for l := range g.Alphabet() {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func sortedStates(g *automaton.DFTA) []string {
	out := make([]string, 0)
	for s := range g.States() {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
