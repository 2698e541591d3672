// Package typeexpr parses and expands the arrow-type mini-language used to
// describe DSL primitive signatures: "t1 -> ... -> tn -> tr", with monomorphic
// sum alternatives ("a|b") and named polymorphic slots ("'name[a|b]") whose
// binding is fixed at first occurrence and reused at later mentions.
package typeexpr

import (
	"fmt"
	"strings"
)

// Expr is a parsed arrow type: an ordered sequence of argument type strings
// and a single return type string. Strings are opaque to this package except
// for the arrow/sum/polymorphic syntax used to produce Expr in the first
// place.
type Expr struct {
	Args   []string
	Return string
}

// UndefinedPolymorphicNameError reports a polymorphic slot 'n used before its
// defining occurrence 'n[...]'.
type UndefinedPolymorphicNameError struct {
	Name string
}

func (e *UndefinedPolymorphicNameError) Error() string {
	return fmt.Sprintf("typeexpr: polymorphic name %q used before definition", e.Name)
}

// Parse splits a type string on "->" into its argument types and return
// type. The return type is the final element; all others are arguments.
func Parse(s string) Expr {
	parts := strings.Split(s, "->")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return Expr{
		Args:   append([]string{}, parts[:len(parts)-1]...),
		Return: parts[len(parts)-1],
	}
}

// ReturnType is the trivial projection Parse(s).Return.
func ReturnType(s string) string {
	return Parse(s).Return
}

// Arguments is the trivial projection Parse(s).Args.
func Arguments(s string) []string {
	return Parse(s).Args
}

// AllVariants expands s into every monomorphic variant implied by its sum
// alternatives and polymorphic slots. Each arrow-separated slot is either:
//
//   - a raw sum "a|b|...": positional alternatives for that slot only;
//   - a named polymorphic slot "'name[opts]": the first occurrence defines
//     the binding for "name" by expanding opts; later occurrences of "'name"
//     reuse that same binding;
//   - a plain type: a single-element alternative.
//
// The result is the Cartesian product of all slot bindings, rendered back
// into arrow-separated type strings in the original slot order. Returns an
// error if a polymorphic name is referenced before being defined.
func AllVariants(s string) ([]string, error) {
	elems := strings.Split(s, "->")
	for i := range elems {
		elems[i] = strings.TrimSpace(elems[i])
	}

	type slot struct {
		key string // name used to look up bindings; "" means positional
	}

	slots := make([]slot, len(elems))
	bindings := map[string][]string{}
	order := []string{}

	for i, el := range elems {
		switch {
		case strings.HasPrefix(el, "'"):
			if idx := strings.Index(el, "["); idx >= 0 && strings.HasSuffix(el, "]") {
				name := strings.TrimSpace(el[1:idx])
				opts := el[idx+1 : len(el)-1]
				possibles, err := AllVariants(opts)
				if err != nil {
					return nil, err
				}
				if _, ok := bindings[name]; !ok {
					order = append(order, name)
				}
				bindings[name] = possibles
				slots[i] = slot{key: name}
			} else {
				name := strings.TrimSpace(el[1:])
				if _, ok := bindings[name]; !ok {
					return nil, &UndefinedPolymorphicNameError{Name: name}
				}
				slots[i] = slot{key: name}
			}
		case strings.Contains(el, "|"):
			key := fmt.Sprintf("#%d", i)
			alts := strings.Split(el, "|")
			for j := range alts {
				alts[j] = strings.TrimSpace(alts[j])
			}
			bindings[key] = alts
			order = append(order, key)
			slots[i] = slot{key: key}
		default:
			key := fmt.Sprintf("#%d", i)
			bindings[key] = []string{el}
			order = append(order, key)
			slots[i] = slot{key: key}
		}
	}

	// Cartesian product over `order`, in first-occurrence order, then render
	// each slot by looking up its chosen value for that configuration.
	var out []string
	choice := make(map[string]string, len(order))
	var rec func(i int) error
	rec = func(i int) error {
		if i == len(order) {
			rendered := make([]string, len(elems))
			for j, sl := range slots {
				rendered[j] = choice[sl.key]
			}
			out = append(out, strings.Join(rendered, "->"))
			return nil
		}
		key := order[i]
		for _, v := range bindings[key] {
			choice[key] = v
			if err := rec(i + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := rec(0); err != nil {
		return nil, err
	}
	return out, nil
}
