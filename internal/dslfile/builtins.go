package dslfile

import "github.com/SynthesisLab/grape/internal/dsl"

// builtinSemantics is the fixed vocabulary a manifest's "semantic" key may
// select. A primitive's type (arity and argument order) is declared in the
// manifest and must agree with what its chosen semantic expects; a mismatch
// surfaces as an index-out-of-range or type-assertion panic at evaluation
// time rather than at load time.
var builtinSemantics = map[string]dsl.Semantic{
	"int.zero": func(args []dsl.Value) dsl.Value { return 0 },
	"int.one":  func(args []dsl.Value) dsl.Value { return 1 },
	"int.neg":  func(args []dsl.Value) dsl.Value { return -args[0].(int) },
	"int.add":  func(args []dsl.Value) dsl.Value { return args[0].(int) + args[1].(int) },
	"int.sub":  func(args []dsl.Value) dsl.Value { return args[0].(int) - args[1].(int) },
	"int.mul":  func(args []dsl.Value) dsl.Value { return args[0].(int) * args[1].(int) },
	"int.div": func(args []dsl.Value) dsl.Value {
		divisor := args[1].(int)
		if divisor == 0 {
			panic("division by zero")
		}
		return args[0].(int) / divisor
	},
	"int.eq":      func(args []dsl.Value) dsl.Value { return args[0].(int) == args[1].(int) },
	"int.lt":      func(args []dsl.Value) dsl.Value { return args[0].(int) < args[1].(int) },
	"int.gtzero":  func(args []dsl.Value) dsl.Value { return args[0].(int) > 0 },
	"bool.true":   func(args []dsl.Value) dsl.Value { return true },
	"bool.false":  func(args []dsl.Value) dsl.Value { return false },
	"bool.not":    func(args []dsl.Value) dsl.Value { return !args[0].(bool) },
	"bool.and":    func(args []dsl.Value) dsl.Value { return args[0].(bool) && args[1].(bool) },
	"bool.or":     func(args []dsl.Value) dsl.Value { return args[0].(bool) || args[1].(bool) },
	"poly.ite": func(args []dsl.Value) dsl.Value {
		if args[0].(bool) {
			return args[1]
		}
		return args[2]
	},
}
