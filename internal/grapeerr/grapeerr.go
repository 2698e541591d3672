// Package grapeerr implements a taxonomy of error kinds: UserInput,
// DomainInvariant, SemanticTrap, and Capacity. Each constructor produces an
// error that wraps an optional underlying cause and exposes an ExitCode so
// cmd/grape can translate any returned error straight into a process exit
// code.
package grapeerr

import "fmt"

// Kind discriminates which branch of the error taxonomy an error belongs
// to.
type Kind int

const (
	// KindUserInput covers a malformed DSL type string, an unresolved
	// polymorphic slot, a sampler that could not produce distinct values
	// within its retry budget, or an unsupported file extension. Reported
	// at the boundary; non-recoverable.
	KindUserInput Kind = iota
	// KindDomainInvariant covers an ambiguous state type, a completed
	// automaton whose inferred types disagree with the DSL, or
	// minimisation invoked on an unreduced automaton. These are
	// programmer errors; abort with a diagnostic.
	KindDomainInvariant
	// KindSemanticTrap covers a user-supplied primitive raising an
	// exception during evaluation whose kind was not in the allow-list.
	KindSemanticTrap
	// KindCapacity covers exhausting the sample budget for a type even
	// after the retry-and-cycle fallback.
	KindCapacity
)

// grapeError is the concrete type behind every constructor in this
// package.
type grapeError struct {
	kind Kind
	msg  string
	wrap error
}

func (e *grapeError) Error() string { return e.msg }

// Unwrap gives the error that e wraps, if it wraps one.
func (e *grapeError) Unwrap() error { return e.wrap }

// Kind reports which branch of the error taxonomy e belongs to.
func (e *grapeError) Kind() Kind { return e.kind }

// ExitCode maps e's kind to a process exit code: 1 for UserInput, 2 for
// DomainInvariant, 3 for SemanticTrap, 4 for Capacity.
func (e *grapeError) ExitCode() int {
	switch e.kind {
	case KindUserInput:
		return 1
	case KindDomainInvariant:
		return 2
	case KindSemanticTrap:
		return 3
	case KindCapacity:
		return 4
	default:
		return 1
	}
}

func newf(kind Kind, wrap error, format string, a ...interface{}) error {
	return &grapeError{kind: kind, msg: fmt.Sprintf(format, a...), wrap: wrap}
}

// UserInput reports a malformed DSL, unresolved polymorphic name, sampler
// failure, or unsupported file extension.
func UserInput(format string, a ...interface{}) error {
	return newf(KindUserInput, nil, format, a...)
}

// WrapUserInput is UserInput but wraps an underlying cause.
func WrapUserInput(wrap error, format string, a ...interface{}) error {
	return newf(KindUserInput, wrap, format, a...)
}

// DomainInvariant reports a violated internal invariant: an ambiguous
// state type, a type-check disagreement, or minimisation of an unreduced
// automaton.
func DomainInvariant(format string, a ...interface{}) error {
	return newf(KindDomainInvariant, nil, format, a...)
}

// WrapDomainInvariant is DomainInvariant but wraps an underlying cause.
func WrapDomainInvariant(wrap error, format string, a ...interface{}) error {
	return newf(KindDomainInvariant, wrap, format, a...)
}

// SemanticTrap reports a primitive panic whose kind was not in the
// Evaluator's skip allow-list.
func SemanticTrap(format string, a ...interface{}) error {
	return newf(KindSemanticTrap, nil, format, a...)
}

// WrapSemanticTrap is SemanticTrap but wraps an underlying cause.
func WrapSemanticTrap(wrap error, format string, a ...interface{}) error {
	return newf(KindSemanticTrap, wrap, format, a...)
}

// Capacity reports an exhausted sample budget for a type.
func Capacity(format string, a ...interface{}) error {
	return newf(KindCapacity, nil, format, a...)
}

// WrapCapacity is Capacity but wraps an underlying cause.
func WrapCapacity(wrap error, format string, a ...interface{}) error {
	return newf(KindCapacity, wrap, format, a...)
}

// exitCoder is implemented by every error this package constructs.
type exitCoder interface {
	ExitCode() int
}

// ExitCode returns err's ExitCode if it (or something in its Unwrap chain)
// implements exitCoder, and 1 otherwise — the default cmd/grape uses for
// any error this package didn't originate.
func ExitCode(err error) int {
	for err != nil {
		if ec, ok := err.(exitCoder); ok {
			return ec.ExitCode()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return 1
}
