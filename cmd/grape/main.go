/*
Grape prunes a typed DSL's program grammar down to a compact deterministic
finite tree automaton accepting one representative program per
observational-equivalence class, optionally extended so it accepts
unboundedly large programs via loop closure.

Usage:

	grape <subcommand> [flags]

The subcommands are:

	compile       saturate a commutativity-pruned mega grammar for a DSL,
	              without running observational-equivalence pruning
	prune         run the full pruning driver: saturate, enumerate,
	              classify, rebuild
	specialize    rewrite a base-named automaton to the DSL's per-variant
	              synthetic alphabet
	despecialize  rewrite a specialized automaton back to base primitive
	              names
	count         report how many accepted trees an automaton has up to
	              a given size
	convert       re-emit an automaton file in a different format
	union         write the union of two automaton files
	enum          list accepted programs up to a given size
	info          print a summary of an automaton file
	shell         start an interactive session for repeated enum/info/
	              count queries against one loaded automaton

Run "grape <subcommand> --help" for a subcommand's flags. Common flags
across subcommands include --dsl (a DSL manifest path), --request (a type
request string), --size, --samples, --seed, --output, and --format
(native/ebnf/lark).
*/
package main

import (
	"fmt"
	"log"
	"os"
)

const (
	// ExitSuccess indicates a successful run.
	ExitSuccess = 0
	// ExitUsageError indicates a malformed subcommand invocation (unknown
	// subcommand, missing flag, unreadable file).
	ExitUsageError = 1
)

var logger = log.New(os.Stderr, "grape: ", 0)

func main() {
	defer func() {
		if r := recover(); r != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", r))
		}
	}()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(ExitUsageError)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	var code int
	switch sub {
	case "compile":
		code = runCompile(args)
	case "prune":
		code = runPrune(args)
	case "specialize":
		code = runSpecialize(args)
	case "despecialize":
		code = runDespecialize(args)
	case "count":
		code = runCount(args)
	case "convert":
		code = runConvert(args)
	case "union":
		code = runUnion(args)
	case "enum":
		code = runEnum(args)
	case "info":
		code = runInfo(args)
	case "shell":
		code = runShell(args)
	case "-h", "--help", "help":
		printUsage()
		code = ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "grape: unknown subcommand %q\n", sub)
		printUsage()
		code = ExitUsageError
	}
	os.Exit(code)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: grape <compile|prune|specialize|despecialize|count|convert|union|enum|info|shell> [flags]")
}
