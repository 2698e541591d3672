package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/SynthesisLab/grape/internal/automaton"
	"github.com/SynthesisLab/grape/internal/enumerator"
)

// runShell starts an interactive session for repeated enum/info/count
// queries against one loaded automaton, instead of re-invoking the binary
// per query.
func runShell(args []string) int {
	fs := pflag.NewFlagSet("shell", pflag.ContinueOnError)
	input := fs.String("input", "", "automaton file to load at startup (native format)")
	configPath := fs.String("config", "", "grape.toml path")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return reportErr(err)
	}

	rl, err := readline.NewEx(&readline.Config{Prompt: "grape> "})
	if err != nil {
		return reportErr(fmt.Errorf("starting shell: %w", err))
	}
	defer rl.Close()

	var loaded *automaton.DFTA
	if *input != "" {
		g, err := readAutomatonFile(*input, resolveFormat("", *input, cfg))
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "grape: %v\n", err)
		} else {
			loaded = g
			fmt.Fprintf(rl.Stdout(), "loaded %s\n", *input)
		}
	}

	fmt.Fprintln(rl.Stdout(), "grape interactive shell. Type \"help\" for commands, \"quit\" to exit.")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return ExitSuccess
		}
		if err != nil {
			return reportErr(err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return ExitSuccess
		case "help":
			fmt.Fprintln(rl.Stdout(), "commands: load <path>, info, count <size>, enum <size>, quit")
		case "load":
			if len(fields) != 2 {
				fmt.Fprintln(rl.Stderr(), "usage: load <path>")
				continue
			}
			g, err := readAutomatonFile(fields[1], resolveFormat("", fields[1], cfg))
			if err != nil {
				fmt.Fprintf(rl.Stderr(), "grape: %v\n", err)
				continue
			}
			loaded = g
			fmt.Fprintf(rl.Stdout(), "loaded %s\n", fields[1])
		case "info":
			if loaded == nil {
				fmt.Fprintln(rl.Stderr(), "no automaton loaded; use \"load <path>\" first")
				continue
			}
			fmt.Fprint(rl.Stdout(), describeAutomaton(loaded))
		case "count":
			if loaded == nil {
				fmt.Fprintln(rl.Stderr(), "no automaton loaded; use \"load <path>\" first")
				continue
			}
			if loaded.IsUnbounded() {
				fmt.Fprintln(rl.Stderr(), "automaton is unbounded; tree counts are infinite past some size")
				continue
			}
			size, err := shellSize(fields, rl)
			if err != nil {
				continue
			}
			fmt.Fprintf(rl.Stdout(), "%d accepted trees up to size %d\n", loaded.TreesUntilSize(size, true), size)
		case "enum":
			if loaded == nil {
				fmt.Fprintln(rl.Stderr(), "no automaton loaded; use \"load <path>\" first")
				continue
			}
			size, err := shellSize(fields, rl)
			if err != nil {
				continue
			}
			enum := enumerator.New(loaded)
			sess := enum.EnumerateUntilSize(size + 1)
			for {
				_, ok := sess.Next()
				if !ok {
					break
				}
				sess.Keep(true)
			}
			for s := 1; s <= size; s++ {
				for _, progs := range enum.FinalProgramsAt(s) {
					for _, p := range progs {
						fmt.Fprintf(rl.Stdout(), "%d\t%s\n", s, p.String())
					}
				}
			}
		default:
			fmt.Fprintf(rl.Stderr(), "grape: unknown command %q, try \"help\"\n", fields[0])
		}
	}
}

func shellSize(fields []string, rl *readline.Instance) (int, error) {
	if len(fields) != 2 {
		fmt.Fprintf(rl.Stderr(), "usage: %s <size>\n", fields[0])
		return 0, fmt.Errorf("missing size")
	}
	size, err := strconv.Atoi(fields[1])
	if err != nil {
		fmt.Fprintf(rl.Stderr(), "invalid size %q\n", fields[1])
		return 0, err
	}
	return size, nil
}
