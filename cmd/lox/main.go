package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/kristofer/lox/pkg/lox"
)

const version = "0.1.0"

// Exit codes follow the sysexits convention of the jlox lineage.
const (
	exitUsage   = 64
	exitError   = 65
	exitRuntime = 70
)

func main() {
	var (
		printTokens bool
		printAST    bool
		watch       bool
	)

	rootCmd := &cobra.Command{
		Use:           "lox [script]",
		Short:         "A tree-walking interpreter for the lox language",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				fmt.Fprintln(os.Stderr, "Usage: jlox [script]")
				os.Exit(exitUsage)
			}

			if len(args) == 0 {
				runREPL()
				return nil
			}

			if watch {
				return watchFile(args[0], printTokens, printAST)
			}
			runFile(args[0], printTokens, printAST)
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&printTokens, "tokens", false, "Dump the token stream before parsing")
	rootCmd.Flags().BoolVar(&printAST, "ast", false, "Print the parsed program instead of running it")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "Rerun the script whenever the file changes")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}
}

// runFile runs a script and exits nonzero on any error.
func runFile(path string, printTokens, printAST bool) {
	l := lox.New()
	l.PrintTokens = printTokens
	l.PrintAST = printAST

	if err := l.RunFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(exitError)
	}
	if l.HadError {
		os.Exit(exitError)
	}
	if l.HadRuntimeError {
		os.Exit(exitRuntime)
	}
}

// watchFile runs the script once, then reruns it every time the file is
// written. Errors don't stop the watch; each run starts from a fresh
// interpreter state.
func watchFile(path string, printTokens, printAST bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file on save,
	// which drops a watch registered on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	runOnce := func() {
		l := lox.New()
		l.PrintTokens = printTokens
		l.PrintAST = printAST
		if err := l.RunFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		}
	}

	runOnce()
	fmt.Fprintf(os.Stderr, "Watching %s (ctrl-c to stop)\n", path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			changed, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if changed != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				runOnce()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		}
	}
}

// replCommands are the REPL meta-commands, used both for dispatch and
// for suggesting a fix when the user mistypes one.
var replCommands = []string{":help", ":quit", ":exit", ":env"}

// runREPL starts an interactive Read-Eval-Print Loop.
//
// Each line is evaluated as a complete program against a persistent
// interpreter, so variables carry over between inputs. Errors are
// printed but don't stop the REPL. A lone expression statement has its
// value echoed.
func runREPL() {
	fmt.Printf("lox REPL v%s\n", version)
	fmt.Println("Type ':help' for help, ':quit' or ':exit' to exit")
	fmt.Println()

	l := lox.New()
	l.Echo = true
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := runMetaCommand(l, line); quit {
				return
			}
			continue
		}

		l.Run(line)
		// A bad line shouldn't poison the next prompt
		l.HadError = false
		l.HadRuntimeError = false
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
}

// runMetaCommand handles the :commands. Returns true when the REPL
// should exit.
func runMetaCommand(l *lox.Lox, line string) bool {
	switch line {
	case ":quit", ":exit":
		fmt.Println("Goodbye!")
		return true
	case ":help":
		printREPLHelp()
	case ":env":
		bindings := l.GlobalBindings()
		if len(bindings) == 0 {
			fmt.Println("(no variables defined)")
		}
		for _, binding := range bindings {
			fmt.Println(binding)
		}
	default:
		if suggestion := suggestCommand(line); suggestion != "" {
			fmt.Printf("Unknown command '%s'. Did you mean '%s'?\n", line, suggestion)
		} else {
			fmt.Printf("Unknown command '%s'. Type ':help' for help.\n", line)
		}
	}
	return false
}

// suggestCommand returns the closest meta-command to the given input,
// or "" when nothing is close enough.
func suggestCommand(input string) string {
	ranks := fuzzy.RankFindFold(strings.TrimPrefix(input, ":"), replCommands)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance {
			best = rank
		}
	}
	return best.Target
}

// printREPLHelp prints help information for the REPL.
func printREPLHelp() {
	fmt.Println("lox REPL Help")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  :help     Show this help message")
	fmt.Println("  :env      List global variables")
	fmt.Println("  :quit     Exit the REPL")
	fmt.Println("  :exit     Exit the REPL")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  - Enter lox statements and press Enter")
	fmt.Println("  - Statements end with a semicolon (;)")
	fmt.Println("  - Variables persist across lines")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  > var x = 42;")
	fmt.Println("  > print x + 8;")
	fmt.Println("  50")
	fmt.Println()
}
