// Command twine runs Twine programs and provides an interactive REPL: a
// liner history file, Ctrl+C/Ctrl+D handling, and multi-line continuation
// by re-probing the parser, on a deliberately small command surface (no
// fmt/test/get: there is no formatter and no module system). Colorized
// output goes through github.com/pterm/pterm's Info/Error printers rather
// than hand-rolled ANSI escapes.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/pterm/pterm"

	twine "github.com/MatrixMike/twine"
	"github.com/MatrixMike/twine/internal/reader"
	"github.com/MatrixMike/twine/internal/rlog"
)

const (
	appName     = "twine"
	historyFile = ".twine_history"
	promptMain  = "twine> "
	promptCont  = "...  > "
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Twine

Usage:
  %s run <file.twine> [-w N] [-debug]   Run a script with an N-worker fiber scheduler.
  %s repl [-w N] [-debug]                Start the REPL.

`, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.twine> [-w N]\n", appName)
		return 2
	}
	file, workers, debug := parseRunArgs(args)
	if file == "" {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.twine> [-w N]\n", appName)
		return 2
	}

	src, err := os.ReadFile(file)
	if err != nil {
		pterm.Error.Printfln("cannot read %s: %v", file, err)
		return 1
	}

	ip := twine.NewRuntime()
	program, perr := reader.Parse(string(src), ip.Interner)
	if perr != nil {
		pterm.Error.Println(perr.Error())
		return 1
	}

	log := newLogger(debug)
	result := ip.RunProgram(program, workers, twine.NewStdioBackend(), log)
	if result.Err != nil {
		pterm.Error.Println(twine.PrettyError(string(src), result.Err))
		return 1
	}
	return 0
}

// parseRunArgs extracts the script path, an optional "-w N" worker-count
// override, and an optional "-debug" flag from args, in any order.
func parseRunArgs(args []string) (file string, workers int, debug bool) {
	workers = twine.DefaultWorkerCount()
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-w":
			if i+1 < len(args) {
				if n, err := strconv.Atoi(args[i+1]); err == nil && n > 0 {
					workers = n
				}
				i++
			}
			continue
		case "-debug":
			debug = true
			continue
		}
		if file == "" {
			file = args[i]
		}
	}
	return file, workers, debug
}

// newLogger builds the scheduler/runtime lifecycle logger: human-readable
// text at debug level when -debug is passed, otherwise quiet JSON that only
// surfaces warnings and above.
func newLogger(debug bool) *rlog.Logger {
	if debug {
		return rlog.NewText(os.Stderr, slog.LevelDebug)
	}
	return rlog.New(os.Stderr, slog.LevelWarn)
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(args []string) (ret int) {
	_, workers, debug := parseRunArgs(append([]string{""}, args...))

	pterm.Info.Println("Twine REPL — Ctrl+C cancels input, Ctrl+D exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := twine.NewRuntime()
	log := newLogger(debug)
	backend := twine.NewStdioBackend()

	for {
		code, ok := readByParseProbe(ln, ip.Interner, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		if strings.TrimSpace(code) == ":quit" {
			return 0
		}

		node, perr := reader.ParseOne(code, ip.Interner)
		if perr != nil {
			pterm.Error.Println(perr.Error())
			continue
		}

		result := ip.RunProgram([]twine.Node{node}, workers, backend, log)
		if result.Err != nil {
			pterm.Error.Println(twine.PrettyError(code, result.Err))
			continue
		}
		pterm.Info.Println(twine.Display(result.Value))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByParseProbe reads lines until they form a complete expression (or
// the user cancels): try to parse, and keep reading on an incomplete form,
// driven by reader.IsIncomplete.
func readByParseProbe(ln *liner.State, in *twine.Interner, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == ":quit" {
			return src, true
		}
		_, perr := reader.ParseOne(src, in)
		if perr == nil {
			return src, true
		}
		if reader.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
