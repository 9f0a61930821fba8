package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	apppkg "github.com/kk-code-lab/peek/internal/app"
	"github.com/kk-code-lab/peek/internal/buffer"
	"github.com/kk-code-lab/peek/internal/config"
	"github.com/kk-code-lab/peek/internal/follow"
	"github.com/kk-code-lab/peek/internal/search"
	statepkg "github.com/kk-code-lab/peek/internal/state"
	"golang.org/x/term"
)

func printHelp() {
	fmt.Print(`peek - pane-based pager with follow mode

USAGE:
    peek [OPTIONS] [+LINE] [FILE]

With no FILE, peek pages standard input.

OPTIONS:
    -n, --lines N         Pane height in rows (default 10)
    -t, --tab-width N     Tab stop width (default 4)
    -N, --line-numbers    Show line numbers
    -f, --follow          Follow appended data
    +LINE                 Start at line LINE
    -h, --help            Show this help message and exit
`)
}

func main() {
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "peek: %v\n", err)
		os.Exit(1)
	}

	args, startLine := extractStartLine(os.Args[1:])

	fs := flag.NewFlagSet("peek", flag.ExitOnError)
	fs.Usage = printHelp
	lines := fs.Int("n", cfg.Height, "pane height in rows")
	fs.IntVar(lines, "lines", cfg.Height, "pane height in rows")
	tabWidth := fs.Int("t", cfg.TabWidth, "tab stop width")
	fs.IntVar(tabWidth, "tab-width", cfg.TabWidth, "tab stop width")
	lineNumbers := fs.Bool("N", cfg.LineNumbers, "show line numbers")
	fs.BoolVar(lineNumbers, "line-numbers", cfg.LineNumbers, "show line numbers")
	followFlag := fs.Bool("f", cfg.Follow, "follow appended data")
	fs.BoolVar(followFlag, "follow", cfg.Follow, "follow appended data")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	cfg.Height = *lines
	cfg.TabWidth = *tabWidth
	cfg.LineNumbers = *lineNumbers
	cfg.Follow = *followFlag
	if startLine > 0 {
		cfg.StartLine = startLine
	}

	store := buffer.New()
	var src follow.Source
	var offset int64

	switch fs.NArg() {
	case 0:
		src, offset, err = loadStdin(store, cfg.Follow)
	case 1:
		src, offset, err = loadFile(store, fs.Arg(0))
	default:
		fmt.Fprintln(os.Stderr, "peek: at most one file argument")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "peek: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "peek: open terminal: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "peek: init terminal: %v\n", err)
		os.Exit(1)
	}

	searcher := search.New(store, cfg.TabWidth)
	searcher.SetWrapScan(cfg.WrapScan)

	st := statepkg.NewSessionState(store, searcher)
	st.TabWidth = cfg.TabWidth
	st.PaneHeight = cfg.Height
	st.ShowLineNumbers = cfg.LineNumbers
	st.Follow = cfg.Follow && src != nil
	if cfg.StartLine > 0 {
		st.TopLine = cfg.StartLine - 1
	}

	var ingestor *follow.Ingestor
	if src != nil {
		ingestor = follow.NewIngestor(src, offset, 0)
	}

	apppkg.NewApplication(screen, st, ingestor).Run()
}

// extractStartLine pulls a +LINE argument out of the argument list before
// flag parsing sees it.
func extractStartLine(args []string) ([]string, int) {
	rest := make([]string, 0, len(args))
	start := 0
	for _, arg := range args {
		if strings.HasPrefix(arg, "+") {
			if n, err := strconv.Atoi(arg[1:]); err == nil && n > 0 {
				start = n
				continue
			}
		}
		rest = append(rest, arg)
	}
	return rest, start
}

func loadFile(store *buffer.Store, path string) (follow.Source, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	offset, err := store.Load(f)
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	src, err := follow.NewFileSource(path, f)
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return src, offset, nil
}

// loadStdin pages a pipe. Without follow mode the whole pipe is read up
// front; with it, the initial read is skipped so the ingestor streams from
// the start. tcell reopens /dev/tty for key input either way.
func loadStdin(store *buffer.Store, followMode bool) (follow.Source, int64, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, 0, fmt.Errorf("missing filename (try --help)")
	}
	if followMode {
		return follow.NewReaderSource(os.Stdin), 0, nil
	}
	if _, err := store.Load(os.Stdin); err != nil {
		return nil, 0, fmt.Errorf("read stdin: %w", err)
	}
	return nil, 0, nil
}
