package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	udiff "github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/lipgloss"
	"github.com/jessevdk/go-flags"

	"github.com/phroun/edcore"
	"github.com/phroun/edcore/internal/settings"
)

// Options are the command line flags of the REPL.
type Options struct {
	Config  string `short:"c" long:"config" description:"settings file (toml, yaml or json)"`
	File    string `short:"f" long:"file" description:"file to load into the buffer"`
	Verbose bool   `short:"v" long:"verbose" description:"log editor events to stderr"`
	Literal bool   `long:"literal" description:"default to literal search mode"`
}

// REPL holds the state of the interactive session
type REPL struct {
	editor   *edcore.Editor
	settings settings.Settings
	options  edcore.Options

	name     string
	original string

	out   io.Writer
	match lipgloss.Style
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS]"
	parser.LongDescription = heredoc.Doc(`
		Interactive shell around the edcore editing core.

		Settings are read from --config, or from settings.toml, settings.yaml or
		settings.json in $EDCORE_CONFIG_DIR (default: the user config dir).
	`)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	repl, err := newREPL(opts, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "edcore: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("edcore REPL - Interactive Editing Core Demo")
	fmt.Println("Type 'help' for available commands, 'quit' to exit")
	fmt.Println()

	repl.run(os.Stdin, "edcore> ")
	fmt.Println("Goodbye!")
}

func newREPL(opts Options, out io.Writer) (*REPL, error) {
	s, _, err := settings.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.Literal {
		s.Search.Mode = edcore.ModeLiteral.String()
	}

	var logger *log.Logger
	if opts.Verbose {
		logger = log.New(os.Stderr, "edcore: ", log.LstdFlags)
	}

	r := &REPL{
		settings: s,
		options:  s.Options(logger),
		out:      out,
		match:    lipgloss.NewRenderer(out).NewStyle().Reverse(true),
	}

	text := ""
	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", opts.File, err)
		}
		text = string(data)
		r.name = opts.File
	}
	r.load(text)
	return r, nil
}

func (r *REPL) load(text string) {
	r.editor = edcore.NewEditor(text, r.options)
	r.original = r.editor.Document().String()
}

func (r *REPL) run(in io.Reader, prompt string) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for {
		if prompt != "" {
			fmt.Fprint(r.out, prompt)
		}
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if !r.handleCommand(input) {
			return
		}
	}
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *REPL) handleCommand(input string) bool {
	cmd, rest, _ := strings.Cut(input, " ")
	cmd = strings.ToLower(cmd)
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch cmd {
	case "help":
		r.printHelp()

	case "quit", "exit":
		return false

	case "new":
		r.load(unescape(rest))
		r.name = ""
		r.printf("Created new buffer with %d bytes\n", r.editor.Document().Len())

	case "open":
		r.cmdOpen(rest)

	case "write":
		r.cmdWrite(rest)

	case "status":
		r.cmdStatus()

	case "show":
		r.cmdShow()

	case "line":
		r.cmdLine(args)

	case "caret":
		r.cmdCaret(args)

	case "select":
		r.cmdSelect(args)

	case "insert":
		r.report(r.editor.InsertText(unescape(rest)))

	case "delete":
		r.cmdDelete(args)

	case "find":
		r.cmdFind(args)

	case "next":
		r.reportFind(r.editor.FindNext())

	case "prev", "previous":
		r.reportFind(r.editor.FindPrevious())

	case "again":
		r.reportFind(r.editor.FindAgain())

	case "cancel":
		r.editor.CancelSearch()
		r.printf("Search cancelled\n")

	case "replace":
		r.reportFind(r.editor.ReplaceCurrent(unescape(rest)))

	case "replaceall":
		r.cmdReplaceAll(unescape(rest))

	case "undo":
		r.cmdUndo(r.editor.Undo, "undo")

	case "redo":
		r.cmdUndo(r.editor.Redo, "redo")

	case "history":
		r.cmdHistory()

	case "modes":
		r.cmdModes()

	case "diff":
		r.cmdDiff()

	default:
		r.printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}

	return true
}

func (r *REPL) printHelp() {
	r.printf("%s\n", heredoc.Doc(`
		Available Commands:
		-------------------

		BUFFER:
		  new <text>              Replace the buffer with text (\n, \t escapes allowed)
		  open <path>             Load a file into a new buffer
		  write [<path>]          Write the buffer to a file
		  status                  Show buffer, selection and search status
		  show                    Print the buffer, highlighting the current match
		  line <n>                Print line n (1-based)

		SELECTION:
		  caret byte <off>        Move the caret to a byte offset
		  caret rune <n>          Move the caret to a rune index
		  caret line <l> <c>      Move the caret to line:column (1-based)
		  select <start> <end>    Select a byte range

		EDITING:
		  insert <text>           Replace the selection with text
		  delete <start> <end>    Delete a byte range
		  undo / redo             Step through the undo history
		  history                 List undoable transactions
		  diff                    Unified diff against the opening content

		SEARCH:
		  find [flags] <query>    Start a search at the caret
		                            -r pattern  -l literal  -i ignore case
		                            -c case     -w whole word  -b backward  -n no wrap
		  next / prev / again     Move between matches
		  cancel                  End the search
		  replace <text>          Replace the current match and find the next
		  replaceall <text>       Replace every match in one undo step
		  modes                   List the available match modes

		OTHER:
		  help                    Show this help message
		  quit, exit              Exit the REPL
	`))
}

func (r *REPL) cmdOpen(path string) {
	if path == "" {
		r.printf("Usage: open <path>\n")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.load(string(data))
	r.name = path
	r.printf("Opened %s (%d bytes, %d lines)\n", path, r.editor.Document().Len(), r.editor.Document().LineCount())
}

func (r *REPL) cmdWrite(path string) {
	if path == "" {
		path = r.name
	}
	if path == "" {
		r.printf("Usage: write <path>\n")
		return
	}
	if err := os.WriteFile(path, r.editor.Document().Bytes(), 0o644); err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.name = path
	r.printf("Wrote %d bytes to %s\n", r.editor.Document().Len(), path)
}

func (r *REPL) cmdStatus() {
	doc := r.editor.Document()
	stats := doc.Stats()
	sel := r.editor.Selection()

	r.printf("Buffer Status:\n")
	if r.name != "" {
		r.printf("  File:      %s\n", r.name)
	}
	r.printf("  Bytes:     %d\n", doc.Len())
	r.printf("  Runes:     %d\n", doc.RuneCount())
	r.printf("  Lines:     %d\n", doc.LineCount())
	r.printf("  Rope:      %d leaves, height %d\n", stats.Leaves, stats.Height)

	if pos, err := doc.Position(sel.Head); err == nil {
		col, _ := doc.DisplayColumn(sel.Head, r.settings.Display.TabWidth)
		r.printf("  Caret:     byte=%d line:col=%s screen=%d\n", sel.Head, pos, col+1)
	}
	if !sel.Empty() {
		start, end := sel.Range()
		r.printf("  Selection: [%d,%d)\n", start, end)
	}

	session := r.editor.Session()
	r.printf("  Search:    %s", session.State())
	if q, ok := session.Query(); ok {
		r.printf(" %s", q)
	}
	r.printf("\n")
	r.printf("  Undo:      %d step(s), redo %v\n", len(r.editor.UndoLog().History()), r.editor.UndoLog().CanRedo())
}

func (r *REPL) cmdShow() {
	doc := r.editor.Document()
	text := doc.String()
	span, ok := r.editor.Session().Current()
	if !ok || span.Empty() {
		r.printf("%s\n", text)
		return
	}
	r.printf("%s%s%s\n", text[:span.Start], r.match.Render(text[span.Start:span.End]), text[span.End:])
}

func (r *REPL) cmdLine(args []string) {
	if len(args) != 1 {
		r.printf("Usage: line <n>\n")
		return
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		r.printf("Invalid line: %v\n", err)
		return
	}
	line, err := r.editor.Document().Line(n - 1)
	if err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.printf("%d: %s\n", n, line)
}

func (r *REPL) cmdCaret(args []string) {
	if len(args) < 2 {
		r.printf("Usage: caret byte|rune|line <pos> [<col>]\n")
		return
	}
	nums, err := parseInts(args[1:])
	if err != nil {
		r.printf("Invalid position: %v\n", err)
		return
	}

	var addr edcore.Address
	switch strings.ToLower(args[0]) {
	case "byte":
		addr = edcore.ByteAddress(nums[0])
	case "rune":
		addr = edcore.RuneAddress(nums[0])
	case "line":
		col := int64(1)
		if len(nums) > 1 {
			col = nums[1]
		}
		addr = edcore.LineAddress(nums[0]-1, col-1)
	default:
		r.printf("Unknown address mode: %s\n", args[0])
		return
	}

	offset, err := r.editor.Document().Resolve(addr)
	if err == nil {
		err = r.editor.SetCaret(offset)
	}
	r.report(err)
}

func (r *REPL) cmdSelect(args []string) {
	nums, err := parseInts(args)
	if err != nil || len(nums) != 2 {
		r.printf("Usage: select <start> <end>\n")
		return
	}
	r.report(r.editor.Select(nums[0], nums[1]))
}

func (r *REPL) cmdDelete(args []string) {
	nums, err := parseInts(args)
	if err != nil || len(nums) != 2 {
		r.printf("Usage: delete <start> <end>\n")
		return
	}
	r.report(r.editor.DeleteRange(nums[0], nums[1]))
}

func (r *REPL) cmdFind(args []string) {
	query := r.settings.Query("")
	opts := r.settings.SearchOptions()

	i := 0
	for ; i < len(args) && strings.HasPrefix(args[i], "-") && len(args[i]) == 2; i++ {
		switch args[i][1] {
		case 'r':
			query.Mode = edcore.ModePattern
		case 'l':
			query.Mode = edcore.ModeLiteral
		case 'i':
			query.CaseSensitive = false
		case 'c':
			query.CaseSensitive = true
		case 'w':
			query.WholeWord = true
		case 'b':
			opts.Direction = edcore.Backward
		case 'n':
			opts.Wrap = false
		default:
			r.printf("Unknown find flag: %s\n", args[i])
			return
		}
	}
	query.Pattern = strings.Join(args[i:], " ")

	r.reportFind(r.editor.StartSearch(query, opts))
}

func (r *REPL) cmdReplaceAll(replacement string) {
	n, err := r.editor.ReplaceAll(context.Background(), replacement, edcore.ReplaceAllOptions{})
	if err != nil {
		r.printf("Error: %v (after %d replacement(s))\n", err, n)
		return
	}
	r.printf("Replaced %d occurrence(s)\n", n)
}

func (r *REPL) cmdUndo(step func() (bool, error), name string) {
	ok, err := step()
	switch {
	case err != nil:
		r.printf("Error: %v\n", err)
	case !ok:
		r.printf("Nothing to %s\n", name)
	default:
		sel := r.editor.Selection()
		r.printf("OK (%d bytes, caret at %d)\n", r.editor.Document().Len(), sel.Head)
	}
}

func (r *REPL) cmdHistory() {
	history := r.editor.UndoLog().History()
	if len(history) == 0 {
		r.printf("No undo history\n")
		return
	}
	for i, name := range history {
		r.printf("  %d. %s\n", i+1, name)
	}
}

func (r *REPL) cmdModes() {
	for _, mode := range edcore.AvailableModes() {
		r.printf("  %s\n", mode)
	}
}

func (r *REPL) cmdDiff() {
	label := r.name
	if label == "" {
		label = "buffer"
	}
	diff := udiff.Unified(label+" (original)", label, r.original, r.editor.Document().String())
	if diff == "" {
		r.printf("No changes\n")
		return
	}
	r.printf("%s", diff)
}

func (r *REPL) report(err error) {
	if err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	r.printf("OK\n")
}

func (r *REPL) reportFind(res edcore.FindResult, err error) {
	if err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	if !res.Found {
		r.printf("No more matches\n")
		return
	}
	pos, _ := r.editor.Document().Position(res.Span.Start)
	text, _ := r.editor.Document().SliceString(res.Span.Start, res.Span.End)
	wrapped := ""
	if res.Wrapped {
		wrapped = " (wrapped)"
	}
	r.printf("Match %s at %s: %q%s\n", res.Span, pos, text, wrapped)

	m := r.editor.Session().Matcher()
	if m == nil {
		return
	}
	for i := 1; i <= m.NumGroups() && 2*i+1 < len(res.Span.Groups); i++ {
		start, end := res.Span.Groups[2*i], res.Span.Groups[2*i+1]
		if start < 0 {
			r.printf("  $%d: (unset)\n", i)
			continue
		}
		group, _ := r.editor.Document().SliceString(start, end)
		r.printf("  $%d: %q\n", i, group)
	}
}

func parseInts(args []string) ([]int64, error) {
	nums := make([]int64, len(args))
	for i, arg := range args {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, err
		}
		nums[i] = n
	}
	return nums, nil
}

// unescape interprets Go string escapes such as \n and \t, returning s
// unchanged when it is not a valid escaped string.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	u, err := strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
	if err != nil {
		return s
	}
	return u
}
