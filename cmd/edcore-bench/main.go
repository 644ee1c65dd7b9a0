// edcore-bench is a benchmark and stress test for the edcore editing core.
// It builds a large synthetic document and measures common editing and
// search operations.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/jessevdk/go-flags"

	"github.com/phroun/edcore"
)

// Options are the command line flags of the benchmark.
type Options struct {
	Size    int    `short:"s" long:"size" default:"16" description:"document size in MiB"`
	Seed    uint64 `long:"seed" default:"1" description:"random seed for text and edit positions"`
	Verbose bool   `short:"v" long:"verbose" description:"log editor events to stderr"`
}

type BenchResult struct {
	Name     string
	Duration time.Duration
	Ops      int
	Extra    string
}

func (r BenchResult) String() string {
	if r.Ops > 0 {
		opsPerSec := float64(r.Ops) / r.Duration.Seconds()
		if r.Extra != "" {
			return fmt.Sprintf("%-40s %12v  (%d ops, %.2f ops/sec) %s", r.Name, r.Duration.Round(time.Millisecond), r.Ops, opsPerSec, r.Extra)
		}
		return fmt.Sprintf("%-40s %12v  (%d ops, %.2f ops/sec)", r.Name, r.Duration.Round(time.Millisecond), r.Ops, opsPerSec)
	}
	if r.Extra != "" {
		return fmt.Sprintf("%-40s %12v  %s", r.Name, r.Duration.Round(time.Millisecond), r.Extra)
	}
	return fmt.Sprintf("%-40s %12v", r.Name, r.Duration.Round(time.Millisecond))
}

type bench struct {
	rng    *rand.Rand
	editor *edcore.Editor
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.LongDescription = heredoc.Doc(`
		Builds a synthetic document of --size MiB and times inserts, deletes,
		address resolution, searches, replace-all and undo/redo on it.
	`)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if opts.Size <= 0 {
		fmt.Fprintln(os.Stderr, "edcore-bench: --size must be positive")
		os.Exit(1)
	}

	fmt.Println("edcore Benchmark and Stress Test")
	fmt.Println("================================")
	fmt.Printf("Document size: %d MiB\n", opts.Size)
	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	fmt.Printf("Match modes: %v\n", edcore.AvailableModes())
	fmt.Println()

	editorOpts := edcore.DefaultOptions()
	if opts.Verbose {
		editorOpts.Logger = log.New(os.Stderr, "edcore: ", log.LstdFlags)
	}

	b := &bench{rng: rand.New(rand.NewPCG(opts.Seed, opts.Seed))}
	var results []BenchResult

	fmt.Println("Generating text...")
	start := time.Now()
	text := generateText(b.rng, opts.Size<<20)
	results = append(results, BenchResult{Name: "Generate text", Duration: time.Since(start), Extra: fmt.Sprintf("%d bytes", len(text))})

	start = time.Now()
	b.editor = edcore.NewEditor(text, editorOpts)
	doc := b.editor.Document()
	stats := doc.Stats()
	results = append(results, BenchResult{
		Name:     "Build document",
		Duration: time.Since(start),
		Extra:    fmt.Sprintf("%d lines, %d leaves, height %d", doc.LineCount(), stats.Leaves, stats.Height),
	})
	fmt.Println(results[len(results)-1])
	fmt.Println()

	runBench := func(name string, fn func() BenchResult) {
		fmt.Printf("  %-40s ", name+"...")
		result := fn()
		result.Name = name
		fmt.Printf("%v\n", result.Duration.Round(time.Millisecond))
		results = append(results, result)
	}

	fmt.Println("Addressing:")
	runBench("Resolve line addresses", b.resolveLines)
	runBench("Grapheme navigation", b.graphemes)

	fmt.Println("\nEdit operations:")
	runBench("Small inserts (100 bytes x 1000)", func() BenchResult { return b.inserts(1000, 100) })
	runBench("Small deletes (100 bytes x 1000)", func() BenchResult { return b.deletes(1000, 100) })
	runBench("Medium inserts (10KB x 100)", func() BenchResult { return b.inserts(100, 10<<10) })
	runBench("Grouped transactions", b.transactions)

	fmt.Println("\nSearch operations:")
	runBench("Literal search (find first)", func() BenchResult {
		return b.findFirst(edcore.SearchQuery{Pattern: "00100000:", Mode: edcore.ModeLiteral, CaseSensitive: true})
	})
	runBench("Literal search all (ignore case)", func() BenchResult {
		return b.findAll(edcore.SearchQuery{Pattern: "LOREM", Mode: edcore.ModeLiteral}, edcore.Forward)
	})
	if edcore.ModeAvailable(edcore.ModePattern) {
		runBench("Pattern search all", func() BenchResult {
			return b.findAll(edcore.SearchQuery{Pattern: `\bdolor\w*`, Mode: edcore.ModePattern, CaseSensitive: true}, edcore.Forward)
		})
		runBench("Pattern search all (backward)", func() BenchResult {
			return b.findAll(edcore.SearchQuery{Pattern: `^0000\d+`, Mode: edcore.ModePattern, CaseSensitive: true}, edcore.Backward)
		})
	}

	fmt.Println("\nReplace operations:")
	runBench("Replace all", b.replaceAll)

	fmt.Println("\nUndo/redo operations:")
	runBench("Undo/redo cycles", b.undoRedo)

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	for _, r := range results {
		fmt.Println(r)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Println()
	fmt.Printf("Peak heap allocation: %d MB\n", m.HeapSys/(1024*1024))
	fmt.Printf("Total allocations: %d MB\n", m.TotalAlloc/(1024*1024))
}

var words = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing",
	"elit", "sed", "do", "eiusmod", "tempor", "Lorem", "Dolorem", "größe",
	"naïve", "日本語", "emoji🙂",
}

// generateText builds numbered lines of random words until size bytes.
func generateText(rng *rand.Rand, size int) string {
	var sb strings.Builder
	sb.Grow(size + 128)
	for line := 0; sb.Len() < size; line++ {
		fmt.Fprintf(&sb, "%08d:", line)
		n := 4 + rng.IntN(12)
		for i := 0; i < n; i++ {
			sb.WriteByte(' ')
			sb.WriteString(words[rng.IntN(len(words))])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// randomOffset returns a random rune boundary in the document.
func (b *bench) randomOffset() int64 {
	doc := b.editor.Document()
	offset := b.rng.Int64N(doc.Len() + 1)
	for !doc.IsBoundary(offset) {
		offset--
	}
	return offset
}

func (b *bench) resolveLines() BenchResult {
	doc := b.editor.Document()
	lines := doc.LineCount()
	ops := 0
	start := time.Now()
	for i := 0; i < 100000; i++ {
		if _, err := doc.Resolve(edcore.LineAddress(b.rng.Int64N(lines), 0)); err == nil {
			ops++
		}
	}
	return BenchResult{Duration: time.Since(start), Ops: ops}
}

func (b *bench) graphemes() BenchResult {
	doc := b.editor.Document()
	ops := 0
	start := time.Now()
	for i := 0; i < 1000; i++ {
		offset := b.randomOffset()
		for j := 0; j < 100; j++ {
			next, err := doc.NextBoundary(offset)
			if err != nil || next == offset {
				break
			}
			offset = next
			ops++
		}
	}
	return BenchResult{Duration: time.Since(start), Ops: ops}
}

func (b *bench) inserts(count, size int) BenchResult {
	text := strings.Repeat("x", size-1) + "\n"
	ops := 0
	start := time.Now()
	for i := 0; i < count; i++ {
		if err := b.editor.InsertAt(b.randomOffset(), text); err == nil {
			ops++
		}
	}
	return BenchResult{Duration: time.Since(start), Ops: ops}
}

func (b *bench) deletes(count, size int) BenchResult {
	doc := b.editor.Document()
	ops := 0
	start := time.Now()
	for i := 0; i < count; i++ {
		from := b.randomOffset()
		to := min(from+int64(size), doc.Len())
		for !doc.IsBoundary(to) {
			to--
		}
		if err := b.editor.DeleteRange(from, to); err == nil {
			ops++
		}
	}
	return BenchResult{Duration: time.Since(start), Ops: ops}
}

func (b *bench) transactions() BenchResult {
	ops := 0
	start := time.Now()
	for i := 0; i < 200; i++ {
		err := b.editor.Transaction("typing", func() error {
			if err := b.editor.SetCaret(b.randomOffset()); err != nil {
				return err
			}
			for _, s := range []string{"t", "y", "p", "e", "d"} {
				if err := b.editor.InsertText(s); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			ops++
		}
	}
	return BenchResult{Duration: time.Since(start), Ops: ops}
}

func (b *bench) findFirst(query edcore.SearchQuery) BenchResult {
	ops := 0
	start := time.Now()
	for i := 0; i < 25; i++ {
		if err := b.editor.SetCaret(0); err != nil {
			break
		}
		if res, err := b.editor.StartSearch(query, edcore.SearchOptions{}); err == nil && res.Found {
			ops++
		}
	}
	b.editor.CancelSearch()
	return BenchResult{Duration: time.Since(start), Ops: ops}
}

func (b *bench) findAll(query edcore.SearchQuery, dir edcore.Direction) BenchResult {
	caret := int64(0)
	if dir == edcore.Backward {
		caret = b.editor.Document().Len()
	}
	start := time.Now()
	if err := b.editor.SetCaret(caret); err != nil {
		return BenchResult{Duration: time.Since(start), Extra: err.Error()}
	}

	matches := 0
	res, err := b.editor.StartSearch(query, edcore.SearchOptions{Direction: dir})
	for err == nil && res.Found {
		matches++
		res, err = b.editor.FindAgain()
	}
	b.editor.CancelSearch()

	extra := fmt.Sprintf("%d matches", matches)
	if err != nil {
		extra += ": " + err.Error()
	}
	return BenchResult{Duration: time.Since(start), Ops: matches, Extra: extra}
}

func (b *bench) replaceAll() BenchResult {
	start := time.Now()
	if err := b.editor.SetCaret(0); err != nil {
		return BenchResult{Duration: time.Since(start), Extra: err.Error()}
	}
	if _, err := b.editor.StartSearch(edcore.SearchQuery{Pattern: "ipsum", Mode: edcore.ModeLiteral, CaseSensitive: true}, edcore.SearchOptions{}); err != nil {
		return BenchResult{Duration: time.Since(start), Extra: err.Error()}
	}

	chunks := 0
	n, err := b.editor.ReplaceAll(context.Background(), "IPSUM", edcore.ReplaceAllOptions{
		OnChunk: func(int) { chunks++ },
	})
	extra := fmt.Sprintf("%d replacements in %d chunks", n, chunks)
	if err != nil {
		extra += ": " + err.Error()
	}
	return BenchResult{Duration: time.Since(start), Ops: n, Extra: extra}
}

func (b *bench) undoRedo() BenchResult {
	history := b.editor.UndoLog()
	ops := 0
	start := time.Now()
	for i := 0; i < 10; i++ {
		steps := 0
		for history.CanUndo() && steps < 100 {
			if _, err := b.editor.Undo(); err != nil {
				break
			}
			steps++
			ops++
		}
		for ; steps > 0; steps-- {
			if _, err := b.editor.Redo(); err != nil {
				break
			}
			ops++
		}
	}
	return BenchResult{Duration: time.Since(start), Ops: ops}
}
