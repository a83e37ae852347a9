package multi

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/endorses/strsearch/internal/pkg/ahocorasick"
	"github.com/endorses/strsearch/internal/pkg/cmdutil"
	"github.com/endorses/strsearch/internal/pkg/logger"
	"github.com/endorses/strsearch/internal/pkg/metrics"
	"github.com/endorses/strsearch/internal/pkg/output"
	"github.com/endorses/strsearch/internal/pkg/search"
	"github.com/endorses/strsearch/internal/pkg/signals"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// MultiCmd searches inputs for a set of patterns in one pass.
var MultiCmd = &cobra.Command{
	Use:   "multi [FILE...]",
	Short: "Search for many patterns at once (Aho-Corasick)",
	Long: `Search files or standard input for every occurrence of every pattern in a
set with a single Aho-Corasick pass.

Patterns come from --pattern (repeatable) and --patterns-file (one per line,
# starts a comment). With --anchored, "abc*" only matches at the start of a
line and "*abc" only at its end; anchored search implies --lines.

With --watch, the patterns file is reloaded whenever it changes (or on
SIGHUP) and standard input is matched line by line as it arrives.

Examples:
  strsearch multi -e he -e she -e his -e hers story.txt
  strsearch multi -f keywords.txt -i --count logs/*.log
  strsearch multi -f numbers.txt --anchored calls.txt
  tail -f app.log | strsearch multi -f alerts.txt --watch -o json`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: bindFlags,
	RunE:    runMulti,
}

var (
	patterns        []string
	patternsFile    string
	caseInsensitive bool
	anchored        bool
	lineMode        bool
	dense           bool
	watch           bool
	chunkSize       string
	concurrency     int
	countOnly       bool
)

// Result is one occurrence of a pattern.
type Result struct {
	File      string `json:"file" yaml:"file"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
	Pattern   string `json:"pattern" yaml:"pattern"`
	PatternID int    `json:"pattern_id" yaml:"pattern_id"`
	Start     int    `json:"start" yaml:"start"`
	End       int    `json:"end" yaml:"end"`
}

// Count is the number of occurrences of a pattern in one input.
type Count struct {
	File    string `json:"file" yaml:"file"`
	Pattern string `json:"pattern" yaml:"pattern"`
	Count   int    `json:"count" yaml:"count"`
}

func bindFlags(cmd *cobra.Command, args []string) error {
	return cmdutil.BindFlags(cmd, map[string]string{
		"case_insensitive": "ignore-case",
		"chunk_size":       "chunk-size",
		"concurrency":      "jobs",
	})
}

func runMulti(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(cmdutil.GetStringConfig("output", string(output.FormatText)))
	if err != nil {
		return err
	}
	config := ahocorasick.Config{CaseInsensitive: cmdutil.GetBoolConfig("case_insensitive", caseInsensitive)}

	ctx, cancel := context.WithCancel(cmd.Context())
	cleanup := signals.SetupHandler(ctx, cancel)
	defer cleanup()

	if watch {
		if patternsFile == "" || len(patterns) > 0 {
			return errors.New("--watch needs --patterns-file and cannot be combined with --pattern")
		}
		return runWatch(ctx, cmd, args, config, format)
	}

	set, err := cmdutil.LoadPatterns(patterns, patternsFile, anchored)
	if err != nil {
		return err
	}
	if dense && !(lineMode || anchored) {
		return errors.New("--dense requires --lines")
	}

	size, err := cmdutil.GetSizeConfig("chunk_size", chunkSize)
	if err != nil {
		return err
	}
	limit := cmdutil.GetIntConfig("concurrency", concurrency)
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var scan func(ctx context.Context, name string, in io.Reader) ([]Result, error)
	if lineMode || anchored {
		m, err := ahocorasick.BuildMatcher(set, config, dense)
		if err != nil {
			return err
		}
		scan = func(ctx context.Context, name string, in io.Reader) ([]Result, error) {
			return scanLines(ctx, name, in, m, set, size)
		}
	} else {
		a, err := ahocorasick.NewBuilderWithConfig(config).Build(set)
		if err != nil {
			return err
		}
		scan = func(ctx context.Context, name string, in io.Reader) ([]Result, error) {
			matches, err := search.ScanReaderMulti(ctx, in, a, size)
			if err != nil {
				return nil, err
			}
			return toResults(name, 0, set, matches), nil
		}
	}

	inputs := cmdutil.Inputs(args)
	results := make([][]Result, len(inputs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, name := range inputs {
		eg.Go(func() error {
			in, err := cmdutil.OpenInput(cmd, name)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := in.Close(); cerr != nil {
					logger.Warn("failed to close input", "file", name, "error", cerr)
				}
			}()
			r, err := scan(egCtx, name, in)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if countOnly {
		counts := countResults(inputs, set, results)
		return output.Write(w, format, counts, func(w io.Writer) error {
			for _, c := range counts {
				if _, err := fmt.Fprintf(w, "%s:%d\t%s\n", c.File, c.Count, c.Pattern); err != nil {
					return err
				}
			}
			return nil
		})
	}

	flat := make([]Result, 0)
	for _, r := range results {
		flat = append(flat, r...)
	}
	return output.Write(w, format, flat, func(w io.Writer) error {
		for _, r := range flat {
			if err := writeResult(w, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// scanLines matches each line on its own, so anchors apply per line.
func scanLines(ctx context.Context, name string, in io.Reader, m ahocorasick.Matcher, set []ahocorasick.Pattern, maxLine int) ([]Result, error) {
	var results []Result
	var scanned, found int
	err := eachLine(ctx, in, maxLine, func(n int, line []byte) error {
		line = trimLine(line)
		matches := m.Scan(line)
		scanned += len(line)
		found += len(matches)
		results = append(results, toResults(name, n, set, matches)...)
		return nil
	})
	metrics.RecordScan(ahocorasick.MetricsLabel, scanned, found)
	return results, err
}

// eachLine calls fn for every line of in with its 1-based number. Lines may
// be up to maxLine bytes beyond the initial 64 KiB buffer.
func eachLine(ctx context.Context, in io.Reader, maxLine int, fn func(n int, line []byte) error) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine+64*1024)
	n := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		n++
		if err := fn(n, scanner.Bytes()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func toResults(name string, line int, set []ahocorasick.Pattern, matches []ahocorasick.Match) []Result {
	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			File:      name,
			Line:      line,
			Pattern:   set[m.PatternIndex].Text,
			PatternID: m.PatternID,
			Start:     m.Start,
			End:       m.End,
		}
	}
	return results
}

func countResults(inputs []string, set []ahocorasick.Pattern, results [][]Result) []Count {
	counts := make([]Count, 0, len(inputs)*len(set))
	for i, name := range inputs {
		perPattern := make([]int, len(set))
		for _, r := range results[i] {
			perPattern[r.PatternID]++
		}
		for id, p := range set {
			counts = append(counts, Count{File: name, Pattern: p.Text, Count: perPattern[id]})
		}
	}
	return counts
}

func writeResult(w io.Writer, r Result) error {
	var err error
	if r.Line > 0 {
		_, err = fmt.Fprintf(w, "%s:%d:%d-%d\t%s\n", r.File, r.Line, r.Start, r.End, r.Pattern)
	} else {
		_, err = fmt.Fprintf(w, "%s:%d-%d\t%s\n", r.File, r.Start, r.End, r.Pattern)
	}
	return err
}

// trimLine drops a trailing carriage return so CRLF input anchors like LF.
func trimLine(line []byte) []byte {
	return bytes.TrimSuffix(line, []byte{'\r'})
}

func init() {
	MultiCmd.Flags().StringArrayVarP(&patterns, "pattern", "e", nil, "pattern to search for (repeatable)")
	MultiCmd.Flags().StringVarP(&patternsFile, "patterns-file", "f", "", "file with one pattern per line")
	MultiCmd.Flags().BoolVarP(&caseInsensitive, "ignore-case", "i", false, "fold ASCII case in patterns and input")
	MultiCmd.Flags().BoolVar(&anchored, "anchored", false, `treat "abc*" as a line prefix and "*abc" as a line suffix`)
	MultiCmd.Flags().BoolVar(&lineMode, "lines", false, "match each line on its own and report line numbers")
	MultiCmd.Flags().BoolVar(&dense, "dense", false, "use a table-driven automaton (faster scans, 1 KiB per state)")
	MultiCmd.Flags().BoolVar(&watch, "watch", false, "reload --patterns-file on change and match standard input line by line")
	MultiCmd.Flags().StringVar(&chunkSize, "chunk-size", "64K", "read size for streaming scans (K, M and G suffixes)")
	MultiCmd.Flags().IntVarP(&concurrency, "jobs", "j", 0, "inputs searched in parallel (0 = GOMAXPROCS)")
	MultiCmd.Flags().BoolVarP(&countOnly, "count", "c", false, "print the number of occurrences per input and pattern")
}
