package find

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/endorses/strsearch/internal/pkg/cmdutil"
	"github.com/endorses/strsearch/internal/pkg/logger"
	"github.com/endorses/strsearch/internal/pkg/output"
	"github.com/endorses/strsearch/internal/pkg/rabinkarp"
	"github.com/endorses/strsearch/internal/pkg/search"
	"github.com/endorses/strsearch/internal/pkg/signals"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// FindCmd searches inputs for one or more patterns, each on its own.
var FindCmd = &cobra.Command{
	Use:   "find [PATTERN] [FILE...]",
	Short: "Search for a single pattern",
	Long: `Search files or standard input for every occurrence of a pattern with a
single-pattern algorithm. Overlapping occurrences are reported.

Algorithms:
  kmp                  Knuth-Morris-Pratt (default)
  boyer-moore          Boyer-Moore with bad-character and good-suffix rules
  boyer-moore-badchar  Boyer-Moore with the bad-character rule only
  rabin-karp           Rabin-Karp rolling hash (see --prime)
  naive                brute force

Examples:
  strsearch find needle haystack.txt
  strsearch find -a boyer-moore -e GET -e POST access.log
  cat notes.txt | strsearch find --lines TODO
  strsearch find -a rabin-karp --prime 1000003 abc big.bin`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: bindFlags,
	RunE:    runFind,
}

var (
	algorithmName string
	patterns      []string
	prime         int64
	chunkSize     string
	concurrency   int
	cacheSize     int
	lineMode      bool
	countOnly     bool
)

// Result is one occurrence of a pattern.
type Result struct {
	File    string `json:"file" yaml:"file"`
	Pattern string `json:"pattern" yaml:"pattern"`
	// Line is the 1-based line number in line mode, 0 otherwise.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`
	// Offset is the byte offset in the input, or within the line in line mode.
	Offset int `json:"offset" yaml:"offset"`
}

// Count is the number of occurrences of a pattern in one input.
type Count struct {
	File    string `json:"file" yaml:"file"`
	Pattern string `json:"pattern" yaml:"pattern"`
	Count   int    `json:"count" yaml:"count"`
}

// options are the resolved settings of one run.
type options struct {
	algorithm   search.Algorithm
	chunkSize   int
	concurrency int
	lineMode    bool
}

func bindFlags(cmd *cobra.Command, args []string) error {
	return cmdutil.BindFlags(cmd, map[string]string{
		"algorithm":       "algorithm",
		"rabinkarp.prime": "prime",
		"chunk_size":      "chunk-size",
		"concurrency":     "jobs",
		"cache_size":      "cache-size",
	})
}

func runFind(cmd *cobra.Command, args []string) error {
	needles := patterns
	if len(needles) == 0 {
		if len(args) == 0 {
			return fmt.Errorf("no pattern given")
		}
		needles, args = args[:1], args[1:]
	}
	needles = uniqueNeedles(needles)

	opts, config, err := resolveOptions()
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cmdutil.GetStringConfig("output", string(output.FormatText)))
	if err != nil {
		return err
	}

	cache, err := search.NewCache(cmdutil.GetIntConfig("cache_size", cacheSize), config)
	if err != nil {
		return fmt.Errorf("failed to create matcher cache: %w", err)
	}
	matchers := make([]search.Matcher, len(needles))
	for i, needle := range needles {
		if matchers[i], err = cache.Get([]byte(needle), opts.algorithm); err != nil {
			return err
		}
	}
	logger.Debug("Prepared matchers",
		"algorithm", opts.algorithm.String(),
		"patterns", len(needles),
		"cache", cache.Stats())

	ctx, cancel := context.WithCancel(cmd.Context())
	cleanup := signals.SetupHandler(ctx, cancel)
	defer cleanup()

	inputs := cmdutil.Inputs(args)
	results, err := searchInputs(ctx, cmd, inputs, matchers, opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if countOnly {
		counts := countResults(inputs, matchers, results)
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
		return writeText(w, flat)
	})
}

// resolveOptions applies flag, environment and config file precedence.
func resolveOptions() (options, search.Config, error) {
	alg, err := search.ParseAlgorithm(cmdutil.GetStringConfig("algorithm", algorithmName))
	if err != nil {
		return options{}, search.Config{}, err
	}

	config := search.DefaultConfig()
	config.RabinKarp.Prime = cmdutil.GetInt64Config("rabinkarp.prime", prime)
	if alg == search.AlgorithmRabinKarp {
		if err := config.RabinKarp.Validate(); err != nil {
			return options{}, search.Config{}, err
		}
	} else {
		// The prime only matters to Rabin-Karp; keep cache keys stable.
		config.RabinKarp = rabinkarp.DefaultConfig()
	}

	size, err := cmdutil.GetSizeConfig("chunk_size", chunkSize)
	if err != nil {
		return options{}, search.Config{}, err
	}

	return options{
		algorithm:   alg,
		chunkSize:   size,
		concurrency: cmdutil.GetIntConfig("concurrency", concurrency),
		lineMode:    lineMode,
	}, config, nil
}

// searchInputs searches every input concurrently. results[i] holds the
// occurrences in inputs[i], grouped by pattern in the order given.
func searchInputs(ctx context.Context, cmd *cobra.Command, inputs []string, matchers []search.Matcher, opts options) ([][]Result, error) {
	results := make([][]Result, len(inputs))

	limit := opts.concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, name := range inputs {
		eg.Go(func() error {
			r, err := searchInput(ctx, cmd, name, matchers, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func searchInput(ctx context.Context, cmd *cobra.Command, name string, matchers []search.Matcher, opts options) ([]Result, error) {
	in, err := cmdutil.OpenInput(cmd, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil {
			logger.Warn("failed to close input", "file", name, "error", cerr)
		}
	}()

	if opts.lineMode {
		return searchLines(ctx, name, in, matchers, opts)
	}

	// One pattern streams; several need the input more than once.
	if len(matchers) == 1 {
		offsets, err := search.ScanReader(ctx, in, matchers[0], opts.chunkSize)
		if err != nil {
			return nil, err
		}
		return toResults(name, matchers[0], 0, offsets), nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	var results []Result
	for _, m := range matchers {
		offsets, err := search.ScanReader(ctx, bytes.NewReader(data), m, opts.chunkSize)
		if err != nil {
			return nil, err
		}
		results = append(results, toResults(name, m, 0, offsets)...)
	}
	return results, nil
}

// searchLines scans each line on its own, so occurrences never span lines.
func searchLines(ctx context.Context, name string, in io.Reader, matchers []search.Matcher, opts options) ([]Result, error) {
	var lines [][]byte
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), opts.chunkSize+64*1024)
	for scanner.Scan() {
		lines = append(lines, bytes.Clone(scanner.Bytes()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var results []Result
	for _, m := range matchers {
		perLine, err := search.ScanAll(ctx, m, lines, opts.concurrency)
		if err != nil {
			return nil, err
		}
		for i, offsets := range perLine {
			results = append(results, toResults(name, m, i+1, offsets)...)
		}
	}
	return results, nil
}

func toResults(name string, m search.Matcher, line int, offsets []int) []Result {
	results := make([]Result, len(offsets))
	for i, off := range offsets {
		results[i] = Result{File: name, Pattern: string(m.Pattern()), Line: line, Offset: off}
	}
	return results
}

// uniqueNeedles drops repeated patterns, keeping first-seen order.
func uniqueNeedles(needles []string) []string {
	seen := make(map[string]struct{}, len(needles))
	unique := make([]string, 0, len(needles))
	for _, needle := range needles {
		if _, ok := seen[needle]; ok {
			continue
		}
		seen[needle] = struct{}{}
		unique = append(unique, needle)
	}
	return unique
}

func countResults(inputs []string, matchers []search.Matcher, results [][]Result) []Count {
	counts := make([]Count, 0, len(inputs)*len(matchers))
	for i, name := range inputs {
		for _, m := range matchers {
			pattern := string(m.Pattern())
			n := 0
			for _, r := range results[i] {
				if r.Pattern == pattern {
					n++
				}
			}
			counts = append(counts, Count{File: name, Pattern: pattern, Count: n})
		}
	}
	return counts
}

func writeText(w io.Writer, results []Result) error {
	for _, r := range results {
		var err error
		if r.Line > 0 {
			_, err = fmt.Fprintf(w, "%s:%d:%d\t%s\n", r.File, r.Line, r.Offset, r.Pattern)
		} else {
			_, err = fmt.Fprintf(w, "%s:%d\t%s\n", r.File, r.Offset, r.Pattern)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	FindCmd.Flags().StringVarP(&algorithmName, "algorithm", "a", search.AlgorithmKMP.String(), "search algorithm")
	FindCmd.Flags().StringArrayVarP(&patterns, "pattern", "e", nil, "pattern to search for (repeatable); all arguments are then files")
	FindCmd.Flags().Int64Var(&prime, "prime", rabinkarp.DefaultPrime, "Rabin-Karp modulus")
	FindCmd.Flags().StringVar(&chunkSize, "chunk-size", "64K", "read size for streaming scans (K, M and G suffixes)")
	FindCmd.Flags().IntVarP(&concurrency, "jobs", "j", 0, "inputs searched in parallel (0 = GOMAXPROCS)")
	FindCmd.Flags().IntVar(&cacheSize, "cache-size", search.DefaultCacheSize, "prepared matchers kept for reuse")
	FindCmd.Flags().BoolVar(&lineMode, "lines", false, "search each line on its own and report line numbers")
	FindCmd.Flags().BoolVarP(&countOnly, "count", "c", false, "print the number of occurrences per input and pattern")
}
