package multi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/endorses/strsearch/internal/pkg/ahocorasick"
	"github.com/endorses/strsearch/internal/pkg/cmdutil"
	"github.com/endorses/strsearch/internal/pkg/logger"
	"github.com/endorses/strsearch/internal/pkg/metrics"
	"github.com/endorses/strsearch/internal/pkg/output"
	"github.com/endorses/strsearch/internal/pkg/patternwatch"
	"github.com/endorses/strsearch/internal/pkg/signals"
	"github.com/spf13/cobra"
)

// runWatch matches input lines against a pattern set that follows the
// patterns file. Lines are matched against whichever set is active when
// they arrive; results are written as soon as each line is scanned.
func runWatch(ctx context.Context, cmd *cobra.Command, args []string, config ahocorasick.Config, format output.Format) error {
	size, err := cmdutil.GetSizeConfig("chunk_size", chunkSize)
	if err != nil {
		return err
	}

	matcher := ahocorasick.NewBufferedMatcherWithConfig(config)
	watcherConfig := patternwatch.DefaultConfig()
	watcherConfig.Anchored = anchored
	watcher := patternwatch.New(patternsFile, matcher, watcherConfig)
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			logger.Warn("failed to stop patterns watcher", "error", err)
		}
	}()

	stopHangup := signals.OnHangup(ctx, func() {
		if err := watcher.Reload(); err != nil {
			logger.Warn("failed to reload patterns file", "error", err)
		}
	})
	defer stopHangup()

	w := &recordWriter{w: cmd.OutOrStdout(), format: format}
	// Reads block until input arrives, so the loop runs apart from the
	// select that honours cancellation.
	done := make(chan error, 1)
	go func() {
		for _, name := range cmdutil.Inputs(args) {
			if err := watchInput(ctx, cmd, name, matcher, size, w); err != nil {
				done <- fmt.Errorf("%s: %w", name, err)
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("watch finished", "stats", watcher.Stats(), "matcher", matcher.GetStats())
	return nil
}

func watchInput(ctx context.Context, cmd *cobra.Command, name string, matcher *ahocorasick.BufferedMatcher, maxLine int, w *recordWriter) error {
	in, err := cmdutil.OpenInput(cmd, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := in.Close(); cerr != nil {
			logger.Warn("failed to close input", "file", name, "error", cerr)
		}
	}()

	return eachLine(ctx, in, maxLine, func(n int, line []byte) error {
		line = trimLine(line)
		matches := matcher.Scan(line)
		metrics.RecordScan(ahocorasick.MetricsLabel, len(line), len(matches))
		for _, m := range matches {
			// The set may have been swapped since the scan, so report the
			// matched input rather than looking the pattern up.
			r := Result{
				File:      name,
				Line:      n,
				Pattern:   string(line[m.Start:m.End]),
				PatternID: m.PatternID,
				Start:     m.Start,
				End:       m.End,
			}
			if err := w.write(r); err != nil {
				return err
			}
		}
		return nil
	})
}

// recordWriter writes one record at a time: a line of text, a line of
// compact JSON, or a YAML document.
type recordWriter struct {
	mu     sync.Mutex
	w      io.Writer
	format output.Format
}

func (rw *recordWriter) write(r Result) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	switch rw.format {
	case output.FormatJSON:
		data, err := output.MarshalJSONPretty(r, false)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(rw.w, string(data))
		return err
	case output.FormatYAML:
		if _, err := io.WriteString(rw.w, "---\n"); err != nil {
			return err
		}
		return output.Write(rw.w, rw.format, r, nil)
	}
	return writeResult(rw.w, r)
}
