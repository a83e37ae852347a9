package search

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ScanAll scans every text with m concurrently, running at most limit scans
// at once. A non-positive limit uses GOMAXPROCS. results[i] holds the
// matches for texts[i]. Cancelling ctx stops scheduling further texts.
//
// Matchers are read-only after construction, so one matcher is shared by
// all goroutines.
func ScanAll(ctx context.Context, m Matcher, texts [][]byte, limit int) ([][]int, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([][]int, len(texts))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, text := range texts {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = m.Scan(text)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
