package search

import (
	"context"
	"errors"
	"io"

	"github.com/endorses/strsearch/internal/pkg/ahocorasick"
	"github.com/endorses/strsearch/internal/pkg/filtering"
)

// DefaultChunkSize is the read size used by the streaming scanners.
const DefaultChunkSize = 64 * 1024

// ScanReader scans r for the matcher's pattern in chunks of chunkSize bytes.
//
// The last len(pattern)-1 bytes of each window are carried into the next, so
// an occurrence spanning a chunk boundary is found exactly once. Offsets are
// relative to the start of the stream.
func ScanReader(ctx context.Context, r io.Reader, m Matcher, chunkSize int) ([]int, error) {
	overlap := len(m.Pattern()) - 1
	if overlap < 0 {
		return nil, nil
	}

	var results []int
	err := scanChunks(ctx, r, chunkSize, overlap, func(window []byte, base, carried int) {
		for _, start := range m.Scan(window) {
			// Occurrences that end inside the carry were reported last round.
			if start+overlap+1 > carried {
				results = append(results, base+start)
			}
		}
	})
	return results, err
}

// ScanReaderMulti scans r with a in chunks of chunkSize bytes, carrying the
// longest pattern length minus one between windows. Match offsets are
// relative to the start of the stream. Automata with prefix or suffix
// patterns are rejected with ErrAnchoredPattern.
func ScanReaderMulti(ctx context.Context, r io.Reader, a *ahocorasick.Automaton, chunkSize int) ([]ahocorasick.Match, error) {
	for _, p := range a.Patterns() {
		if p.Type != filtering.PatternTypeContains {
			return nil, ErrAnchoredPattern
		}
	}

	overlap := a.MaxPatternLen() - 1
	if overlap < 0 {
		return nil, nil
	}

	var results []ahocorasick.Match
	err := scanChunks(ctx, r, chunkSize, overlap, func(window []byte, base, carried int) {
		for _, match := range ScanMulti(a, window) {
			if match.End > carried {
				match.Start += base
				match.End += base
				results = append(results, match)
			}
		}
	})
	return results, err
}

// scanChunks reads r in chunks and calls fn with each window: the carried
// tail of the previous window followed by the new chunk. base is the stream
// offset of window[0] and carried is the length of the carried tail.
func scanChunks(ctx context.Context, r io.Reader, chunkSize, overlap int, fn func(window []byte, base, carried int)) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	buf := make([]byte, overlap+chunkSize)
	carried := 0
	base := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := io.ReadFull(r, buf[carried:])
		if n > 0 {
			window := buf[:carried+n]
			fn(window, base, carried)

			keep := min(overlap, len(window))
			base += len(window) - keep
			copy(buf, window[len(window)-keep:])
			carried = keep
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
