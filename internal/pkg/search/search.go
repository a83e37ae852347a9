// Package search is the entry point for single- and multi-pattern matching.
//
// It selects among the KMP, Boyer-Moore, Rabin-Karp and naive scanners for a
// single pattern and builds Aho-Corasick automata for pattern sets. Matchers
// built here are immutable and record scan metrics.
package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/endorses/strsearch/internal/pkg/ahocorasick"
	"github.com/endorses/strsearch/internal/pkg/boyermoore"
	"github.com/endorses/strsearch/internal/pkg/kmp"
	"github.com/endorses/strsearch/internal/pkg/metrics"
	"github.com/endorses/strsearch/internal/pkg/rabinkarp"
)

var (
	// ErrUnknownAlgorithm is returned for an algorithm name or value that
	// does not select a scanner.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrAnchoredPattern is returned when a streaming scan is asked to
	// honour prefix or suffix anchoring.
	ErrAnchoredPattern = errors.New("anchored patterns cannot be scanned as a stream")
)

// Matcher is a prepared single-pattern search.
type Matcher interface {
	// Scan returns the start offset of every occurrence of the pattern in
	// text, ascending, overlapping occurrences included.
	Scan(text []byte) []int

	// Pattern returns the pattern the matcher was built for.
	Pattern() []byte
}

// Config carries per-algorithm parameters.
type Config struct {
	// RabinKarp configures the rolling hash.
	RabinKarp rabinkarp.Config
}

// DefaultConfig returns the default parameters for every algorithm.
func DefaultConfig() Config {
	return Config{RabinKarp: rabinkarp.DefaultConfig()}
}

// BuildSinglePatternMatcher prepares pattern for alg with default parameters.
func BuildSinglePatternMatcher(pattern []byte, alg Algorithm) (Matcher, error) {
	return BuildSinglePatternMatcherWithConfig(pattern, alg, DefaultConfig())
}

// BuildSinglePatternMatcherWithConfig prepares pattern for alg.
func BuildSinglePatternMatcherWithConfig(pattern []byte, alg Algorithm, config Config) (Matcher, error) {
	startTime := time.Now()

	var m Matcher
	switch alg {
	case AlgorithmKMP:
		m = kmp.New(pattern)
	case AlgorithmBoyerMoore:
		m = boyermoore.New(pattern)
	case AlgorithmBoyerMooreBadChar:
		m = badCharMatcher{boyermoore.New(pattern)}
	case AlgorithmRabinKarp:
		rk, err := rabinkarp.NewWithConfig(pattern, config.RabinKarp)
		if err != nil {
			return nil, fmt.Errorf("build matcher: %w", err)
		}
		m = rk
	case AlgorithmNaive:
		m = NewNaive(pattern)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(alg))
	}

	metrics.ObserveBuild(alg.String(), time.Since(startTime))
	return &instrumented{Matcher: m, label: alg.String()}, nil
}

// BuildMultiPatternMatcher builds an Aho-Corasick automaton over patterns.
// Pattern i gets ID i. An empty set is valid and never matches.
func BuildMultiPatternMatcher(patterns [][]byte) (*ahocorasick.Automaton, error) {
	return BuildMultiPatternMatcherWithConfig(patterns, ahocorasick.DefaultConfig())
}

// BuildMultiPatternMatcherWithConfig is BuildMultiPatternMatcher with
// automaton options.
func BuildMultiPatternMatcherWithConfig(patterns [][]byte, config ahocorasick.Config) (*ahocorasick.Automaton, error) {
	acPatterns := make([]ahocorasick.Pattern, len(patterns))
	for i, p := range patterns {
		acPatterns[i] = ahocorasick.Pattern{ID: i, Text: string(p)}
	}
	ac, err := ahocorasick.NewBuilderWithConfig(config).Build(acPatterns)
	if err != nil {
		return nil, fmt.Errorf("build automaton: %w", err)
	}
	return ac, nil
}

// ScanMulti runs a against text and records scan metrics.
func ScanMulti(a *ahocorasick.Automaton, text []byte) []ahocorasick.Match {
	matches := a.Scan(text)
	metrics.RecordScan(ahocorasick.MetricsLabel, len(text), len(matches))
	return matches
}

// badCharMatcher scans with the bad-character rule only.
type badCharMatcher struct {
	*boyermoore.Matcher
}

func (m badCharMatcher) Scan(text []byte) []int {
	return m.ScanBadCharOnly(text)
}

// instrumented records scan metrics around a Matcher.
type instrumented struct {
	Matcher
	label string
}

func (m *instrumented) Scan(text []byte) []int {
	matches := m.Matcher.Scan(text)
	metrics.RecordScan(m.label, len(text), len(matches))
	return matches
}

// Unwrap returns the underlying algorithm-specific matcher.
func (m *instrumented) Unwrap() Matcher {
	return m.Matcher
}
