package search

import (
	"errors"
	"fmt"

	"github.com/endorses/strsearch/internal/pkg/ahocorasick"
	"github.com/endorses/strsearch/internal/pkg/rabinkarp"
)

var (
	// ErrNoPatterns is returned when a PatternMatcher is created without patterns.
	ErrNoPatterns = errors.New("at least one pattern is required")

	// ErrNotSinglePattern is returned when a single-pattern algorithm is
	// requested from a PatternMatcher holding several patterns.
	ErrNotSinglePattern = errors.New("single-pattern algorithm needs exactly one pattern")
)

// PatternMatcher offers every algorithm over one fixed pattern list.
// Single-pattern algorithms are available when the list has exactly one
// pattern; Aho-Corasick is available for any list.
type PatternMatcher struct {
	patterns  [][]byte
	cache     *Cache
	automaton *ahocorasick.Automaton
}

// NewPatternMatcher prepares a matcher over patterns. The automaton is built
// eagerly; single-pattern matchers are built on first use.
func NewPatternMatcher(patterns ...[]byte) (*PatternMatcher, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	owned := make([][]byte, len(patterns))
	for i, p := range patterns {
		owned[i] = append([]byte(nil), p...)
	}

	automaton, err := BuildMultiPatternMatcher(owned)
	if err != nil {
		return nil, err
	}

	cache, err := NewCache(len(Algorithms()), DefaultConfig())
	if err != nil {
		return nil, err
	}

	return &PatternMatcher{patterns: owned, cache: cache, automaton: automaton}, nil
}

// Patterns returns the pattern list.
func (pm *PatternMatcher) Patterns() [][]byte {
	return pm.patterns
}

// Search runs alg for the single pattern.
func (pm *PatternMatcher) Search(text []byte, alg Algorithm) ([]int, error) {
	if len(pm.patterns) != 1 {
		return nil, fmt.Errorf("%w: have %d", ErrNotSinglePattern, len(pm.patterns))
	}
	m, err := pm.cache.Get(pm.patterns[0], alg)
	if err != nil {
		return nil, err
	}
	return m.Scan(text), nil
}

// Naive runs the naive search.
func (pm *PatternMatcher) Naive(text []byte) ([]int, error) {
	return pm.Search(text, AlgorithmNaive)
}

// KMP runs Knuth-Morris-Pratt.
func (pm *PatternMatcher) KMP(text []byte) ([]int, error) {
	return pm.Search(text, AlgorithmKMP)
}

// BoyerMoore runs Boyer-Moore with both shift rules.
func (pm *PatternMatcher) BoyerMoore(text []byte) ([]int, error) {
	return pm.Search(text, AlgorithmBoyerMoore)
}

// BoyerMooreBadChar runs Boyer-Moore with the bad-character rule only.
func (pm *PatternMatcher) BoyerMooreBadChar(text []byte) ([]int, error) {
	return pm.Search(text, AlgorithmBoyerMooreBadChar)
}

// RabinKarp runs Rabin-Karp with the given prime modulus.
func (pm *PatternMatcher) RabinKarp(text []byte, prime int64) ([]int, error) {
	if len(pm.patterns) != 1 {
		return nil, fmt.Errorf("%w: have %d", ErrNotSinglePattern, len(pm.patterns))
	}
	config := rabinkarp.DefaultConfig()
	config.Prime = prime
	m, err := BuildSinglePatternMatcherWithConfig(pm.patterns[0], AlgorithmRabinKarp, Config{RabinKarp: config})
	if err != nil {
		return nil, err
	}
	return m.Scan(text), nil
}

// AhoCorasick reports every occurrence of every pattern. Match.PatternIndex
// indexes Patterns.
func (pm *PatternMatcher) AhoCorasick(text []byte) []ahocorasick.Match {
	return ScanMulti(pm.automaton, text)
}
