// Package ahocorasick provides an implementation of the Aho-Corasick string matching algorithm.
// The Aho-Corasick algorithm allows matching multiple patterns simultaneously against an input
// string in O(n + m + z) time, where n is the input length, m is the total pattern length,
// and z is the number of matches.
//
// Patterns are inserted into a shared prefix trie; failure links computed
// breadth-first generalise the KMP failure function from a single pattern to
// the whole trie. Every overlapping occurrence of every pattern is reported.
package ahocorasick

import "github.com/endorses/strsearch/internal/pkg/filtering"

// Pattern represents a pattern to be matched by the Aho-Corasick automaton.
type Pattern struct {
	// ID is a caller-chosen identifier for this pattern, returned in match results.
	ID int

	// Text is the literal pattern. Empty patterns are accepted but never match.
	Text string

	// Type specifies how the pattern should be matched (contains, prefix, suffix).
	Type filtering.PatternType
}

// PatternsFromEntries converts parsed pattern lines into automaton patterns.
// The ID of each pattern is its index in entries.
func PatternsFromEntries(entries []filtering.Entry) []Pattern {
	patterns := make([]Pattern, len(entries))
	for i, e := range entries {
		patterns[i] = Pattern{ID: i, Text: e.Text, Type: e.Type}
	}
	return patterns
}

// Match represents one occurrence found by the automaton.
type Match struct {
	// PatternID is the ID of the matched pattern.
	PatternID int

	// PatternIndex is the index of the pattern in the slice passed to Build.
	PatternIndex int

	// Start is the byte offset of the first byte of the occurrence.
	Start int

	// End is the byte offset just past the last byte of the occurrence.
	End int
}

// Len returns the length of the matched occurrence.
func (m Match) Len() int {
	return m.End - m.Start
}

// Matcher is the interface for multi-pattern matching implementations.
// The sparse automaton, the dense automaton, the multi-mode automaton and the
// buffered matcher all satisfy it.
type Matcher interface {
	// Build constructs the matcher from a set of patterns.
	// For Aho-Corasick, this builds the trie and computes failure links.
	Build(patterns []Pattern) error

	// Scan reports every occurrence of every pattern in text, ordered by
	// end offset. Matches sharing an end offset are ordered longest first,
	// then by pattern index.
	Scan(text []byte) []Match

	// ScanBatch scans multiple inputs. Returns one result slice per input.
	ScanBatch(inputs [][]byte) [][]Match

	// PatternCount returns the number of patterns in the matcher.
	PatternCount() int
}

// validateMatch checks if a match is valid for the pattern's anchoring.
func validateMatch(patternType filtering.PatternType, matchStart, matchEnd, inputLen int) bool {
	switch patternType {
	case filtering.PatternTypePrefix:
		return matchStart == 0
	case filtering.PatternTypeSuffix:
		return matchEnd == inputLen
	case filtering.PatternTypeContains:
		return true
	}
	return false
}

// scanBatch applies scan to each input.
func scanBatch(inputs [][]byte, scan func([]byte) []Match) [][]Match {
	results := make([][]Match, len(inputs))
	for i, input := range inputs {
		results[i] = scan(input)
	}
	return results
}

// BuildMatcher builds a matcher suited to patterns: a MultiModeAutomaton when
// any pattern is anchored, otherwise a DenseAutomaton when dense is set, and
// an Automaton in all other cases.
func BuildMatcher(patterns []Pattern, config Config, dense bool) (Matcher, error) {
	switch {
	case hasAnchored(patterns):
		m := NewMultiModeAutomatonWithConfig(config)
		if err := m.Build(patterns); err != nil {
			return nil, err
		}
		return m, nil
	case dense:
		d := NewDenseAutomaton()
		if err := d.BuildWithConfig(patterns, config); err != nil {
			return nil, err
		}
		return d, nil
	}
	a := &Automaton{}
	if err := a.BuildWithConfig(patterns, config); err != nil {
		return nil, err
	}
	return a, nil
}

func hasAnchored(patterns []Pattern) bool {
	for _, p := range patterns {
		if p.Type != filtering.PatternTypeContains {
			return true
		}
	}
	return false
}
