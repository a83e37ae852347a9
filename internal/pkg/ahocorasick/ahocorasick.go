package ahocorasick

import (
	"slices"

	"github.com/endorses/strsearch/internal/pkg/simd"
)

// rootState is the index of the root in the state arena.
const rootState = 0

// state represents a node in the Aho-Corasick automaton.
//
// The root exclusively owns the trie: every state is reachable from it by
// exactly one path of child edges. Failure links are plain indices into the
// same arena and never imply ownership.
type state struct {
	// keys holds the edge labels in ascending order; next[i] is the child
	// reached on keys[i]. Sorted edges make BFS order, and therefore output
	// order, deterministic.
	keys []byte
	next []int32

	// failure is the state for the longest proper suffix of this state's
	// path that is also a path from the root.
	failure int32

	// depth is the length of the path from the root.
	depth int32

	// output holds the indices of patterns that end at this state: the
	// state's own patterns first, then the merged outputs of its failure
	// state. Computed once at build time.
	output []int
}

// child returns the child reached on b, or -1.
func (s *state) child(b byte) int32 {
	if len(s.keys) <= 8 {
		for i, k := range s.keys {
			if k == b {
				return s.next[i]
			}
		}
		return -1
	}
	if i, ok := slices.BinarySearch(s.keys, b); ok {
		return s.next[i]
	}
	return -1
}

// addChild links b to the child at index target, keeping keys sorted.
func (s *state) addChild(b byte, target int32) {
	i, _ := slices.BinarySearch(s.keys, b)
	s.keys = slices.Insert(s.keys, i, b)
	s.next = slices.Insert(s.next, i, target)
}

// Automaton is an Aho-Corasick automaton for multi-pattern string matching.
// It supports O(n + m + z) matching where n is input length, m is total pattern
// length, and z is number of matches.
//
// An Automaton is immutable once built; concurrent Scan calls need no locking.
// The zero value has no states and never matches.
type Automaton struct {
	// states is the automaton's state table.
	// State 0 is the root state.
	states []state

	// patterns stores the original patterns for result reporting.
	patterns []Pattern

	// patternLengths stores the length of each pattern for offset calculation.
	patternLengths []int

	// caseInsensitive folds ASCII letters in patterns and input.
	caseInsensitive bool

	// fingerprint identifies the pattern set and options.
	fingerprint uint64

	// maxDepth is the length of the longest non-empty pattern.
	maxDepth int
}

// Build constructs the automaton from patterns with the default configuration.
// This delegates to the Builder for actual construction.
func (ac *Automaton) Build(patterns []Pattern) error {
	return ac.BuildWithConfig(patterns, DefaultConfig())
}

// BuildWithConfig constructs the automaton from patterns with config.
func (ac *Automaton) BuildWithConfig(patterns []Pattern, config Config) error {
	built, err := NewBuilderWithConfig(config).Build(patterns)
	if err != nil {
		return err
	}
	*ac = *built
	return nil
}

// Scan finds every occurrence of every pattern in text.
//
// Matches are emitted as the scan reaches their last byte, so they are
// ordered by end offset; matches ending at the same offset come out in the
// state's output order (longest first, then by pattern index).
func (ac *Automaton) Scan(text []byte) []Match {
	if len(ac.states) == 0 || len(text) == 0 {
		return nil
	}

	input := text
	if ac.caseInsensitive {
		input = simd.ToLower(text)
	}

	var results []Match
	current := int32(rootState)
	for i, b := range input {
		current = ac.step(current, b)
		for _, patternIdx := range ac.states[current].output {
			end := i + 1
			start := end - ac.patternLengths[patternIdx]
			pattern := ac.patterns[patternIdx]
			if !validateMatch(pattern.Type, start, end, len(input)) {
				continue
			}
			results = append(results, Match{
				PatternID:    pattern.ID,
				PatternIndex: patternIdx,
				Start:        start,
				End:          end,
			})
		}
	}
	return results
}

// step consumes one byte from state current and returns the next state.
// Failure links are followed until a state with an edge on b is found; the
// root absorbs bytes it has no edge for.
func (ac *Automaton) step(current int32, b byte) int32 {
	for {
		if next := ac.states[current].child(b); next >= 0 {
			return next
		}
		if current == rootState {
			return rootState
		}
		current = ac.states[current].failure
	}
}

// IsMatch reports whether any pattern occurs in text. It stops at the first
// valid occurrence.
func (ac *Automaton) IsMatch(text []byte) bool {
	if len(ac.states) == 0 || len(text) == 0 {
		return false
	}
	input := text
	if ac.caseInsensitive {
		input = simd.ToLower(text)
	}

	current := int32(rootState)
	for i, b := range input {
		current = ac.step(current, b)
		for _, patternIdx := range ac.states[current].output {
			end := i + 1
			if validateMatch(ac.patterns[patternIdx].Type, end-ac.patternLengths[patternIdx], end, len(input)) {
				return true
			}
		}
	}
	return false
}

// ScanBatch matches multiple inputs against the patterns.
func (ac *Automaton) ScanBatch(inputs [][]byte) [][]Match {
	return scanBatch(inputs, ac.Scan)
}

// PatternCount returns the number of patterns in the automaton.
func (ac *Automaton) PatternCount() int {
	return len(ac.patterns)
}

// Pattern returns the pattern at index i as passed to Build.
func (ac *Automaton) Pattern(i int) Pattern {
	return ac.patterns[i]
}

// Patterns returns a copy of the patterns.
func (ac *Automaton) Patterns() []Pattern {
	return slices.Clone(ac.patterns)
}

// StateCount returns the number of states, including the root.
func (ac *Automaton) StateCount() int {
	return len(ac.states)
}

// MaxPatternLen returns the length of the longest pattern.
func (ac *Automaton) MaxPatternLen() int {
	return ac.maxDepth
}

// CaseInsensitive reports whether the automaton folds ASCII case.
func (ac *Automaton) CaseInsensitive() bool {
	return ac.caseInsensitive
}

// Fingerprint identifies the pattern set and options the automaton was built
// from. Two automata built from the same input have the same fingerprint.
func (ac *Automaton) Fingerprint() uint64 {
	return ac.fingerprint
}

// Built reports whether the automaton has been built.
func (ac *Automaton) Built() bool {
	return len(ac.states) > 0
}
