package ahocorasick

import (
	"encoding/binary"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/endorses/strsearch/internal/pkg/logger"
	"github.com/endorses/strsearch/internal/pkg/metrics"
	"github.com/endorses/strsearch/internal/pkg/simd"
)

// MetricsLabel is the algorithm label used for automaton metrics.
const MetricsLabel = "aho-corasick"

// Config controls automaton construction.
type Config struct {
	// CaseInsensitive folds ASCII letters in patterns and input.
	CaseInsensitive bool
}

// DefaultConfig returns the default configuration: exact, case-sensitive matching.
func DefaultConfig() Config {
	return Config{}
}

// Builder constructs Aho-Corasick automata from patterns.
type Builder struct {
	config Config
}

// NewBuilder creates a new Builder with the default configuration.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// NewBuilderWithConfig creates a new Builder with config.
func NewBuilderWithConfig(config Config) *Builder {
	return &Builder{config: config}
}

// Build constructs an Aho-Corasick automaton from the given patterns.
// The build process has two phases:
//  1. Trie construction: Insert all patterns into a trie
//  2. Failure link computation: Use BFS to compute failure links for each state
//
// An empty pattern set is valid and yields an automaton that never matches.
//
// Time complexity: O(m) where m is the total length of all patterns.
// Space complexity: O(m) for the automaton states.
func (b *Builder) Build(patterns []Pattern) (*Automaton, error) {
	startTime := time.Now()

	ac := &Automaton{
		states:          []state{{}}, // Start with root state
		patterns:        make([]Pattern, len(patterns)),
		patternLengths:  make([]int, len(patterns)),
		caseInsensitive: b.config.CaseInsensitive,
	}

	// Copy patterns and record lengths
	copy(ac.patterns, patterns)
	for i, p := range patterns {
		ac.patternLengths[i] = len(p.Text)
	}

	// Phase 1: Build trie
	b.buildTrie(ac)

	// Phase 2: Compute failure links using BFS
	b.computeFailureLinks(ac)

	ac.fingerprint = fingerprint(ac.patterns, b.config)

	buildDuration := time.Since(startTime)
	metrics.ObserveBuild(MetricsLabel, buildDuration)
	logger.Debug("Built Aho-Corasick automaton",
		"pattern_count", len(patterns),
		"state_count", len(ac.states),
		"build_duration", buildDuration)

	return ac, nil
}

// buildTrie inserts all patterns into the trie.
// Patterns sharing a prefix share the path for that prefix.
func (b *Builder) buildTrie(ac *Automaton) {
	for patternIdx, pattern := range ac.patterns {
		// Skip empty patterns - they would match at every position
		if pattern.Text == "" {
			continue
		}

		text := pattern.Text
		currentState := int32(rootState)
		for i := 0; i < len(text); i++ {
			char := text[i]
			if b.config.CaseInsensitive {
				char = simd.LowerByte(char)
			}

			if nextState := ac.states[currentState].child(char); nextState >= 0 {
				currentState = nextState
				continue
			}

			// Create new state
			newStateIdx := int32(len(ac.states))
			ac.states = append(ac.states, state{depth: ac.states[currentState].depth + 1})
			ac.states[currentState].addChild(char, newStateIdx)
			currentState = newStateIdx
		}

		// Mark this state as an output state for this pattern
		ac.states[currentState].output = append(ac.states[currentState].output, patternIdx)
		if d := int(ac.states[currentState].depth); d > ac.maxDepth {
			ac.maxDepth = d
		}
	}
}

// computeFailureLinks uses BFS to compute failure links for all states.
// The failure link for a state S points to the longest proper suffix of the
// path to S that is also a prefix of some pattern.
//
// BFS order guarantees that a state's failure target is shallower and has
// already been fully processed, including its output merge, before the
// state itself is reached.
func (b *Builder) computeFailureLinks(ac *Automaton) {
	// BFS queue - start with all states directly reachable from root
	queue := make([]int32, 0, len(ac.states))

	// Initialize: states at depth 1 have failure link to root
	for _, nextState := range ac.states[rootState].next {
		ac.states[nextState].failure = rootState
		queue = append(queue, nextState)
	}

	// BFS to compute failure links for remaining states
	for head := 0; head < len(queue); head++ {
		currentState := queue[head]

		// Process all transitions from current state in label order
		for i, char := range ac.states[currentState].keys {
			nextState := ac.states[currentState].next[i]
			queue = append(queue, nextState)

			// Find failure state: follow failure links until we find a state
			// that has a transition for 'char', or reach root
			failState := ac.states[currentState].failure
			for failState != rootState && ac.states[failState].child(char) < 0 {
				failState = ac.states[failState].failure
			}

			// Set failure link
			if target := ac.states[failState].child(char); target >= 0 && target != nextState {
				ac.states[nextState].failure = target
			} else {
				ac.states[nextState].failure = rootState
			}

			// Merge outputs from failure state (suffix matches)
			// This ensures we report all patterns that end at this position
			failureOutput := ac.states[ac.states[nextState].failure].output
			if len(failureOutput) > 0 {
				own := ac.states[nextState].output
				merged := make([]int, 0, len(own)+len(failureOutput))
				merged = append(merged, own...)
				merged = append(merged, failureOutput...)
				ac.states[nextState].output = merged
			}
		}
	}
}

// fingerprint hashes the pattern set and configuration.
func fingerprint(patterns []Pattern, config Config) uint64 {
	d := xxhash.New()
	var buf [8]byte

	if config.CaseInsensitive {
		_, _ = d.Write([]byte{1})
	} else {
		_, _ = d.Write([]byte{0})
	}
	for _, p := range patterns {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(p.ID)))
		_, _ = d.Write(buf[:])
		_, _ = d.Write([]byte{byte(p.Type)})
		binary.LittleEndian.PutUint64(buf[:], uint64(len(p.Text)))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(p.Text)
	}
	return d.Sum64()
}
