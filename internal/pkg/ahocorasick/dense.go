package ahocorasick

import (
	"time"

	"github.com/endorses/strsearch/internal/pkg/logger"
	"github.com/endorses/strsearch/internal/pkg/metrics"
	"github.com/endorses/strsearch/internal/pkg/simd"
)

// DenseMetricsLabel is the algorithm label used for dense automaton metrics.
const DenseMetricsLabel = "aho-corasick-dense"

// denseState is a node of the DenseAutomaton with a complete transition table.
//
// Memory: 256*4 + 24 (slice header) ≈ 1048 bytes per state.
// For 10K patterns averaging 10 chars, expect ~100K states = ~100MB.
type denseState struct {
	// transitions holds the goto function for every byte. Failure links are
	// folded in at build time, so every entry is a valid state index.
	transitions [256]int32

	// output contains the indices of patterns that match at this state,
	// in the same order as the sparse automaton.
	output []int
}

// DenseAutomaton is an Aho-Corasick automaton with a fixed-size transition
// table per state. Matching takes exactly one table lookup per input byte,
// at the cost of 1 KiB per state. It reports the same matches in the same
// order as Automaton.
//
// The zero value never matches.
type DenseAutomaton struct {
	states          []denseState
	patterns        []Pattern
	patternLengths  []int
	caseInsensitive bool
	fingerprint     uint64
}

// NewDenseAutomaton creates a new empty dense automaton.
func NewDenseAutomaton() *DenseAutomaton {
	return &DenseAutomaton{}
}

// Build constructs the dense automaton from patterns with the default configuration.
func (d *DenseAutomaton) Build(patterns []Pattern) error {
	return d.BuildWithConfig(patterns, DefaultConfig())
}

// BuildWithConfig constructs the dense automaton from patterns with config.
func (d *DenseAutomaton) BuildWithConfig(patterns []Pattern, config Config) error {
	sparse, err := NewBuilderWithConfig(config).Build(patterns)
	if err != nil {
		return err
	}
	*d = *Compile(sparse)
	return nil
}

// Compile converts a built sparse automaton into a dense one. The state
// numbering is kept, so the dense automaton has the same state count.
func Compile(ac *Automaton) *DenseAutomaton {
	startTime := time.Now()

	d := &DenseAutomaton{
		patterns:        ac.patterns,
		patternLengths:  ac.patternLengths,
		caseInsensitive: ac.caseInsensitive,
		fingerprint:     ac.fingerprint,
	}
	if len(ac.states) == 0 {
		return d
	}

	d.states = make([]denseState, len(ac.states))
	for i := range ac.states {
		d.states[i].output = ac.states[i].output
	}

	// Root: missing edges loop back to the root.
	root := &ac.states[rootState]
	queue := make([]int32, 0, len(ac.states))
	for i, char := range root.keys {
		d.states[rootState].transitions[char] = root.next[i]
		queue = append(queue, root.next[i])
	}

	// BFS: a state's failure target is shallower, so its row is complete
	// before the state's own row is filled.
	for head := 0; head < len(queue); head++ {
		current := queue[head]
		s := &ac.states[current]
		row := &d.states[current].transitions
		*row = d.states[s.failure].transitions
		for i, char := range s.keys {
			row[char] = s.next[i]
			queue = append(queue, s.next[i])
		}
	}

	metrics.ObserveBuild(DenseMetricsLabel, time.Since(startTime))
	logger.Debug("Compiled dense Aho-Corasick automaton",
		"state_count", len(d.states),
		"table_bytes", len(d.states)*256*4)

	return d
}

// Scan finds every occurrence of every pattern in text, in the same order
// as Automaton.Scan.
func (d *DenseAutomaton) Scan(text []byte) []Match {
	if len(d.states) == 0 || len(text) == 0 {
		return nil
	}

	input := text
	if d.caseInsensitive {
		input = simd.ToLower(text)
	}

	var results []Match
	current := int32(rootState)
	for i, b := range input {
		current = d.states[current].transitions[b]
		for _, patternIdx := range d.states[current].output {
			end := i + 1
			start := end - d.patternLengths[patternIdx]
			pattern := d.patterns[patternIdx]
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

// ScanBatch matches multiple inputs against the patterns.
func (d *DenseAutomaton) ScanBatch(inputs [][]byte) [][]Match {
	return scanBatch(inputs, d.Scan)
}

// PatternCount returns the number of patterns in the automaton.
func (d *DenseAutomaton) PatternCount() int {
	return len(d.patterns)
}

// StateCount returns the number of states, including the root.
func (d *DenseAutomaton) StateCount() int {
	return len(d.states)
}

// Fingerprint returns the fingerprint of the pattern set.
func (d *DenseAutomaton) Fingerprint() uint64 {
	return d.fingerprint
}
