package ahocorasick

import (
	"slices"

	"github.com/endorses/strsearch/internal/pkg/filtering"
)

// MultiModeAutomaton provides optimized pattern matching using separate automata
// for different pattern types (contains, prefix, suffix).
//
// Prefix patterns can only match within the first MaxPatternLen bytes, so
// only that window is scanned. For suffix matching, we reverse both patterns
// and the input tail. This transforms suffix matching into prefix matching,
// which is naturally efficient for AC automata (match at offset 0).
//
// Example:
//   - Suffix pattern "456789" matches "+49123456789"
//   - Reversed: "987654" matches "98765432194+" at offset 0
type MultiModeAutomaton struct {
	// config is applied to all three automata.
	config Config

	// containsAC matches patterns that can appear anywhere in the input.
	containsAC *Automaton

	// prefixAC matches patterns that must appear at the start of the input.
	prefixAC *Automaton

	// suffixAC matches REVERSED patterns against REVERSED inputs.
	// A suffix match becomes a prefix match when both are reversed.
	suffixAC *Automaton

	// patterns stores all original patterns for ID lookup.
	patterns []Pattern

	// containsPatterns, prefixPatterns and suffixPatterns map each
	// automaton's pattern index back to the original index.
	containsPatterns []int
	prefixPatterns   []int
	suffixPatterns   []int
}

// NewMultiModeAutomaton creates a new MultiModeAutomaton with the default configuration.
func NewMultiModeAutomaton() *MultiModeAutomaton {
	return NewMultiModeAutomatonWithConfig(DefaultConfig())
}

// NewMultiModeAutomatonWithConfig creates a new MultiModeAutomaton with config.
func NewMultiModeAutomatonWithConfig(config Config) *MultiModeAutomaton {
	return &MultiModeAutomaton{config: config}
}

// Build constructs the multi-mode automata from patterns.
// Patterns are partitioned by type and built into separate automata.
func (m *MultiModeAutomaton) Build(patterns []Pattern) error {
	m.patterns = slices.Clone(patterns)
	m.containsPatterns = nil
	m.prefixPatterns = nil
	m.suffixPatterns = nil

	// Partition patterns by type. Each automaton matches anywhere; anchoring
	// is checked against the offsets afterwards.
	var containsPatterns, prefixPatterns, suffixPatterns []Pattern
	for i, p := range patterns {
		switch p.Type {
		case filtering.PatternTypeContains:
			containsPatterns = append(containsPatterns, Pattern{ID: p.ID, Text: p.Text})
			m.containsPatterns = append(m.containsPatterns, i)

		case filtering.PatternTypePrefix:
			prefixPatterns = append(prefixPatterns, Pattern{ID: p.ID, Text: p.Text})
			m.prefixPatterns = append(m.prefixPatterns, i)

		case filtering.PatternTypeSuffix:
			// Reverse the pattern for suffix matching
			suffixPatterns = append(suffixPatterns, Pattern{ID: p.ID, Text: reverseString(p.Text)})
			m.suffixPatterns = append(m.suffixPatterns, i)
		}
	}

	builder := NewBuilderWithConfig(m.config)
	var err error
	if m.containsAC, err = builder.Build(containsPatterns); err != nil {
		return err
	}
	if m.prefixAC, err = builder.Build(prefixPatterns); err != nil {
		return err
	}
	if m.suffixAC, err = builder.Build(suffixPatterns); err != nil {
		return err
	}

	return nil
}

// Scan finds all patterns that match the input, honouring each pattern's
// anchoring. Results are ordered like Automaton.Scan.
func (m *MultiModeAutomaton) Scan(text []byte) []Match {
	if len(m.patterns) == 0 || len(text) == 0 {
		return nil
	}

	var results []Match

	// Contains matches - any position is valid
	for _, match := range m.containsAC.Scan(text) {
		results = append(results, m.remap(match, m.containsPatterns))
	}

	// Prefix matches - must start at position 0
	if m.prefixAC.PatternCount() > 0 {
		window := text[:min(len(text), m.prefixAC.MaxPatternLen())]
		for _, match := range m.prefixAC.Scan(window) {
			if match.Start == 0 {
				results = append(results, m.remap(match, m.prefixPatterns))
			}
		}
	}

	// Suffix matches - reverse input tail, match reversed patterns
	if m.suffixAC.PatternCount() > 0 {
		tail := text[len(text)-min(len(text), m.suffixAC.MaxPatternLen()):]
		for _, match := range m.suffixAC.Scan(reverseBytes(tail)) {
			if match.Start != 0 {
				continue
			}
			// Suffix in reversed input = prefix at position 0
			original := m.remap(match, m.suffixPatterns)
			original.Start = len(text) - match.End
			original.End = len(text)
			results = append(results, original)
		}
	}

	slices.SortFunc(results, compareMatches)
	return results
}

// remap translates a match from a partition automaton to the original pattern.
func (m *MultiModeAutomaton) remap(match Match, indices []int) Match {
	originalIdx := indices[match.PatternIndex]
	match.PatternIndex = originalIdx
	match.PatternID = m.patterns[originalIdx].ID
	return match
}

// ScanBatch matches multiple inputs against the patterns.
func (m *MultiModeAutomaton) ScanBatch(inputs [][]byte) [][]Match {
	return scanBatch(inputs, m.Scan)
}

// PatternCount returns the total number of patterns.
func (m *MultiModeAutomaton) PatternCount() int {
	return len(m.patterns)
}

// reverseBytes returns a reversed copy of the byte slice.
func reverseBytes(b []byte) []byte {
	reversed := slices.Clone(b)
	slices.Reverse(reversed)
	return reversed
}

// reverseString returns a reversed copy of the string.
func reverseString(s string) string {
	return string(reverseBytes([]byte(s)))
}
