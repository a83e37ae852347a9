package search

import (
	"slices"

	"github.com/endorses/strsearch/internal/pkg/simd"
)

// Naive returns every start offset of pattern in text by comparing the
// pattern at each offset. It is O(n*m) and serves as the reference the
// other scanners are checked against. An empty pattern matches nowhere.
func Naive(text, pattern []byte) []int {
	m := len(pattern)
	if m == 0 || m > len(text) {
		return nil
	}

	var matches []int
	for s := 0; s+m <= len(text); s++ {
		if text[s] == pattern[0] && simd.BytesEqual(text[s:s+m], pattern) {
			matches = append(matches, s)
		}
	}
	return matches
}

// NaiveMatcher wraps Naive in the Matcher interface.
type NaiveMatcher struct {
	pattern []byte
}

// NewNaive prepares a naive matcher. The pattern is copied.
func NewNaive(pattern []byte) *NaiveMatcher {
	return &NaiveMatcher{pattern: slices.Clone(pattern)}
}

// Scan returns every start offset of the pattern in text.
func (m *NaiveMatcher) Scan(text []byte) []int {
	if m == nil {
		return nil
	}
	return Naive(text, m.pattern)
}

// Pattern returns the pattern the matcher was built for.
func (m *NaiveMatcher) Pattern() []byte {
	return m.pattern
}
