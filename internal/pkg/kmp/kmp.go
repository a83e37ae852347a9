// Package kmp implements Knuth-Morris-Pratt single-pattern search.
//
// The pattern is preprocessed once into its failure function (the LPS
// array); scanning then walks the text left to right exactly once and never
// moves the text pointer backwards, giving O(n + m) total work.
package kmp

// BuildLPS computes the longest-proper-prefix-which-is-also-suffix array.
// lps[i] is the length of the longest proper prefix of pattern[:i+1] that is
// also a suffix of it. An empty pattern yields an empty array.
func BuildLPS(pattern []byte) []int {
	m := len(pattern)
	lps := make([]int, m)
	if m == 0 {
		return lps
	}

	length := 0 // length of the previous longest prefix-suffix
	i := 1
	for i < m {
		if pattern[i] == pattern[length] {
			length++
			lps[i] = length
			i++
			continue
		}
		if length != 0 {
			// Fall back to the next shorter border without advancing i.
			length = lps[length-1]
			continue
		}
		lps[i] = 0
		i++
	}
	return lps
}

// Matcher is a prepared KMP search for one pattern.
// It is immutable after New and safe for concurrent Scan calls.
type Matcher struct {
	pattern []byte
	lps     []int
}

// New prepares a matcher for pattern. The pattern is copied.
func New(pattern []byte) *Matcher {
	p := make([]byte, len(pattern))
	copy(p, pattern)
	return &Matcher{
		pattern: p,
		lps:     BuildLPS(p),
	}
}

// NewString is a convenience wrapper around New.
func NewString(pattern string) *Matcher {
	return New([]byte(pattern))
}

// Pattern returns the pattern the matcher was built for.
func (m *Matcher) Pattern() []byte {
	if m == nil {
		return nil
	}
	return m.pattern
}

// LPS returns the failure function. Callers must not modify it.
func (m *Matcher) LPS() []int {
	if m == nil {
		return nil
	}
	return m.lps
}

// Scan returns the start offsets of every occurrence of the pattern in text,
// in increasing order. Overlapping occurrences are all reported.
// An empty pattern never matches.
func (m *Matcher) Scan(text []byte) []int {
	if m == nil || len(m.pattern) == 0 || len(text) < len(m.pattern) {
		return nil
	}

	var results []int
	pm := len(m.pattern)
	j := 0
	for i := 0; i < len(text); i++ {
		for j > 0 && text[i] != m.pattern[j] {
			j = m.lps[j-1]
		}
		if text[i] == m.pattern[j] {
			j++
		}
		if j == pm {
			results = append(results, i-pm+1)
			// Continue from the longest border so overlaps are found.
			j = m.lps[j-1]
		}
	}
	return results
}

// Index returns the first occurrence of the pattern in text, or -1.
func (m *Matcher) Index(text []byte) int {
	if m == nil || len(m.pattern) == 0 || len(text) < len(m.pattern) {
		return -1
	}

	pm := len(m.pattern)
	j := 0
	for i := 0; i < len(text); i++ {
		for j > 0 && text[i] != m.pattern[j] {
			j = m.lps[j-1]
		}
		if text[i] == m.pattern[j] {
			j++
		}
		if j == pm {
			return i - pm + 1
		}
	}
	return -1
}

// Search is the one-shot form of New(pattern).Scan(text).
func Search(text, pattern []byte) []int {
	return New(pattern).Scan(text)
}
