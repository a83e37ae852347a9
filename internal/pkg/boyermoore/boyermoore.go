// Package boyermoore implements Boyer-Moore single-pattern search using both
// the bad-character and the good-suffix heuristics.
//
// The pattern is compared right to left at each alignment. On a mismatch the
// alignment advances by the larger of the two heuristic shifts, each of which
// is individually safe, so no occurrence is skipped.
package boyermoore

// Matcher is a prepared Boyer-Moore search for one pattern.
// It is immutable after New and safe for concurrent Scan calls.
type Matcher struct {
	pattern    []byte
	badChar    BadCharTable
	goodSuffix []int
}

// New prepares a matcher for pattern. The pattern is copied.
func New(pattern []byte) *Matcher {
	p := make([]byte, len(pattern))
	copy(p, pattern)
	return &Matcher{
		pattern:    p,
		badChar:    BuildBadCharTable(p),
		goodSuffix: BuildGoodSuffixTable(p),
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

// BadChar returns the bad-character table.
func (m *Matcher) BadChar() BadCharTable {
	return m.badChar
}

// GoodSuffix returns the good-suffix table. Callers must not modify it.
func (m *Matcher) GoodSuffix() []int {
	return m.goodSuffix
}

// Scan returns the start offsets of every occurrence of the pattern in text,
// in increasing order, including overlapping ones. An empty pattern or a
// pattern longer than text yields no matches.
func (m *Matcher) Scan(text []byte) []int {
	if m == nil {
		return nil
	}
	pm, n := len(m.pattern), len(text)
	if pm == 0 || n < pm {
		return nil
	}

	var results []int
	s := 0
	for s <= n-pm {
		j := pm - 1
		for j >= 0 && m.pattern[j] == text[s+j] {
			j--
		}
		if j < 0 {
			results = append(results, s)
			s += m.goodSuffix[0]
			continue
		}
		s += max(1, m.badChar.Shift(text[s+j], j), m.goodSuffix[j+1])
	}
	return results
}

// ScanBadCharOnly is the bad-character-only variant. After a full match the
// window advances so that the byte just past it lines up with its last
// occurrence in the pattern; at the end of the text it advances by one.
func (m *Matcher) ScanBadCharOnly(text []byte) []int {
	if m == nil {
		return nil
	}
	pm, n := len(m.pattern), len(text)
	if pm == 0 || n < pm {
		return nil
	}

	var results []int
	s := 0
	for s <= n-pm {
		j := pm - 1
		for j >= 0 && m.pattern[j] == text[s+j] {
			j--
		}
		if j < 0 {
			results = append(results, s)
			if s+pm < n {
				s += pm - m.badChar.Lookup(text[s+pm])
			} else {
				s++
			}
			continue
		}
		s += max(1, m.badChar.Shift(text[s+j], j))
	}
	return results
}

// Search is the one-shot form of New(pattern).Scan(text).
func Search(text, pattern []byte) []int {
	if len(pattern) == 0 || len(text) < len(pattern) {
		return nil
	}
	return New(pattern).Scan(text)
}
