package boyermoore

// AlphabetSize is the number of distinct symbols; patterns are byte strings.
const AlphabetSize = 256

// Absent marks a symbol that does not occur in the pattern.
const Absent = -1

// BadCharTable maps each byte to the rightmost index at which it occurs in
// the pattern, or Absent.
type BadCharTable [AlphabetSize]int

// Lookup returns the rightmost index of c in the pattern, or Absent.
func (t *BadCharTable) Lookup(c byte) int {
	return t[c]
}

// Shift returns the bad-character shift for a mismatch of text byte c at
// pattern index j. The result can be zero or negative when c occurs to the
// right of j; callers clamp it.
func (t *BadCharTable) Shift(c byte, j int) int {
	return j - t[c]
}

// BuildBadCharTable builds the last-occurrence table in O(m + 256).
func BuildBadCharTable(pattern []byte) BadCharTable {
	var table BadCharTable
	for i := range table {
		table[i] = Absent
	}
	for i, c := range pattern {
		table[c] = i
	}
	return table
}

// BuildGoodSuffixTable builds the strong good-suffix shift table.
//
// The result has len(pattern)+1 entries; entry k is the shift to apply when
// pattern[k:] has matched and pattern[k-1] mismatched. Entry 0 is the shift
// after a full match. Construction runs in two O(m) passes over an auxiliary
// border-position array:
//
//  1. For every suffix, find the nearest interior re-occurrence preceded by a
//     different byte.
//  2. Where no such re-occurrence exists, fall back to the widest border of
//     the whole pattern that fits inside the matched suffix.
func BuildGoodSuffixTable(pattern []byte) []int {
	m := len(pattern)
	shift := make([]int, m+1)
	if m == 0 {
		return shift
	}
	border := make([]int, m+1)

	// Pass 1: border[i] is the start of the widest border of pattern[i:].
	i, j := m, m+1
	border[i] = j
	for i > 0 {
		for j <= m && pattern[i-1] != pattern[j-1] {
			if shift[j] == 0 {
				shift[j] = j - i
			}
			j = border[j]
		}
		i--
		j--
		border[i] = j
	}

	// Pass 2: fill the remaining entries from the borders of the full pattern.
	j = border[0]
	for i := 0; i <= m; i++ {
		if shift[i] == 0 {
			shift[i] = j
		}
		if i == j {
			j = border[j]
		}
	}
	return shift
}
