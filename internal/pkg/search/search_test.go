package search

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endorses/strsearch/internal/pkg/ahocorasick"
	"github.com/endorses/strsearch/internal/pkg/boyermoore"
	"github.com/endorses/strsearch/internal/pkg/kmp"
	"github.com/endorses/strsearch/internal/pkg/metrics"
	"github.com/endorses/strsearch/internal/pkg/rabinkarp"
)

func randomString(rng *rand.Rand, alphabet string, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.IntN(len(alphabet))]
	}
	return b
}

func counterValue(t *testing.T, name, labelName, labelValue string) float64 {
	t.Helper()
	samples, err := metrics.Snapshot()
	require.NoError(t, err)
	for _, s := range samples {
		if s.Name == name && s.Labels[labelName] == labelValue {
			return s.Value
		}
	}
	return 0
}

func TestNaive(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		pattern  string
		expected []int
	}{
		{"classic", "abacababcaba", "aba", []int{0, 4, 9}},
		{"overlapping", "aaaa", "aa", []int{0, 1, 2}},
		{"whole text", "abc", "abc", []int{0}},
		{"pattern longer than text", "ab", "abc", nil},
		{"empty pattern", "abc", "", nil},
		{"empty text", "", "a", nil},
		{"no match", "abc", "d", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Naive([]byte(tt.text), []byte(tt.pattern)))
		})
	}
}

func TestBuildSinglePatternMatcher_AllAlgorithmsAgree(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		pattern  string
		expected []int
	}{
		{"kmp example", "ABABDABACDABABCABAB", "ABABCABAB", []int{10}},
		{"boyer-moore example", "ABAAABCD", "ABC", []int{4}},
		{"rabin-karp example", "GEEKS FOR GEEKS", "GEEK", []int{0, 10}},
		{"repeated", "AABAACAADAABAABA", "AABA", []int{0, 9, 12}},
		{"all same", "AAAAA", "AA", []int{0, 1, 2, 3}},
		{"single byte", "banana", "a", []int{1, 3, 5}},
		{"at end", "xxxxab", "ab", []int{4}},
		{"empty pattern", "abc", "", nil},
		{"empty text", "", "abc", nil},
		{"binary", "\x00\xff\x00\xff", "\x00\xff", []int{0, 2}},
	}

	for _, tt := range tests {
		for _, alg := range Algorithms() {
			t.Run(tt.name+"/"+alg.String(), func(t *testing.T) {
				m, err := BuildSinglePatternMatcher([]byte(tt.pattern), alg)
				require.NoError(t, err)
				assert.Equal(t, []byte(tt.pattern), m.Pattern())
				assert.Equal(t, tt.expected, m.Scan([]byte(tt.text)))
			})
		}
	}
}

func TestBuildSinglePatternMatcher_RandomAgreement(t *testing.T) {
	rng := rand.New(rand.NewPCG(31, 32))

	for iter := 0; iter < 1000; iter++ {
		alphabet := "ab"
		if iter%3 == 0 {
			alphabet = "abcd"
		}
		pattern := randomString(rng, alphabet, 1+rng.IntN(5))
		text := randomString(rng, alphabet, rng.IntN(40))
		expected := Naive(text, pattern)

		for _, alg := range Algorithms() {
			m, err := BuildSinglePatternMatcher(pattern, alg)
			require.NoError(t, err)
			require.Equal(t, expected, m.Scan(text), "alg=%s pattern=%q text=%q", alg, pattern, text)
		}
	}
}

func TestBuildSinglePatternMatcher_UnderlyingTypes(t *testing.T) {
	tests := []struct {
		alg      Algorithm
		expected any
	}{
		{AlgorithmKMP, &kmp.Matcher{}},
		{AlgorithmBoyerMoore, &boyermoore.Matcher{}},
		{AlgorithmBoyerMooreBadChar, badCharMatcher{}},
		{AlgorithmRabinKarp, &rabinkarp.Matcher{}},
		{AlgorithmNaive, &NaiveMatcher{}},
	}

	for _, tt := range tests {
		t.Run(tt.alg.String(), func(t *testing.T) {
			m, err := BuildSinglePatternMatcher([]byte("abc"), tt.alg)
			require.NoError(t, err)
			wrapped, ok := m.(interface{ Unwrap() Matcher })
			require.True(t, ok)
			assert.IsType(t, tt.expected, wrapped.Unwrap())
		})
	}
}

func TestBuildSinglePatternMatcher_Errors(t *testing.T) {
	_, err := BuildSinglePatternMatcher([]byte("abc"), Algorithm(99))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	config := DefaultConfig()
	config.RabinKarp.Prime = 1
	_, err = BuildSinglePatternMatcherWithConfig([]byte("abc"), AlgorithmRabinKarp, config)
	assert.ErrorIs(t, err, rabinkarp.ErrInvalidPrime)

	config = DefaultConfig()
	config.RabinKarp.Radix = 0
	_, err = BuildSinglePatternMatcherWithConfig([]byte("abc"), AlgorithmRabinKarp, config)
	assert.ErrorIs(t, err, rabinkarp.ErrInvalidRadix)
}

func TestBuildSinglePatternMatcher_RabinKarpPrime(t *testing.T) {
	config := DefaultConfig()
	config.RabinKarp.Prime = 2
	m, err := BuildSinglePatternMatcherWithConfig([]byte("GEEK"), AlgorithmRabinKarp, config)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10}, m.Scan([]byte("GEEKS FOR GEEKS")))
}

func TestBuildSinglePatternMatcher_RecordsMetrics(t *testing.T) {
	m, err := BuildSinglePatternMatcher([]byte("ab"), AlgorithmKMP)
	require.NoError(t, err)

	scans := counterValue(t, "strsearch_scans_total", "algorithm", "kmp")
	matches := counterValue(t, "strsearch_matches_total", "algorithm", "kmp")
	scanned := counterValue(t, "strsearch_bytes_scanned_total", "algorithm", "kmp")

	m.Scan([]byte("ababab"))

	assert.Equal(t, scans+1, counterValue(t, "strsearch_scans_total", "algorithm", "kmp"))
	assert.Equal(t, matches+3, counterValue(t, "strsearch_matches_total", "algorithm", "kmp"))
	assert.Equal(t, scanned+6, counterValue(t, "strsearch_bytes_scanned_total", "algorithm", "kmp"))
}

func TestBuildMultiPatternMatcher(t *testing.T) {
	ac, err := BuildMultiPatternMatcher([][]byte{[]byte("he"), []byte("she"), []byte("his"), []byte("hers")})
	require.NoError(t, err)

	assert.Equal(t, []ahocorasick.Match{
		{PatternID: 1, PatternIndex: 1, Start: 1, End: 4},
		{PatternID: 0, PatternIndex: 0, Start: 2, End: 4},
		{PatternID: 3, PatternIndex: 3, Start: 2, End: 6},
	}, ScanMulti(ac, []byte("ushers")))
}

func TestBuildMultiPatternMatcher_EmptySet(t *testing.T) {
	ac, err := BuildMultiPatternMatcher(nil)
	require.NoError(t, err)
	assert.Nil(t, ac.Scan([]byte("anything")))
}

func TestBuildMultiPatternMatcher_AgreesWithSinglePattern(t *testing.T) {
	rng := rand.New(rand.NewPCG(33, 34))

	for iter := 0; iter < 300; iter++ {
		patterns := make([][]byte, 1+rng.IntN(5))
		for i := range patterns {
			patterns[i] = randomString(rng, "abc", 1+rng.IntN(4))
		}
		text := randomString(rng, "abc", rng.IntN(30))

		ac, err := BuildMultiPatternMatcher(patterns)
		require.NoError(t, err)

		perPattern := make([][]int, len(patterns))
		for _, match := range ac.Scan(text) {
			perPattern[match.PatternIndex] = append(perPattern[match.PatternIndex], match.Start)
		}
		for i, p := range patterns {
			require.Equal(t, Naive(text, p), perPattern[i], "pattern=%q text=%q", p, text)
		}
	}
}

func TestBuildMultiPatternMatcherWithConfig(t *testing.T) {
	ac, err := BuildMultiPatternMatcherWithConfig([][]byte{[]byte("GET")}, ahocorasick.Config{CaseInsensitive: true})
	require.NoError(t, err)
	assert.Len(t, ac.Scan([]byte("get Get GET")), 3)
}
