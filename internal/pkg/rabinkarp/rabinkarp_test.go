package rabinkarp

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Scan(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		want    []int
	}{
		{name: "classic", text: "AABAACAADAABAABA", pattern: "AABA", want: []int{0, 9, 12}},
		{name: "overlapping", text: "AAAAAA", pattern: "AAAA", want: []int{0, 1, 2}},
		{name: "original demo", text: "abacababcaba", pattern: "aba", want: []int{0, 4, 9}},
		{name: "pattern equals text", text: "needle", pattern: "needle", want: []int{0}},
		{name: "pattern longer than text", text: "ab", pattern: "abc", want: nil},
		{name: "empty pattern", text: "abc", pattern: "", want: nil},
		{name: "high bytes", text: "\xff\xfe\xff\xfe", pattern: "\xfe\xff", want: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewString(tt.pattern).Scan([]byte(tt.text)))
		})
	}
}

func TestMatcher_CollisionsAreVerified(t *testing.T) {
	// A tiny modulus makes almost every window collide.
	m, err := NewWithConfig([]byte("AABA"), Config{Prime: 2, Radix: DefaultRadix})
	require.NoError(t, err)

	results, stats := m.ScanWithStats([]byte("AABAACAADAABAABA"))
	assert.Equal(t, []int{0, 9, 12}, results)
	assert.Equal(t, 13, stats.Windows)
	assert.Greater(t, stats.SpuriousHits, 0)
	assert.Equal(t, stats.HashHits-stats.SpuriousHits, len(results))
}

func TestMatcher_RadixSharingFactorWithPrime(t *testing.T) {
	// Radix 256 and modulus 16 share factors: the hash degenerates to the
	// last byte's low bits, but results stay exact.
	m, err := NewWithConfig([]byte("abcab"), Config{Prime: 16, Radix: 256})
	require.NoError(t, err)
	text := []byte("abcabcabcab")
	assert.Equal(t, bruteForce(text, []byte("abcab")), m.Scan(text))
}

func TestMatcher_DifferentialAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	primes := []int64{2, 3, 7, 101, 1000003, MaxPrime}
	for n := 0; n < 1000; n++ {
		alphabet := 1 + rng.Intn(4)
		text := randomBytes(rng, rng.Intn(48), alphabet)
		pattern := randomBytes(rng, 1+rng.Intn(6), alphabet)
		prime := primes[rng.Intn(len(primes))]

		m, err := NewWithConfig(pattern, Config{Prime: prime, Radix: DefaultRadix})
		require.NoError(t, err)
		require.Equal(t, bruteForce(text, pattern), m.Scan(text),
			"text %q pattern %q prime %d", text, pattern, prime)
	}
}

func TestRollingHashMatchesRecomputation(t *testing.T) {
	// The incrementally maintained hash must equal a from-scratch hash at
	// every window; check via the stats of a pattern built from each window.
	text := []byte("the quick brown fox jumps over the lazy dog")
	cfg := Config{Prime: 1000003, Radix: DefaultRadix}
	for _, size := range []int{1, 3, 8} {
		for s := 0; s+size <= len(text); s++ {
			m, err := NewWithConfig(text[s:s+size], cfg)
			require.NoError(t, err)
			_, stats := m.ScanWithStats(text)
			assert.GreaterOrEqual(t, stats.HashHits, 1, "window %d size %d", s, size)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "default", config: DefaultConfig()},
		{name: "max prime", config: Config{Prime: MaxPrime, Radix: DefaultRadix}},
		{name: "prime too small", config: Config{Prime: 1, Radix: DefaultRadix}, wantErr: ErrInvalidPrime},
		{name: "prime negative", config: Config{Prime: -7, Radix: DefaultRadix}, wantErr: ErrInvalidPrime},
		{name: "prime too large", config: Config{Prime: MaxPrime + 1, Radix: DefaultRadix}, wantErr: ErrInvalidPrime},
		{name: "radix too small", config: Config{Prime: 101, Radix: 1}, wantErr: ErrInvalidRadix},
		{name: "radix too large", config: Config{Prime: 101, Radix: MaxRadix + 1}, wantErr: ErrInvalidRadix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewWithConfig_RejectsInvalid(t *testing.T) {
	m, err := NewWithConfig([]byte("a"), Config{Prime: 0, Radix: DefaultRadix})
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrInvalidPrime)
}

func TestSearch(t *testing.T) {
	assert.Equal(t, []int{0, 9, 12}, Search([]byte("AABAACAADAABAABA"), []byte("AABA"), 101))
	// Invalid prime falls back to the default instead of failing.
	assert.Equal(t, []int{0, 9, 12}, Search([]byte("AABAACAADAABAABA"), []byte("AABA"), 0))
}

func TestPowMod(t *testing.T) {
	assert.Equal(t, int64(1), powMod(256, 0, 101))
	assert.Equal(t, int64(256%101), powMod(256, 1, 101))
	assert.Equal(t, int64((256*256*256)%101), powMod(256, 3, 101))
	assert.Equal(t, int64(0), powMod(256, -1, 101))
}

func TestMatcher_NilIsSafe(t *testing.T) {
	var m *Matcher
	assert.Nil(t, m.Scan([]byte("abc")))
	assert.Nil(t, m.Pattern())
}

func bruteForce(text, pattern []byte) []int {
	var out []int
	for i := 0; i+len(pattern) <= len(text); i++ {
		if bytes.Equal(text[i:i+len(pattern)], pattern) {
			out = append(out, i)
		}
	}
	return out
}

func randomBytes(rng *rand.Rand, n, alphabet int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + rng.Intn(alphabet))
	}
	return b
}
