package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input    string
		expected Algorithm
	}{
		{"kmp", AlgorithmKMP},
		{"KMP", AlgorithmKMP},
		{"knuth_morris_pratt", AlgorithmKMP},
		{"boyer-moore", AlgorithmBoyerMoore},
		{"bm", AlgorithmBoyerMoore},
		{"Boyer_Moore_BadChar", AlgorithmBoyerMooreBadChar},
		{"horspool", AlgorithmBoyerMooreBadChar},
		{"rabin-karp", AlgorithmRabinKarp},
		{" rk ", AlgorithmRabinKarp},
		{"naive", AlgorithmNaive},
		{"brute-force", AlgorithmNaive},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseAlgorithm_Unknown(t *testing.T) {
	for _, input := range []string{"", "regex", "kmp2"} {
		_, err := ParseAlgorithm(input)
		assert.ErrorIs(t, err, ErrUnknownAlgorithm, "input %q", input)
	}
}

func TestAlgorithm_StringRoundTrip(t *testing.T) {
	for _, alg := range Algorithms() {
		parsed, err := ParseAlgorithm(alg.String())
		require.NoError(t, err)
		assert.Equal(t, alg, parsed)
	}
	assert.Equal(t, "Algorithm(42)", Algorithm(42).String())
}

func TestAlgorithm_YAML(t *testing.T) {
	type config struct {
		Algorithm Algorithm `yaml:"algorithm"`
	}

	var c config
	require.NoError(t, yaml.Unmarshal([]byte("algorithm: rabin-karp\n"), &c))
	assert.Equal(t, AlgorithmRabinKarp, c.Algorithm)

	out, err := yaml.Marshal(config{Algorithm: AlgorithmBoyerMooreBadChar})
	require.NoError(t, err)
	assert.Equal(t, "algorithm: boyer-moore-badchar\n", string(out))

	err = yaml.Unmarshal([]byte("algorithm: regex\n"), &c)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = Algorithm(42).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}
