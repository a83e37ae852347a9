package ahocorasick

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endorses/strsearch/internal/pkg/filtering"
)

func TestDenseAutomaton_Build(t *testing.T) {
	d := NewDenseAutomaton()
	require.NoError(t, d.Build(contains("hello", "world", "he")))

	assert.Equal(t, 3, d.PatternCount())
	// root + hello(5) + world(5), "he" shares the path of "hello"
	assert.Equal(t, 11, d.StateCount())
	assert.NotZero(t, d.Fingerprint())
}

func TestDenseAutomaton_TransitionsAreComplete(t *testing.T) {
	d := NewDenseAutomaton()
	require.NoError(t, d.Build(contains("he", "she", "his", "hers")))

	for i := range d.states {
		for c := 0; c < 256; c++ {
			next := d.states[i].transitions[c]
			require.GreaterOrEqual(t, next, int32(0))
			require.Less(t, int(next), d.StateCount())
		}
	}

	// Bytes with no edge anywhere return to the root.
	assert.Equal(t, int32(rootState), d.states[rootState].transitions['z'])
}

func TestDenseAutomaton_Scan(t *testing.T) {
	d := NewDenseAutomaton()
	require.NoError(t, d.Build(contains("he", "she", "his", "hers")))

	assert.Equal(t, []Match{
		{PatternID: 2, PatternIndex: 1, Start: 1, End: 4},
		{PatternID: 1, PatternIndex: 0, Start: 2, End: 4},
		{PatternID: 4, PatternIndex: 3, Start: 2, End: 6},
	}, d.Scan([]byte("ushers")))
}

func TestDenseAutomaton_AnchoredPatterns(t *testing.T) {
	d := NewDenseAutomaton()
	require.NoError(t, d.Build([]Pattern{
		{ID: 1, Text: "+49", Type: filtering.PatternTypePrefix},
		{ID: 2, Text: "789", Type: filtering.PatternTypeSuffix},
		{ID: 3, Text: "345", Type: filtering.PatternTypeContains},
	}))

	tests := []struct {
		name    string
		input   string
		wantIDs []int
	}{
		{"all three", "+49123456789", []int{1, 3, 2}},
		{"prefix only", "+49000", []int{1}},
		{"whole input is prefix", "+49", []int{1}},
		{"suffix not at end", "7890", nil},
		{"prefix elsewhere", "0+49", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIDs, extractPatternIDs(d.Scan([]byte(tt.input))))
		})
	}
}

func TestDenseAutomaton_MatchesSparse(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))

	for iter := 0; iter < 300; iter++ {
		config := Config{CaseInsensitive: iter%3 == 0}
		patterns := randomPatterns(rng, "abAB", 1+rng.IntN(6), 5)
		if iter%4 == 0 {
			patterns[0].Type = filtering.PatternTypeSuffix
		}
		text := []byte(randomText(rng, "abAB", rng.IntN(40)))

		sparse, err := NewBuilderWithConfig(config).Build(patterns)
		require.NoError(t, err)
		dense := Compile(sparse)

		require.Equal(t, sparse.StateCount(), dense.StateCount())
		require.Equal(t, sparse.Fingerprint(), dense.Fingerprint())
		require.Equal(t, sparse.Scan(text), dense.Scan(text), "patterns=%v text=%q", patterns, text)
	}
}

func TestDenseAutomaton_CaseInsensitive(t *testing.T) {
	d := NewDenseAutomaton()
	require.NoError(t, d.BuildWithConfig(contains("GET"), Config{CaseInsensitive: true}))
	assert.Equal(t, []int{1}, extractPatternIDs(d.Scan([]byte("get /index.html"))))
}

func TestDenseAutomaton_ScanBatch(t *testing.T) {
	d := NewDenseAutomaton()
	require.NoError(t, d.Build(contains("ab")))

	results := d.ScanBatch([][]byte{[]byte("abab"), []byte("ba")})
	require.Len(t, results, 2)
	assert.Len(t, results[0], 2)
	assert.Empty(t, results[1])
}

func TestDenseAutomaton_EmptyInput(t *testing.T) {
	d := NewDenseAutomaton()
	require.NoError(t, d.Build(contains("a")))
	assert.Nil(t, d.Scan(nil))
}

func TestDenseAutomaton_EmptyPatterns(t *testing.T) {
	d := NewDenseAutomaton()
	require.NoError(t, d.Build(nil))

	assert.Equal(t, 1, d.StateCount())
	assert.Empty(t, d.Scan([]byte("test")))
}

func TestDenseAutomaton_ZeroValue(t *testing.T) {
	var d DenseAutomaton
	assert.Nil(t, d.Scan([]byte("test")))

	compiled := Compile(&Automaton{})
	assert.Equal(t, 0, compiled.StateCount())
	assert.Nil(t, compiled.Scan([]byte("test")))
}
