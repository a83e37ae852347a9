package search

import (
	"fmt"
	"strings"
)

// Algorithm selects a single-pattern search strategy.
type Algorithm int

const (
	// AlgorithmKMP is Knuth-Morris-Pratt: linear time, never backs up in the text.
	AlgorithmKMP Algorithm = iota
	// AlgorithmBoyerMoore uses both the bad-character and good-suffix rules.
	AlgorithmBoyerMoore
	// AlgorithmBoyerMooreBadChar uses the bad-character rule only.
	AlgorithmBoyerMooreBadChar
	// AlgorithmRabinKarp uses a rolling hash with byte verification.
	AlgorithmRabinKarp
	// AlgorithmNaive compares the pattern at every offset.
	AlgorithmNaive
)

var algorithmNames = map[Algorithm]string{
	AlgorithmKMP:               "kmp",
	AlgorithmBoyerMoore:        "boyer-moore",
	AlgorithmBoyerMooreBadChar: "boyer-moore-badchar",
	AlgorithmRabinKarp:         "rabin-karp",
	AlgorithmNaive:             "naive",
}

var algorithmAliases = map[string]Algorithm{
	"kmp":                 AlgorithmKMP,
	"knuth-morris-pratt":  AlgorithmKMP,
	"boyer-moore":         AlgorithmBoyerMoore,
	"bm":                  AlgorithmBoyerMoore,
	"boyer-moore-badchar": AlgorithmBoyerMooreBadChar,
	"bm-badchar":          AlgorithmBoyerMooreBadChar,
	"horspool":            AlgorithmBoyerMooreBadChar,
	"rabin-karp":          AlgorithmRabinKarp,
	"rk":                  AlgorithmRabinKarp,
	"naive":               AlgorithmNaive,
	"brute-force":         AlgorithmNaive,
}

// Algorithms returns every algorithm in declaration order.
func Algorithms() []Algorithm {
	return []Algorithm{
		AlgorithmKMP,
		AlgorithmBoyerMoore,
		AlgorithmBoyerMooreBadChar,
		AlgorithmRabinKarp,
		AlgorithmNaive,
	}
}

// String returns the canonical name of the algorithm.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm parses a canonical name or alias, ignoring case and
// treating underscores like dashes.
func ParseAlgorithm(s string) (Algorithm, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if a, ok := algorithmAliases[key]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if _, ok := algorithmNames[a]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
