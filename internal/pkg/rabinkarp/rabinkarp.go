// Package rabinkarp implements Rabin-Karp single-pattern search with a
// polynomial rolling hash.
//
// The window hash is updated in O(1) per text position. A hash hit is only a
// candidate: every candidate is verified byte for byte before it is
// reported, so collisions cost time but never correctness.
package rabinkarp

import (
	"errors"
	"fmt"

	"github.com/endorses/strsearch/internal/pkg/simd"
)

const (
	// DefaultPrime is the modulus used when none is configured.
	DefaultPrime = 101

	// DefaultRadix is the alphabet cardinality for byte strings.
	DefaultRadix = 256

	// MaxPrime bounds the modulus so that intermediate products fit in int64.
	MaxPrime = 1<<31 - 1

	// MaxRadix bounds the radix for the same reason.
	MaxRadix = 1 << 16
)

var (
	// ErrInvalidPrime is returned when the modulus is outside [2, MaxPrime].
	ErrInvalidPrime = errors.New("rabin-karp: prime out of range")

	// ErrInvalidRadix is returned when the radix is outside [2, MaxRadix].
	ErrInvalidRadix = errors.New("rabin-karp: radix out of range")
)

// Config holds the hash parameters.
type Config struct {
	// Prime is the hash modulus. It need not be prime for correctness, but a
	// small modulus or one sharing factors with Radix raises the collision rate.
	Prime int64

	// Radix is the polynomial base, normally the alphabet size.
	Radix int64
}

// DefaultConfig returns the default hash parameters.
func DefaultConfig() Config {
	return Config{
		Prime: DefaultPrime,
		Radix: DefaultRadix,
	}
}

// Validate checks the parameters.
func (c Config) Validate() error {
	if c.Prime < 2 || c.Prime > MaxPrime {
		return fmt.Errorf("%w: %d", ErrInvalidPrime, c.Prime)
	}
	if c.Radix < 2 || c.Radix > MaxRadix {
		return fmt.Errorf("%w: %d", ErrInvalidRadix, c.Radix)
	}
	return nil
}

// Stats describes the work done by one scan.
type Stats struct {
	// Windows is the number of text windows hashed.
	Windows int

	// HashHits counts windows whose hash equalled the pattern hash.
	HashHits int

	// SpuriousHits counts hash hits rejected by verification (collisions).
	SpuriousHits int
}

// Matcher is a prepared Rabin-Karp search for one pattern.
// It is immutable after construction and safe for concurrent Scan calls;
// the rolling state lives on the stack of each Scan.
type Matcher struct {
	pattern []byte
	config  Config

	// patternHash is the hash of the whole pattern.
	patternHash int64

	// highPow is Radix^(m-1) mod Prime, the weight of the departing byte.
	highPow int64
}

// New prepares a matcher with the default parameters. The pattern is copied.
func New(pattern []byte) *Matcher {
	m, _ := NewWithConfig(pattern, DefaultConfig())
	return m
}

// NewString is a convenience wrapper around New.
func NewString(pattern string) *Matcher {
	return New([]byte(pattern))
}

// NewWithConfig prepares a matcher with explicit hash parameters.
func NewWithConfig(pattern []byte, config Config) (*Matcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := make([]byte, len(pattern))
	copy(p, pattern)

	m := &Matcher{
		pattern: p,
		config:  config,
	}
	m.highPow = powMod(config.Radix, len(p)-1, config.Prime)
	m.patternHash = hashOf(p, config)
	return m, nil
}

// Pattern returns the pattern the matcher was built for.
func (m *Matcher) Pattern() []byte {
	if m == nil {
		return nil
	}
	return m.pattern
}

// Config returns the hash parameters in use.
func (m *Matcher) Config() Config {
	return m.config
}

// Scan returns the start offsets of every occurrence of the pattern in text,
// in increasing order, including overlapping ones.
func (m *Matcher) Scan(text []byte) []int {
	results, _ := m.ScanWithStats(text)
	return results
}

// ScanWithStats is Scan plus hash-hit accounting.
func (m *Matcher) ScanWithStats(text []byte) ([]int, Stats) {
	var stats Stats
	if m == nil {
		return nil, stats
	}
	pm, n := len(m.pattern), len(text)
	if pm == 0 || n < pm {
		return nil, stats
	}

	q, d := m.config.Prime, m.config.Radix
	t := hashOf(text[:pm], m.config)

	var results []int
	for s := 0; s <= n-pm; s++ {
		stats.Windows++
		if t == m.patternHash {
			stats.HashHits++
			if simd.BytesEqual(text[s:s+pm], m.pattern) {
				results = append(results, s)
			} else {
				stats.SpuriousHits++
			}
		}
		if s < n-pm {
			// Drop text[s], shift, add text[s+pm].
			t = (d*(t-int64(text[s])*m.highPow) + int64(text[s+pm])) % q
			if t < 0 {
				t += q
			}
		}
	}
	return results, stats
}

// Search scans text for pattern using the given prime and the default radix.
// An invalid prime falls back to DefaultPrime.
func Search(text, pattern []byte, prime int64) []int {
	m, err := NewWithConfig(pattern, Config{Prime: prime, Radix: DefaultRadix})
	if err != nil {
		m = New(pattern)
	}
	return m.Scan(text)
}

// hashOf computes the polynomial hash of b from scratch.
func hashOf(b []byte, c Config) int64 {
	var h int64
	for _, x := range b {
		h = (c.Radix*h + int64(x)) % c.Prime
	}
	return h
}

// powMod returns base^exp mod mod for exp >= 0; negative exp yields 0.
func powMod(base int64, exp int, mod int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1) % mod
	b := base % mod
	for exp > 0 {
		if exp&1 == 1 {
			result = result * b % mod
		}
		b = b * b % mod
		exp >>= 1
	}
	return result
}
