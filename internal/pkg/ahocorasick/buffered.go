package ahocorasick

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/endorses/strsearch/internal/pkg/kmp"
	"github.com/endorses/strsearch/internal/pkg/logger"
	"github.com/endorses/strsearch/internal/pkg/metrics"
	"github.com/endorses/strsearch/internal/pkg/simd"
)

// Rebuild outcomes recorded in metrics.
const (
	RebuildBuilt   = "built"
	RebuildSkipped = "skipped"
	RebuildCleared = "cleared"
	RebuildFailed  = "failed"
)

// BufferedMatcher provides a double-buffered Aho-Corasick matcher for lock-free reads
// and background rebuilds. Pattern sets can be replaced while scans are running.
//
// Key features:
//   - Lock-free reads via atomic.Pointer for minimal latency
//   - Background automaton rebuilds without blocking scans
//   - Linear scan fallback during initial build or when automaton is unavailable
//   - Rebuilds are skipped when the pattern set fingerprint is unchanged
type BufferedMatcher struct {
	// automaton is the current Aho-Corasick automaton, accessed atomically.
	// nil indicates no automaton is available (use linear scan fallback).
	automaton atomic.Pointer[Automaton]

	// config is applied to every rebuild and to the linear scan fallback.
	config Config

	// patterns stores the current pattern list for linear scan fallback
	// and for rebuilding the automaton.
	patterns []Pattern

	// patternsMu protects patterns slice during updates.
	patternsMu sync.RWMutex

	// buildMu ensures only one rebuild runs at a time.
	buildMu sync.Mutex

	// building indicates a rebuild is in progress.
	building atomic.Bool

	// lastBuildTime tracks when the automaton was last built.
	lastBuildTime atomic.Value // time.Time

	// lastBuildDuration tracks how long the last build took.
	lastBuildDuration atomic.Value // time.Duration
}

// NewBufferedMatcher creates a new BufferedMatcher with the default configuration.
func NewBufferedMatcher() *BufferedMatcher {
	return NewBufferedMatcherWithConfig(DefaultConfig())
}

// NewBufferedMatcherWithConfig creates a new BufferedMatcher with config.
func NewBufferedMatcherWithConfig(config Config) *BufferedMatcher {
	bm := &BufferedMatcher{config: config}
	bm.lastBuildTime.Store(time.Time{})
	bm.lastBuildDuration.Store(time.Duration(0))
	return bm
}

// Build replaces the pattern set and waits for the automaton to be rebuilt.
func (bm *BufferedMatcher) Build(patterns []Pattern) error {
	return bm.UpdatePatternsSync(patterns)
}

// UpdatePatterns updates the pattern list and triggers a background rebuild.
// This method is safe to call concurrently with Scan operations.
// During the rebuild, Scan will continue using the old automaton (or linear scan
// if no automaton exists yet).
func (bm *BufferedMatcher) UpdatePatterns(patterns []Pattern) {
	bm.setPatterns(patterns)

	// Trigger background rebuild
	go func() {
		_ = bm.rebuildAutomaton()
	}()
}

// UpdatePatternsSync updates patterns and waits for the rebuild to complete.
// Use this when you need to ensure the new patterns are active before proceeding.
func (bm *BufferedMatcher) UpdatePatternsSync(patterns []Pattern) error {
	bm.setPatterns(patterns)
	return bm.rebuildAutomaton()
}

func (bm *BufferedMatcher) setPatterns(patterns []Pattern) {
	bm.patternsMu.Lock()
	bm.patterns = slices.Clone(patterns)
	bm.patternsMu.Unlock()
}

// rebuildAutomaton builds a new automaton and swaps it in atomically.
func (bm *BufferedMatcher) rebuildAutomaton() error {
	// Ensure only one rebuild at a time
	bm.buildMu.Lock()
	defer bm.buildMu.Unlock()

	bm.building.Store(true)
	defer bm.building.Store(false)

	// Get current patterns
	bm.patternsMu.RLock()
	patterns := slices.Clone(bm.patterns)
	bm.patternsMu.RUnlock()

	// If no patterns, clear the automaton
	if len(patterns) == 0 {
		bm.automaton.Store(nil)
		metrics.SetAutomatonStates(0)
		metrics.RecordRebuild(RebuildCleared)
		logger.Debug("Cleared AC automaton (no patterns)")
		return nil
	}

	if current := bm.automaton.Load(); current != nil && current.Fingerprint() == fingerprint(patterns, bm.config) {
		metrics.RecordRebuild(RebuildSkipped)
		logger.Debug("Pattern set unchanged, keeping AC automaton",
			"pattern_count", len(patterns),
			"fingerprint", current.Fingerprint())
		return nil
	}

	// Build new automaton
	startTime := time.Now()
	newAC, err := NewBuilderWithConfig(bm.config).Build(patterns)
	if err != nil {
		metrics.RecordRebuild(RebuildFailed)
		logger.Error("Failed to build AC automaton", "error", err, "pattern_count", len(patterns))
		return err
	}
	buildDuration := time.Since(startTime)

	// Atomic swap - readers will see the new automaton immediately
	bm.automaton.Store(newAC)
	bm.lastBuildTime.Store(time.Now())
	bm.lastBuildDuration.Store(buildDuration)
	metrics.SetAutomatonStates(newAC.StateCount())
	metrics.RecordRebuild(RebuildBuilt)

	logger.Info("AC automaton rebuilt",
		"pattern_count", len(patterns),
		"build_duration", buildDuration,
		"state_count", newAC.StateCount())

	return nil
}

// Scan finds every occurrence of every pattern in text.
// This method is lock-free and safe for concurrent use.
// If no automaton is available, falls back to linear scan.
func (bm *BufferedMatcher) Scan(text []byte) []Match {
	if ac := bm.automaton.Load(); ac != nil {
		return ac.Scan(text)
	}

	// Linear scan fallback
	return bm.linearScan(text)
}

// ScanBatch matches multiple inputs against the patterns.
// Uses the automaton if available, otherwise falls back to linear scan.
func (bm *BufferedMatcher) ScanBatch(inputs [][]byte) [][]Match {
	if ac := bm.automaton.Load(); ac != nil {
		return ac.ScanBatch(inputs)
	}
	return scanBatch(inputs, bm.linearScan)
}

// MatchAny reports whether any pattern occurs in any of the inputs.
// Empty inputs are skipped.
func (bm *BufferedMatcher) MatchAny(inputs [][]byte) bool {
	ac := bm.automaton.Load()

	for _, input := range inputs {
		if len(input) == 0 {
			continue
		}

		if ac != nil {
			if ac.IsMatch(input) {
				return true
			}
		} else if len(bm.linearScan(input)) > 0 {
			return true
		}
	}

	return false
}

// linearScan runs one KMP search per pattern.
// This is the fallback when no automaton is available. Results are ordered
// the same way as Automaton.Scan.
func (bm *BufferedMatcher) linearScan(text []byte) []Match {
	bm.patternsMu.RLock()
	patterns := bm.patterns
	bm.patternsMu.RUnlock()

	if len(patterns) == 0 || len(text) == 0 {
		return nil
	}

	input := text
	if bm.config.CaseInsensitive {
		input = simd.ToLower(text)
	}

	var results []Match
	for i, pattern := range patterns {
		needle := []byte(pattern.Text)
		if bm.config.CaseInsensitive {
			needle = simd.ToLower(needle)
		}

		for _, start := range kmp.Search(input, needle) {
			end := start + len(needle)
			if !validateMatch(pattern.Type, start, end, len(input)) {
				continue
			}
			results = append(results, Match{
				PatternID:    pattern.ID,
				PatternIndex: i,
				Start:        start,
				End:          end,
			})
		}
	}

	slices.SortFunc(results, compareMatches)
	return results
}

// compareMatches orders matches by end offset, then longest first, then by
// pattern index.
func compareMatches(a, b Match) int {
	if a.End != b.End {
		return a.End - b.End
	}
	if a.Len() != b.Len() {
		return b.Len() - a.Len()
	}
	return a.PatternIndex - b.PatternIndex
}

// PatternCount returns the number of patterns currently loaded.
func (bm *BufferedMatcher) PatternCount() int {
	bm.patternsMu.RLock()
	defer bm.patternsMu.RUnlock()
	return len(bm.patterns)
}

// IsBuilding returns true if a rebuild is currently in progress.
func (bm *BufferedMatcher) IsBuilding() bool {
	return bm.building.Load()
}

// HasAutomaton returns true if an automaton is available.
func (bm *BufferedMatcher) HasAutomaton() bool {
	return bm.automaton.Load() != nil
}

// LastBuildTime returns when the automaton was last built.
func (bm *BufferedMatcher) LastBuildTime() time.Time {
	if t := bm.lastBuildTime.Load(); t != nil {
		return t.(time.Time)
	}
	return time.Time{}
}

// LastBuildDuration returns how long the last build took.
func (bm *BufferedMatcher) LastBuildDuration() time.Duration {
	if d := bm.lastBuildDuration.Load(); d != nil {
		return d.(time.Duration)
	}
	return 0
}

// Stats returns statistics about the buffered matcher.
type Stats struct {
	PatternCount      int           `json:"pattern_count" yaml:"pattern_count"`
	HasAutomaton      bool          `json:"has_automaton" yaml:"has_automaton"`
	IsBuilding        bool          `json:"is_building" yaml:"is_building"`
	LastBuildTime     time.Time     `json:"last_build_time" yaml:"last_build_time"`
	LastBuildDuration time.Duration `json:"last_build_duration" yaml:"last_build_duration"`
	StateCount        int           `json:"state_count" yaml:"state_count"`
	Fingerprint       uint64        `json:"fingerprint" yaml:"fingerprint"`
}

// GetStats returns current statistics.
func (bm *BufferedMatcher) GetStats() Stats {
	ac := bm.automaton.Load()
	var stateCount int
	var fp uint64
	if ac != nil {
		stateCount = ac.StateCount()
		fp = ac.Fingerprint()
	}

	return Stats{
		PatternCount:      bm.PatternCount(),
		HasAutomaton:      ac != nil,
		IsBuilding:        bm.IsBuilding(),
		LastBuildTime:     bm.LastBuildTime(),
		LastBuildDuration: bm.LastBuildDuration(),
		StateCount:        stateCount,
		Fingerprint:       fp,
	}
}
