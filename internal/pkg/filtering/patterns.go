package filtering

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one parsed pattern line.
type Entry struct {
	// Text is the pattern with wildcards stripped and escapes resolved.
	Text string
	// Type is the anchoring derived from the wildcards.
	Type PatternType
}

// LoadPatternsFromFile loads patterns from a file, one per line.
// Empty lines and lines starting with # are ignored.
func LoadPatternsFromFile(filename string) ([]string, error) {
	// #nosec G304 -- Path is supplied by the user on the command line
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	patterns, err := LoadPatterns(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return patterns, nil
}

// LoadPatterns reads patterns from r, one per line.
// Empty lines and lines starting with # are ignored.
func LoadPatterns(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}

// ParseEntries parses each raw pattern with ParsePattern. When anchored is
// false, wildcards are not interpreted and every entry is a literal contains
// pattern.
func ParseEntries(raw []string, anchored bool) []Entry {
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		if !anchored {
			entries = append(entries, Entry{Text: r, Type: PatternTypeContains})
			continue
		}
		text, patternType := ParsePattern(r)
		entries = append(entries, Entry{Text: text, Type: patternType})
	}
	return entries
}
