// Package filtering parses the pattern syntax accepted by the multi-pattern
// commands: literal text with optional leading or trailing wildcards that
// anchor a pattern to the end or start of the scanned input.
package filtering

import "strings"

// PatternType represents the type of pattern matching to perform.
type PatternType int

const (
	// PatternTypeContains matches if the pattern is found anywhere in the string.
	// This is the default for patterns without wildcards.
	PatternTypeContains PatternType = iota
	// PatternTypePrefix matches if the string starts with the pattern.
	PatternTypePrefix
	// PatternTypeSuffix matches if the string ends with the pattern.
	PatternTypeSuffix
)

// ParsePattern parses a pattern string and returns the pattern with wildcards
// stripped and the detected pattern type.
//
// Pattern syntax:
//   - "alice"    -> PatternTypeContains (substring match)
//   - "*456789"  -> PatternTypeSuffix (matches any prefix + 456789)
//   - "alice*"   -> PatternTypePrefix (matches alice + any suffix)
//   - "*alice*"  -> PatternTypeContains (explicit contains)
//   - "\\*alice" -> PatternTypeContains with literal "*" (escaped asterisk)
//
// Escape sequences:
//   - "\\*" is unescaped to a literal "*" character
func ParsePattern(input string) (pattern string, patternType PatternType) {
	if input == "" {
		return "", PatternTypeContains
	}

	// First, handle escape sequences by replacing \* with a placeholder,
	// then process wildcards, then restore the placeholder as literal *
	const placeholder = "\x00" // NUL byte as placeholder (won't appear in user input)

	// Replace escaped asterisks with placeholder
	working := strings.ReplaceAll(input, `\*`, placeholder)

	// Detect pattern type based on unescaped asterisks
	hasLeadingWildcard := strings.HasPrefix(working, "*")
	hasTrailingWildcard := strings.HasSuffix(working, "*")

	switch {
	case hasLeadingWildcard && hasTrailingWildcard:
		// *pattern* -> contains (strip both)
		patternType = PatternTypeContains
		working = strings.TrimPrefix(working, "*")
		working = strings.TrimSuffix(working, "*")
	case hasLeadingWildcard:
		// *pattern -> suffix match
		patternType = PatternTypeSuffix
		working = strings.TrimPrefix(working, "*")
	case hasTrailingWildcard:
		// pattern* -> prefix match
		patternType = PatternTypePrefix
		working = strings.TrimSuffix(working, "*")
	default:
		// no wildcards -> contains
		patternType = PatternTypeContains
	}

	// Restore escaped asterisks as literal *
	pattern = strings.ReplaceAll(working, placeholder, "*")

	return pattern, patternType
}

// String returns the lowercase name of the pattern type.
func (t PatternType) String() string {
	switch t {
	case PatternTypeContains:
		return "contains"
	case PatternTypePrefix:
		return "prefix"
	case PatternTypeSuffix:
		return "suffix"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler so match reports carry the
// type name instead of its number.
func (t PatternType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
