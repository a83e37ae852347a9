package cmdutil

import (
	"fmt"

	"github.com/endorses/strsearch/internal/pkg/ahocorasick"
	"github.com/endorses/strsearch/internal/pkg/filtering"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BindFlags binds each config key to the named flag of cmd. Commands call it
// from PreRunE so that several commands can share a key.
func BindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag == nil {
			return fmt.Errorf("unknown flag %q for config key %q", name, key)
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// LoadPatterns collects patterns given with -e followed by those in
// patternsFile, in that order. Pattern IDs are positions in the result.
func LoadPatterns(inline []string, patternsFile string, anchored bool) ([]ahocorasick.Pattern, error) {
	raw := append([]string(nil), inline...)
	if patternsFile != "" {
		fromFile, err := filtering.LoadPatternsFromFile(patternsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load patterns: %w", err)
		}
		raw = append(raw, fromFile...)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no patterns given: use --pattern or --patterns-file")
	}
	return ahocorasick.PatternsFromEntries(filtering.ParseEntries(raw, anchored)), nil
}
