package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/endorses/strsearch/internal/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the real root command and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		contains []string
	}{
		{
			name:     "No arguments shows help",
			args:     []string{},
			contains: []string{"exact string search", "find", "multi", "pcap"},
		},
		{
			name:     "Help flag",
			args:     []string{"--help"},
			contains: []string{"exact string search"},
		},
		{
			name:     "Subcommand help",
			args:     []string{"find", "--help"},
			contains: []string{"boyer-moore-badchar", "--prime"},
		},
		{
			name:    "Unknown command",
			args:    []string{"sniff"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, "", tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, stdout+stderr, want)
			}
		})
	}
}

func TestCommandStructure(t *testing.T) {
	assert.Equal(t, "strsearch", rootCmd.Use)

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"find", "multi", "pcap", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestFlagConfiguration(t *testing.T) {
	tests := []struct {
		flagName string
		flagType string
	}{
		{"config", "string"},
		{"output", "string"},
		{"log-level", "string"},
		{"stats", "bool"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			require.NotNil(t, flag, "Flag should exist")
			assert.Equal(t, tt.flagType, flag.Value.Type())
		})
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "strsearch "+version.Get().String()+"\n", stdout)

	stdout, _, err = execute(t, "", "version", "-o", "json")
	require.NoError(t, err)
	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, version.Get(), info)
}

func TestOutputFromEnvironment(t *testing.T) {
	t.Setenv("STRSEARCH_OUTPUT", "yaml")

	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	var info version.Info
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestInvalidOutputFormat(t *testing.T) {
	_, _, err := execute(t, "", "-o", "xml", "version")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("algorithm: boyer-moore\noutput: json\n"), 0600))

	stdout, _, err := execute(t, "abacababcaba", "--config", configFile, "find", "aba")
	require.NoError(t, err)

	var results []struct {
		Offset int `json:"offset"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 3)
	assert.Equal(t, 9, results[2].Offset)
	assert.Equal(t, configFile, viper.ConfigFileUsed())
}

func TestFlagOverridesConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("algorithm: unknown-algorithm\n"), 0600))

	_, _, err := execute(t, "abc", "--config", configFile, "find", "b")
	require.Error(t, err)

	stdout, _, err := execute(t, "abc", "--config", configFile, "find", "-a", "naive", "b")
	require.NoError(t, err)
	assert.Equal(t, "-:1\tb\n", stdout)
}

func TestStatsFlag(t *testing.T) {
	stdout, stderr, err := execute(t, "ushers", "--stats", "multi", "-e", "he", "-e", "she")
	require.NoError(t, err)
	assert.Equal(t, "-:1-4\tshe\n-:2-4\the\n", stdout)
	assert.Contains(t, stderr, `strsearch_scans_total{algorithm="aho-corasick"}`)
	assert.Contains(t, stderr, "strsearch_build_duration_seconds_count")
}

func TestWriteSamples(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSamples(&buf, nil))
	assert.Empty(t, buf.String())
}
