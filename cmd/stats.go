package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/endorses/strsearch/internal/pkg/cmdutil"
	"github.com/endorses/strsearch/internal/pkg/metrics"
	"github.com/endorses/strsearch/internal/pkg/output"
	"github.com/spf13/cobra"
)

// printStats writes the metric snapshot to stderr so it never mixes with
// results on stdout.
func printStats(cmd *cobra.Command) error {
	samples, err := metrics.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	format, err := output.ParseFormat(cmdutil.GetStringConfig("output", outFormat))
	if err != nil {
		return err
	}
	return output.Write(cmd.ErrOrStderr(), format, samples, func(w io.Writer) error {
		return writeSamples(w, samples)
	})
}

// writeSamples prints samples in the Prometheus text style,
// name{label="value"} value.
func writeSamples(w io.Writer, samples []metrics.Sample) error {
	for _, s := range samples {
		var labels []string
		for _, k := range slices.Sorted(maps.Keys(s.Labels)) {
			labels = append(labels, fmt.Sprintf("%s=%q", k, s.Labels[k]))
		}
		name := s.Name
		if len(labels) > 0 {
			name += "{" + strings.Join(labels, ",") + "}"
		}
		if _, err := fmt.Fprintf(w, "%s %g\n", name, s.Value); err != nil {
			return err
		}
	}
	return nil
}
