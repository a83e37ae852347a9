package cmd

import (
	"fmt"
	"io"

	"github.com/endorses/strsearch/internal/pkg/cmdutil"
	"github.com/endorses/strsearch/internal/pkg/output"
	"github.com/endorses/strsearch/internal/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(cmdutil.GetStringConfig("output", outFormat))
		if err != nil {
			return err
		}
		info := version.Get()
		return output.Write(cmd.OutOrStdout(), format, info, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "strsearch %s\n", info)
			return err
		})
	},
}
