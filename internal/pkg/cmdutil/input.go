package cmdutil

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// StdinName names standard input in file arguments and results.
const StdinName = "-"

// Inputs returns the file arguments, or standard input when there are none.
// Standard input can be read once, so repeats of StdinName after the first
// are dropped.
func Inputs(args []string) []string {
	if len(args) == 0 {
		return []string{StdinName}
	}
	inputs := make([]string, 0, len(args))
	seenStdin := false
	for _, arg := range args {
		if arg == StdinName {
			if seenStdin {
				continue
			}
			seenStdin = true
		}
		inputs = append(inputs, arg)
	}
	return inputs
}

// OpenInput opens the named file, or the command's input for StdinName.
func OpenInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == StdinName {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	// #nosec G304 -- Path is supplied by the user on the command line
	return os.Open(name)
}
