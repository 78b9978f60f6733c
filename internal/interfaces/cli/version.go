package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X .../internal/interfaces/cli.Version=v1.2.3 ..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chemprep %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:     %s\n", GitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:      %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
