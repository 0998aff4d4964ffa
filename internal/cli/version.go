package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yatube/yatube/internal/output"
)

// Version is the CLI version, injected at build time:
//
//	go build -ldflags "-X github.com/yatube/yatube/internal/cli.Version=1.2.3" ./cmd/yatubectl
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the CLI version",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagJSON {
			return output.JSON(cmd.OutOrStdout(), map[string]string{"version": Version})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "yatubectl %s\n", Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
