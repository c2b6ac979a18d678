package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recapd/recap-cli/config"
	"github.com/recapd/recap-cli/pkg/buildinfo"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Get()

			out := cmd.OutOrStdout()
			if handled, err := renderOutput(out, config.OutputFormat(format), info); handled {
				return err
			}

			fmt.Fprintf(out, "recap %s\n", buildinfo.String())
			fmt.Fprintf(out, "go: %s\n", info.GoVersion)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "", "output format: text, json, or yaml")

	return cmd
}
