package cmd

import (
	"github.com/spf13/cobra"

	"ovc/internal/updater"
)

// updateCmd replaces the running ovc executable with the latest GitHub
// release, when one is newer than the running build.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update ovc to the latest release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return updater.New(appVersion, insecure).Run(verbose)
	},
}
