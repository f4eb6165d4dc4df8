package cmd

import (
	"github.com/spf13/cobra"

	"ovc/internal/cluster"
	"ovc/internal/logger"
)

// matchServerCmd downloads the version matching the currently connected
// cluster, as reported by `oc version`, and sets it as the default.
var matchServerCmd = &cobra.Command{
	Use:   "match-server",
	Short: "Download the version matching the connected cluster",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := cluster.ServerVersion()
		if err != nil {
			return err
		}
		if verbose {
			logger.Info("[INFO] Connected cluster reports version %s\n", server)
		}
		return runDownload(server)
	},
}
