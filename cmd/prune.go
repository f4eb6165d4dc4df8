package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ovc/internal/logger"
)

// pruneCmd removes installed versions matching a pattern.
var pruneCmd = &cobra.Command{
	Use:   "prune PATTERN",
	Short: "Remove installed versions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := args[0]
		if err := requireMajorMinor(pattern); err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		removed, err := a.installer.Prune(pattern, verbose)
		if err != nil {
			return err
		}
		if removed == 0 {
			return fmt.Errorf("no installed versions found matching %s", pattern)
		}
		if verbose {
			logger.Info("[INFO] Removed %d version(s)\n", removed)
		}
		return nil
	},
}
