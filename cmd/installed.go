package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ovc/internal/version"
)

// installedCmd shows locally installed versions matching a pattern. With
// --verbose it also shows where each binary lives.
var installedCmd = &cobra.Command{
	Use:   "installed PATTERN",
	Short: "List installed versions",
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
		installed, err := a.installer.ListInstalled()
		if err != nil {
			return err
		}

		var matching []string
		for _, v := range installed {
			if version.MatchesPattern(v, pattern) {
				matching = append(matching, v)
			}
		}
		if len(matching) == 0 {
			return fmt.Errorf("no installed versions found matching %s", pattern)
		}

		for _, v := range matching {
			if verbose {
				path, err := a.installer.BinaryPath(v)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", v, path)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
		}
		return nil
	},
}
