package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ovc/internal/version"
)

// listCmd shows mirror versions matching a pattern, e.g. `ovc list 4.19`.
var listCmd = &cobra.Command{
	Use:   "list PATTERN",
	Short: "List available versions from the mirror",
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
		available, err := a.store.AvailableVersions(verbose)
		if err != nil {
			return err
		}

		var matching []string
		for _, v := range available {
			if version.MatchesPattern(v, pattern) {
				matching = append(matching, v)
			}
		}
		if len(matching) == 0 {
			return fmt.Errorf("no versions found matching %s", pattern)
		}

		for _, v := range matching {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}
