package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ovc/internal/logger"
	"ovc/internal/manpage"
)

// appVersion is the running build's version, overridden at release time via
// -ldflags "-X ovc/cmd.appVersion=...".
var appVersion = "0.0.0-dev"

// debug toggles debug logging, via the global --debug flag.
var debug bool

// verbose makes operations more talkative, via the global --verbose flag.
var verbose bool

// insecure skips TLS certificate verification, via the global -k flag, for
// private mirrors with self-signed certificates.
var insecure bool

// rootCmd is the base command. Running it with a version argument downloads
// that version and sets it as the default, the tool's primary action.
var rootCmd = &cobra.Command{
	Use:   "ovc [VERSION]",
	Short: "OpenShift client version control",
	Long: `ovc downloads OpenShift client (oc) versions from the public mirror,
keeps them side by side under ~/.local/bin/oc_bins, and points the oc and
kubectl symlinks in ~/.local/bin at the chosen default.

VERSION may be partial: "4.19" resolves to the newest 4.19.x release.
Use "latest" for the newest stable release.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,

	// Initialize the logger before any command body runs, and keep the local
	// man page in step with the running build. The man page install is best
	// effort and never blocks the command.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
		manpage.New(appVersion, insecure).Ensure(verbose)
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("ovc: missing version\nTry 'ovc --help' for more information")
		}
		return runDownload(args[0])
	},
}

// Execute registers flags and subcommands and runs the CLI. Errors go to
// stderr and set a non-zero exit status.
func Execute() {
	rootCmd.Version = appVersion
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Make the operation more talkative")
	rootCmd.PersistentFlags().BoolVarP(&insecure, "insecure", "k", false, "Allow insecure TLS connections (skip certificate verification)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(installedCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(matchServerCmd)
	rootCmd.AddCommand(updateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// requireMajorMinor rejects patterns without at least major and minor
// components before any I/O happens.
func requireMajorMinor(pattern string) error {
	if len(strings.Split(pattern, ".")) < 2 {
		return fmt.Errorf("version must include at least major and minor version (e.g. 4.19)")
	}
	return nil
}
