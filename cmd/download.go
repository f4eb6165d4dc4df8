package cmd

import (
	"fmt"
	"strings"

	"ovc/internal/logger"
	"ovc/internal/version"
)

// runDownload is the default action: resolve the requested version, download
// the binary when it is not already installed, and set it as the default.
func runDownload(input string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	// A foreign oc on $PATH would shadow the managed symlink and confuse
	// anyone wondering why the downloaded version is not the one running.
	if foreign, found := a.installer.ForeignOC(); found {
		return fmt.Errorf("remove the existing oc binary found in $PATH: %s", foreign)
	}

	if input == "latest" {
		if input, err = latestStable(a); err != nil {
			return err
		}
		if verbose {
			logger.Info("[INFO] Latest stable release is %s\n", input)
		}
	}

	resolved, err := resolveVersion(a, input)
	if err != nil {
		return err
	}
	if verbose && resolved != input {
		logger.Info("[INFO] Resolved %s to %s\n", input, resolved)
	}

	path, downloaded, _, err := a.installer.EnsureBinary(resolved, verbose)
	if err != nil {
		return err
	}
	if verbose {
		if downloaded {
			logger.Info("[INFO] Downloaded to: %s\n", path)
		} else {
			logger.Info("[INFO] Already installed: %s (%s)\n", resolved, path)
		}
	}

	if err := a.installer.SetDefault(resolved); err != nil {
		return err
	}
	if verbose {
		logger.Info("[INFO] Set as default: %s\n", resolved)
		a.installer.CheckPathWarnings()
	}
	return nil
}

// resolveVersion turns a possibly partial version like "4.19" into a full one
// like "4.19.3". Full versions (major.minor.patch or longer) pass through
// untouched. A resolution miss triggers one cache refresh before giving up.
func resolveVersion(a *app, input string) (string, error) {
	parts := strings.Split(input, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("version must include at least major and minor version (e.g. 4.19)")
	}
	if len(parts) >= 3 {
		return input, nil
	}

	available, err := a.store.AvailableVersions(false)
	if err != nil {
		return "", err
	}
	if match, ok := version.FindMatchingVersion(input, available); ok {
		return match, nil
	}

	// Not in the cached listing; the mirror may have published new releases
	// since the cache was written.
	updated, err := a.store.UpdateForMissing(input, verbose)
	if err != nil {
		return "", err
	}
	if updated {
		if available, err = a.store.AvailableVersions(false); err != nil {
			return "", err
		}
		if match, ok := version.FindMatchingVersion(input, available); ok {
			return match, nil
		}
	}
	return "", fmt.Errorf("no versions found matching %s", input)
}

// latestStable returns the newest version carrying no pre-release marker.
func latestStable(a *app) (string, error) {
	versions, err := a.store.AvailableVersions(verbose)
	if err != nil {
		return "", err
	}

	var stable []string
	for _, v := range versions {
		if version.IsStable(v) {
			stable = append(stable, v)
		}
	}
	if len(stable) == 0 {
		return "", fmt.Errorf("no stable versions found")
	}
	return stable[len(stable)-1], nil
}
