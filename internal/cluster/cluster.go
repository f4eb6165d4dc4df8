// Package cluster asks the currently connected OpenShift cluster for its
// version by shelling out to the oc binary on $PATH.
package cluster

import (
	"fmt"
	"os/exec"
	"strings"

	"ovc/internal/logger"
	"ovc/internal/version"
)

// ServerVersion runs `oc version` and returns the numeric server version of
// the connected cluster. Annotated outputs like "4.19.3+a1b2c3" are trimmed
// down to "4.19.3".
func ServerVersion() (string, error) {
	ocPath, err := exec.LookPath("oc")
	if err != nil {
		return "", fmt.Errorf("no oc binary found in $PATH; install one first (e.g. 'ovc latest')")
	}
	logger.Debug("[DEBUG] Querying cluster version via %s\n", ocPath)

	// oc exits non-zero when it cannot reach a cluster but still prints the
	// client lines, so the output is parsed before the exit status matters.
	out, runErr := exec.Command(ocPath, "version").CombinedOutput()
	if ver, ok := ParseServerVersion(string(out)); ok {
		return ver, nil
	}
	if runErr != nil {
		return "", fmt.Errorf("cannot query cluster version: %w", runErr)
	}
	return "", fmt.Errorf("no server version in oc output; log in to a cluster first")
}

// ParseServerVersion extracts the numeric server version from `oc version`
// output. Returns false when no "Server Version" line carries a leading
// numeric run.
func ParseServerVersion(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "Server Version:")
		if !ok {
			continue
		}
		if ver := version.ExtractVersionNumber(strings.TrimSpace(rest)); ver != "" {
			return ver, true
		}
	}
	return "", false
}
