package main

import (
	"ovc/cmd" // CLI commands and execution logic
)

// main delegates to cmd.Execute, which parses arguments, dispatches to the
// matching command, and exits non-zero on any unhandled error.
//
// ovc is a version manager for the OpenShift client (oc). It:
//   - Downloads versions from the public mirror, resolving partial versions
//     like "4.19" to the newest matching release
//   - Keeps downloaded binaries side by side and switches the default via
//     oc/kubectl symlinks in ~/.local/bin
//   - Lists available and installed versions, and prunes old ones
//   - Caches the mirror's version listing on disk; the cache never expires
//     and is refreshed only when a requested version is missing from it
//   - Updates itself from GitHub releases
func main() {
	cmd.Execute()
}
