package logger

import (
	"github.com/fatih/color" // Colored console output for the different log levels
)

// Colorized printing functions for the different log levels, built on
// fatih/color. They behave like fmt.Fprintf bound to stderr, so normal
// command output on stdout stays clean for piping (e.g. `ovc list 4.19 | tail`).

// Info logs informational messages in green.
var Info = newLevel(color.FgGreen)

// Warn logs warning messages in bright magenta.
var Warn = newLevel(color.FgHiMagenta)

// Error logs error messages in red.
var Error = newLevel(color.FgRed)

// Debug logs debug messages in cyan when enabled, otherwise it is a no-op.
// It is assigned dynamically during Init based on the --debug flag.
var Debug func(format string, a ...any)

// newLevel builds a stderr-bound printf function for one log level.
// color.Error wraps os.Stderr with terminal-aware color handling, so escape
// sequences are stripped automatically when stderr is not a TTY.
func newLevel(attr color.Attribute) func(format string, a ...any) {
	c := color.New(attr)
	return func(format string, a ...any) {
		c.Fprintf(color.Error, format, a...)
	}
}

// Init enables or disables debug logging. When disabled, Debug is a no-op
// function so call sites never need to guard their debug statements.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = newLevel(color.FgCyan)
	} else {
		Debug = func(format string, a ...any) {}
	}
}

func init() {
	// Commands may log before cobra's PersistentPreRun calls Init.
	Init(false)
}
