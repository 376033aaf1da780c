// Package debug provides conditional debug logging for gw.
//
// Debug logging is enabled by setting the GW_DEBUG environment variable:
//
//	GW_DEBUG=1 gw
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
// Messages go to stderr because the TUI owns stdout; writing there would
// corrupt the alt screen.
//
// Usage:
//
//	import "github.com/vanderheijden86/guidework/pkg/debug"
//
//	func myFunc() {
//	    debug.Log("starting tour %s at step %d", id, step)
//	    // ...
//	    debug.LogTiming("myFunc", elapsed)
//	}
package debug

import (
	"log"
	"os"
	"time"
)

var (
	// enabled is true when GW_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [GW_DEBUG] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("GW_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[GW_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
// Note: This also requires initializing the logger if not already done.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[GW_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}
