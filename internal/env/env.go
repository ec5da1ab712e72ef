package env

import (
	"os"
	"path/filepath"
)

// Daemon is set when the process runs as the keeper server.
var Daemon bool = false

// Version is stamped by the build, reported by /healthz and `signalbox version`.
var Version string = "dev"

// ConfigPath is the --config flag, empty uses the search path.
var ConfigPath string = ""

/**
 * Get the default control socket path
 * @returns {string} Returns $XDG_RUNTIME_DIR/signalbox.sock for users, /run/signalbox/signalbox.sock for root
 */
func DefaultSocketPath() string {
	if os.Geteuid() != 0 {
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			return filepath.Join(dir, "signalbox.sock")
		}
	}
	return "/run/signalbox/signalbox.sock"
}
