// Package settings provides build metadata, per-run configuration, and
// context helpers shared by the fwtable CLI.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "fwtable"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, version and build timestamp of the
// running binary.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings of a single CLI invocation.
type Run struct {
	// MinLogLevel is a zap level: -1 debug, 0 info, 1 warn, 2 error.
	MinLogLevel int8
	NoColor     bool
	// ConfigPath is the table config file, empty when none was given.
	ConfigPath string
	// Input is the data file, or "-" for stdin.
	Input string
}

// NewCliParams returns the defaults for a CLI run: info logging, colors
// allowed, input from stdin.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		NoColor:     false,
		Input:       "-",
	}
}
