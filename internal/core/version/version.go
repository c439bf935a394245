// Package version reports what build is running
package version

// BuildInfo describes the running binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set with -ldflags, e.g.
// -X 'punchclock/internal/core/version.version=v0.3.0' -X 'punchclock/internal/core/version.commit=abcd'
var (
	service = "punchclock"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build info for binary, falling back to the base service name
func Info(binary string) BuildInfo {
	name := service
	if binary != "" {
		name = binary
	}
	return BuildInfo{Service: name, Version: version, Commit: commit, Date: date}
}

// String is the one-line form used by --version
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}
