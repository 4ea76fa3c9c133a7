package version

import "fmt"

var (
	// Version is the release this binary belongs to. Overridden via ldflags.
	Version = "1.0.0"
	// Commit is the short hash of the commit the binary was built from.
	Commit = "none"
	// BuildTime is when the binary was built, in UTC.
	BuildTime = "unknown"
)

// Short returns the bare release version. The publisher stamps it into the
// release manifest.
func Short() string {
	return Version
}

// Full renders the version together with commit and build time. The updater
// parses this exact layout when it probes installed tools, so the field order
// and separators must stay stable.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// UserAgent identifies the suite's binaries in HTTP requests against the
// update folder.
func UserAgent() string {
	return "watermark-tool/" + Version
}
