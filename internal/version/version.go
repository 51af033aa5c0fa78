// Package version exposes build metadata stamped in via -ldflags.
package version

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"
	// GitCommit is the short hash of the commit that produced the binary.
	GitCommit = ""
	// BuildDate is the UTC build timestamp.
	BuildDate = ""
)
