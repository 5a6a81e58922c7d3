// Package version holds build metadata for the texforge binary,
// injected via -ldflags "-X .../internal/version.Version=...".
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
