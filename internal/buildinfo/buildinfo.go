// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

import "fmt"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Short returns the version with the abbreviated commit, e.g. "1.2.0 (a1b2c3d)".
func Short() string {
	commit := CommitHash
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s)", Version, commit)
}
