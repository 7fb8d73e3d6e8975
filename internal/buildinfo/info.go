// Package buildinfo holds version metadata stamped into the mk5 binary.
package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/mk5-wallet/mk5/internal/buildinfo.Version=..." at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line shown by `mk5 --version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
