// Package version carries build metadata injected with ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/vaultmark/internal/version.Version=v0.3.0"
package version

import "fmt"

var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String is the line printed by --version.
func String() string {
	if GitCommit == "unknown" {
		return "vaultmark " + Version
	}
	return fmt.Sprintf("vaultmark %s (%s, built %s)", Version, GitCommit, BuildTime)
}
