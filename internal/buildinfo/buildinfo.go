// Package buildinfo holds version information injected at build time via ldflags:
//
//	-X github.com/systrayctl/systrayctl/internal/buildinfo.Version=1.0.0
package buildinfo

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)
