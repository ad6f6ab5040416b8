// Package version holds build version information, injected at build time via ldflags.
package version

// Version is the application version. Overridden at build time with:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3"
var Version = "dev"
