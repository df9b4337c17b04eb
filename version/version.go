// Package version provides build version information embedding.
//
// Version and git commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/tweetkit/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// These variables are set at build time using -ldflags
	Version   = "dev"
	GitCommit = ""
)

// UserAgent returns the default User-Agent header value sent with
// every request.
func UserAgent() string {
	return fmt.Sprintf("tweetkit/%s", Version)
}

// GoVersion returns the Go toolchain version the binary was built with.
func GoVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return ""
}
