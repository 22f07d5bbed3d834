// Package version provides version information for sslexec.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the current version of sslexec.
// Set at build time via: -ldflags "-X github.com/xdg/sslexec/internal/version.Version=v1.0.0"
// Defaults to "dev" for development builds.
var Version = "dev"

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// String returns the version, falling back to the module version recorded
// by "go install" when no ldflags version was set.
func String() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// Full returns a one-line description used by "sslexec --version".
func Full() string {
	return fmt.Sprintf("sslexec %s (%s, %s/%s)", String(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
