// Package version provides build-time version information.
// Values are injected with -ldflags "-X github.com/ironsheep/image-brightness/internal/version.Version=x.y.z".
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version of the application.
	Version = "dev"

	// GitCommit is the git commit hash of the build.
	GitCommit = "unknown"

	// BuildTime is the build date in RFC3339 format.
	BuildTime = "unknown"
)

// Info holds all version information for the application.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the version information of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a multi-line human-readable version string.
func String() string {
	i := Get()
	return fmt.Sprintf("image-brightness %s\n  Build time: %s\n  Git commit: %s\n  Go: %s (%s)",
		i.Version, i.BuildTime, i.GitCommit, i.GoVersion, i.Platform)
}
