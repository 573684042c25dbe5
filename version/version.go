// Package version exposes build information embedded at compile time via
// -ldflags:
//
//	go build -ldflags "-X github.com/skillsenselab/scribe/version.Version=1.2.0"
package version

import (
	"runtime/debug"
)

// Set at build time with -ldflags. Left as "dev" for local builds.
var (
	Version   = "dev"
	GitCommit = ""
)

// Info is the version information reported by the service.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information, falling back to the VCS metadata Go
// embeds in the binary when ldflags were not set.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = buildInfo.GoVersion
		if info.GitCommit == "" {
			for _, setting := range buildInfo.Settings {
				if setting.Key == "vcs.revision" {
					info.GitCommit = shortCommit(setting.Value)
					break
				}
			}
		}
	}
	return info
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
