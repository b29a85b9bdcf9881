// Package version reports the build version of the opensprinkler binaries.
//
// Release builds stamp the values with ldflags:
//
//	go build -ldflags="-X github.com/muurk/opensprinkler/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/opensprinkler/internal/version.Commit=abc123"
//
// Other builds fall back to the VCS stamp in the binary, then to "dev".
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

var (
	// Version is the release tag, e.g. v1.2.3
	Version = ""
	// Commit is the short git revision
	Commit = ""
)

const shortRevision = 7

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	GoVersion string
}

func init() {
	if Version == "" || Commit == "" {
		info, _ := debug.ReadBuildInfo()
		fillFromSettings(info)
	}
	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fillFromSettings copies the vcs.* build settings into Version and Commit
// where they were not set by ldflags.
func fillFromSettings(info *debug.BuildInfo) {
	if info == nil {
		return
	}
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; Commit == "" && rev != "" {
		if len(rev) > shortRevision {
			rev = rev[:shortRevision]
		}
		if settings["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		Commit = rev
	}
	if Version == "" {
		if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			Version = "dev-" + t.Format("20060102")
		}
	}
}

// Get returns the version of the running binary.
func Get() Info {
	return Info{Version: Version, Commit: Commit, GoVersion: runtime.Version()}
}

// Full returns the version with its commit, e.g. "v1.2.3 (commit: abc1234)".
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent is sent with every controller request.
func UserAgent() string {
	return "opensprinkler-go/" + Version
}
