// Package version provides build version information and runtime metadata.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

const name = "gcp-billing-watcher"

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once

	readBuildInfo = debug.ReadBuildInfo
)

func ensureInitialized() {
	once.Do(func() {
		fillFromBuildInfo()
	})
}

// fillFromBuildInfo fills unset fields from the module and VCS stamps the
// go tool embeds in the binary.
func fillFromBuildInfo() {
	info, ok := readBuildInfo()
	if ok {
		if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			Version = strings.TrimPrefix(info.Main.Version, "v")
		}
		modified := false
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if Commit == "" {
					Commit = shortRevision(s.Value)
				}
			case "vcs.time":
				if Date == "" {
					Date = s.Value
				}
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
		if modified && Commit != "" && !strings.HasSuffix(Commit, "-dirty") {
			Commit += "-dirty"
		}
	}

	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
	if Date == "" {
		Date = "unknown"
	}
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// Info returns a one-line version string.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s/%s)",
		name, Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}

// Fields returns the version details as label/value pairs in display order.
func Fields() [][2]string {
	ensureInitialized()
	return [][2]string{
		{"Version", Version},
		{"Git Commit", Commit},
		{"Build Date", Date},
		{"Go Version", runtime.Version()},
		{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
	}
}
