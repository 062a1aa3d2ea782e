// Package version holds build metadata for the autoimport binary.
package version

import (
	"fmt"
	"runtime/debug"
)

const (
	unknown     = "<unknown>"
	develVer    = "(devel)"
	revisionKey = "vcs.revision"
	timeKey     = "vcs.time"
	modifiedKey = "vcs.modified"
	shortHash   = 12
)

// Version is the release version, set with -ldflags "-X".
var Version = "dev"

// Commit is the Git hash the binary was built from.
var Commit = unknown

// Date is the build or commit time.
var Date = unknown

// InitBinaryVersion fills in the metadata that was not set at link time
// from the module build info.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != develVer {
		Version = info.Main.Version
	}

	var dirty bool

	for _, setting := range info.Settings {
		switch setting.Key {
		case revisionKey:
			if Commit == unknown {
				Commit = setting.Value
				if len(Commit) > shortHash {
					Commit = Commit[:shortHash]
				}
			}
		case timeKey:
			if Date == unknown {
				Date = setting.Value
			}
		case modifiedKey:
			dirty = setting.Value == "true"
		}
	}

	if dirty && Commit != unknown {
		Commit += "-dirty"
	}
}

// String formats the metadata for the version command.
func String(name string) string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", name, Version, Commit, Date)
}
