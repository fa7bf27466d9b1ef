package api

import (
	"fmt"
	"runtime/debug"
)

// Build metadata reported by /version, the X-Engine-Version header and run
// history. Release builds stamp it with
//
//	go build -ldflags "\
//	  -X github.com/MJE43/gbwild/internal/api.EngineVersion=v0.3.0 \
//	  -X github.com/MJE43/gbwild/internal/api.GitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/MJE43/gbwild/internal/api.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/gbwild
//
// Unstamped builds take the commit and time from the VCS settings the go
// command embeds, when present.
var (
	EngineVersion = "dev"
	GitCommit     = "unknown"
	BuildTime     = "unknown"
)

// GetVersionInfo returns the build metadata.
func GetVersionInfo() VersionInfo {
	v := VersionInfo{
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && v.GitCommit == "unknown":
				v.GitCommit = s.Value
			case s.Key == "vcs.time" && v.BuildTime == "unknown":
				v.BuildTime = s.Value
			}
		}
	}
	return v
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("gbwild %s (commit %s, built %s)", v.EngineVersion, v.GitCommit, v.BuildTime)
}
