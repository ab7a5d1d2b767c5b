package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// EngineModule is the module path of the injection engine.
const EngineModule = "github.com/kbukum/inject"

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

var readBuildInfo = debug.ReadBuildInfo

// Info is the build report served by the inspection endpoint.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	BuildTime string    `json:"build_time,omitempty"`
	BuildDate time.Time `json:"build_date"`
	GoVersion string    `json:"go_version,omitempty"`
	Module    string    `json:"module,omitempty"`
	Engine    string    `json:"engine,omitempty"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// GetVersionInfo combines the link-time variables with the embedded build
// information. Link-time values win.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if bi, ok := readBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		info.Module = bi.Main.Path
		info.Engine = engineVersion(bi)
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = shortRevision(s.Value)
				}
			case "vcs.modified":
				info.IsDirty = s.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
						info.BuildDate = t
						info.BuildTime = s.Value
					}
				}
			}
		}
	}

	info.IsRelease = info.Version != "dev" && !info.IsDirty && !strings.Contains(info.Version, "dirty")
	return info
}

// engineVersion finds the engine among the main module and its
// dependencies, following replacements.
func engineVersion(bi *debug.BuildInfo) string {
	if bi.Main.Path == EngineModule {
		return bi.Main.Version
	}
	for _, dep := range bi.Deps {
		if dep.Path != EngineModule {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return ""
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// Short returns version-commit, with a dirty suffix when the tree was
// modified.
func (i *Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	s := fmt.Sprintf("%s-%s", i.Version, i.GitCommit)
	if i.IsDirty {
		s += "-dirty"
	}
	return s
}

// String returns the short version with the engine and build date.
func (i *Info) String() string {
	s := i.Short()
	if i.Engine != "" && i.Module != EngineModule {
		s += " (inject " + i.Engine + ")"
	}
	if !i.BuildDate.IsZero() {
		s += " built " + i.BuildDate.UTC().Format(time.RFC3339)
	}
	return s
}
