package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	Module    string `json:"module,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Get returns version information, preferring ldflags values over the
// embedded build info.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	info.Module = bi.Main.Path
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}

// Short returns "version[-commit][-dirty]".
func (i Info) Short() string {
	s := i.Version
	if i.Commit != "" {
		s = fmt.Sprintf("%s-%s", s, i.Commit)
	}
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

// String returns the short version followed by the Go version.
func (i Info) String() string {
	if i.GoVersion == "" {
		return i.Short()
	}
	return fmt.Sprintf("%s (%s)", i.Short(), i.GoVersion)
}

// Fields returns the info as log fields.
func (i Info) Fields() map[string]interface{} {
	f := map[string]interface{}{"version": i.Version}
	if i.Commit != "" {
		f["commit"] = i.Commit
	}
	if i.BuildTime != "" {
		f["build_time"] = i.BuildTime
	}
	if i.GoVersion != "" {
		f["go_version"] = i.GoVersion
	}
	return f
}

// Resolve returns configured when set, else the short build version.
// Services use it to pick the version reported to telemetry.
func Resolve(configured string) string {
	if configured != "" {
		return configured
	}
	return Get().Short()
}
