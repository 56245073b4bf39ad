package app

import (
	"fmt"
	"runtime/debug"
)

var buildInfo = struct {
	version string
	commit  string
	date    string
}{"dev", "none", "unknown"}

// SetBuildInfo is called from main with ldflags-injected values. When the
// binary was installed with `go install` and no commit was injected, the
// VCS revision from the embedded build info is used instead.
func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildInfo.version = version
	}
	if commit != "" {
		buildInfo.commit = commit
	}
	if date != "" {
		buildInfo.date = date
	}
	if buildInfo.commit != "none" {
		return
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				buildInfo.commit = s.Value[:12]
			}
		}
	}
}

func BuildVersionString() string {
	return fmt.Sprintf("%s (%s) %s", buildInfo.version, buildInfo.commit, buildInfo.date)
}
