package main

import (
	"runtime/debug"

	"github.com/tacopkm/tpkm/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// goreleaser sets version via ldflags to the latest tag (eg. v0.0.9)
	if version == "dev" {
		// if dev use git sha (build info is only present from go build not go run)
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					version = s.Value
				}
			}
		}
	}
	cmd.Version = version
	cmd.Commit = commit
	cmd.Date = date
	cmd.Execute()
}
