// Package version exposes build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags at release build time; the zero build is "dev".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the full build fingerprint
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo assembles the build fingerprint for the running binary
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the one-line verbose form with the commit shortened
func (i Info) String() string {
	return fmt.Sprintf("codeloom %s (%s) built %s with %s for %s",
		i.Version, shortCommit(i.Commit), i.Date, i.GoVersion, i.Platform)
}

// Short returns the bare version number
func (i Info) Short() string {
	return i.Version
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
