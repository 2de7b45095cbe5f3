// Package buildinfo carries version information injected at build time:
//
//	go build -ldflags "-X github.com/thanhnhan2tn/package-updater/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/thanhnhan2tn/package-updater/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/thanhnhan2tn/package-updater/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra --version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// Info is the build information reported by the health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"built"`
}

// Current returns the build information of the running binary.
func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}
