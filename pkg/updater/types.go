package updater

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"github.com/thanhnhan2tn/package-updater/pkg/project"
	"github.com/thanhnhan2tn/package-updater/pkg/resolve"
)

// Dependency is one manifest entry, optionally enriched with its latest version.
type Dependency struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	CurrentVersion string       `json:"currentVersion"`
	LatestVersion  string       `json:"latestVersion,omitempty"`
	Project        string       `json:"project"`
	Type           project.Kind `json:"type"`
	DevDependency  bool         `json:"devDependency"`
	Outdated       bool         `json:"outdated"`
}

// DockerImage is the base image of one of a project's Dockerfiles.
type DockerImage struct {
	Project        string       `json:"project"`
	Type           project.Kind `json:"type"`
	ImageName      string       `json:"imageName"`
	CurrentVersion string       `json:"currentVersion"`
	LatestVersion  string       `json:"latestVersion,omitempty"`
	DockerfilePath string       `json:"dockerfilePath"`
	Outdated       bool         `json:"outdated"`
}

// PackageVersion answers a single latest-version lookup.
type PackageVersion struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LatestVersion string `json:"latestVersion"`
}

var idNamespace = uuid.MustParse("6f1c1a52-7f0e-4d1b-9a57-3c1f0e1a9b44")

// DependencyID is stable for a project, kind and package name.
func DependencyID(projectName string, kind project.Kind, name string) string {
	return uuid.NewSHA1(idNamespace, []byte(projectName+"/"+string(kind)+"/"+name)).String()
}

// Outdated reports whether latest is newer than current. Range operators are
// ignored. Versions that do not parse are compared as strings; an unknown
// latest is never outdated.
func Outdated(current, latest string) bool {
	if latest == "" || latest == resolve.Unknown {
		return false
	}
	c, l := stripRange(current), stripRange(latest)
	cv, cerr := semver.NewVersion(c)
	lv, lerr := semver.NewVersion(l)
	if cerr != nil || lerr != nil {
		return c != l
	}
	return lv.GreaterThan(cv)
}

func stripRange(v string) string {
	return strings.TrimLeft(strings.TrimSpace(v), "^~>=<v ")
}
