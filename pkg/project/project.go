// Package project models the configured projects and keeps their local
// checkouts in sync with their remotes.
package project

import (
	"path/filepath"
	"strings"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
)

// Kind distinguishes the two halves of a project.
type Kind string

const (
	Frontend Kind = "frontend"
	Server   Kind = "server"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{Frontend, Server}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case Frontend:
		return Frontend, nil
	case Server:
		return Server, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "type must be %q or %q, got %q", Frontend, Server, s)
}

// Project is one entry of the projects file.
type Project struct {
	ID                 string `json:"id"`
	Name               string `json:"name" validate:"required"`
	Path               string `json:"path"`
	RemoteURL          string `json:"remoteUrl,omitempty"`
	Frontend           string `json:"frontend,omitempty"`
	Server             string `json:"server,omitempty"`
	FrontendDockerfile string `json:"frontendDockerfile,omitempty"`
	ServerDockerfile   string `json:"serverDockerfile,omitempty"`
	PackageManager     string `json:"packageManager,omitempty" validate:"omitempty,oneof=npm yarn"`

	// Cloned is set on listings when the checkout was cloned or pulled
	// successfully during that request.
	Cloned bool `json:"cloned,omitempty"`
}

// Remote reports whether the project is backed by a git remote.
func (p Project) Remote() bool { return p.RemoteURL != "" }

// Manifest returns the absolute package.json path for kind, or "" when the
// project has none.
func (p Project) Manifest(kind Kind) string {
	switch kind {
	case Frontend:
		return p.join(p.Frontend)
	case Server:
		return p.join(p.Server)
	}
	return ""
}

// Dockerfile returns the absolute Dockerfile path for kind, or "".
func (p Project) Dockerfile(kind Kind) string {
	switch kind {
	case Frontend:
		return p.join(p.FrontendDockerfile)
	case Server:
		return p.join(p.ServerDockerfile)
	}
	return ""
}

func (p Project) join(rel string) string {
	if rel == "" {
		return ""
	}
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(p.Path, rel)
}
