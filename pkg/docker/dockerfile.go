// Package docker reads and rewrites Dockerfile base images and resolves the
// newest tag of an image on Docker Hub.
package docker

import (
	"os"
	"regexp"
	"strings"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
)

// DefaultTag is implied by a FROM line without a tag.
const DefaultTag = "latest"

// ErrNoFromLine is returned when a Dockerfile has no FROM instruction.
var ErrNoFromLine = errors.New(errors.ErrCodeNotFound, "no FROM line")

// The image group allows a "host:port/" registry prefix so the port is not
// mistaken for a tag.
var fromLine = regexp.MustCompile(`(?mi)^\s*FROM\s+(?:--platform=\S+\s+)?((?:[^\s/:@]+(?::\d+)?/)?[^\s:@]+)(?::([^\s@/]+))?`)

// BaseImage is the image named by a Dockerfile's first FROM line.
type BaseImage struct {
	Name string `json:"imageName"`
	Tag  string `json:"currentVersion"`
}

func (b BaseImage) String() string { return b.Name + ":" + b.Tag }

// Parse extracts the first FROM image and tag. The tag defaults to "latest".
func Parse(content string) (BaseImage, error) {
	m := fromLine.FindStringSubmatch(content)
	if m == nil {
		return BaseImage{}, ErrNoFromLine
	}
	tag := m[2]
	if tag == "" {
		tag = DefaultTag
	}
	return BaseImage{Name: m[1], Tag: tag}, nil
}

// Read parses the Dockerfile at path.
func Read(path string) (BaseImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BaseImage{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "dockerfile %s", path)
		}
		return BaseImage{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return Parse(string(data))
}

// Supported reports whether an image can be looked up on Docker Hub: at most
// one namespace segment and no registry host.
func Supported(image string) bool {
	if image == "" {
		return false
	}
	parts := strings.Split(image, "/")
	if len(parts) > 2 {
		return false
	}
	if len(parts) == 2 && (strings.ContainsAny(parts[0], ".:") || parts[0] == "localhost") {
		return false
	}
	return true
}
