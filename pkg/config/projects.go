package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/project"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type projectsFile struct {
	Projects []project.Project `json:"projects"`
}

// LoadProjects reads the project list at path. Relative project paths are
// resolved against the file's directory; remote projects without a path are
// checked out under workDir/<name>.
func LoadProjects(path, workDir string) ([]project.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "projects file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return ParseProjects(data, filepath.Dir(path), workDir)
}

// ParseProjects decodes either {"projects": [...]} or a bare array.
func ParseProjects(data []byte, baseDir, workDir string) ([]project.Project, error) {
	var list []project.Project
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse projects")
		}
	} else {
		var f projectsFile
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse projects")
		}
		list = f.Projects
	}

	seen := make(map[string]bool, len(list))
	for i := range list {
		p := &list[i]
		if err := validate.Struct(p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "project %d", i)
		}
		if seen[p.Name] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate project %q", p.Name)
		}
		seen[p.Name] = true

		if p.ID == "" {
			p.ID = p.Name
		}
		switch {
		case p.Path == "" && p.Remote():
			p.Path = filepath.Join(workDir, p.Name)
		case p.Path == "":
			return nil, errors.New(errors.ErrCodeInvalidInput, "project %q needs a path or a remoteUrl", p.Name)
		case !filepath.IsAbs(p.Path):
			p.Path = filepath.Join(baseDir, p.Path)
		}
		p.Path = filepath.Clean(p.Path)
		for _, rel := range []string{p.Frontend, p.Server, p.FrontendDockerfile, p.ServerDockerfile} {
			if rel == "" || filepath.IsAbs(rel) {
				continue
			}
			if err := errors.ValidatePath(rel); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "project %q", p.Name)
			}
		}
	}
	return list, nil
}
