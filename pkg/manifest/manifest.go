// Package manifest reads and edits package.json dependency maps.
//
// Reads keep the order entries appear in the file. Edits touch only the one
// version string they change: every other byte of the file, including key
// order and formatting, is preserved.
package manifest

import (
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/fsutil"
)

// Dependency sections, in lookup order.
const (
	SectionDependencies    = "dependencies"
	SectionDevDependencies = "devDependencies"
)

var sections = []string{SectionDependencies, SectionDevDependencies}

// Entry is one dependency declared in a manifest.
type Entry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Dev     bool   `json:"devDependency"`
}

// Change describes the effect of a version edit.
type Change struct {
	Name    string `json:"name"`
	Section string `json:"section"`
	From    string `json:"from"`
	To      string `json:"to"`
	Changed bool   `json:"changed"`
}

// Read returns the dependencies then devDependencies of the manifest at path.
func Read(path string) ([]Entry, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse flattens the dependency sections of a package.json document.
func Parse(data []byte) ([]Entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest is not valid JSON")
	}
	var entries []Entry
	for _, section := range sections {
		gjson.GetBytes(data, section).ForEach(func(k, v gjson.Result) bool {
			entries = append(entries, Entry{
				Name:    k.String(),
				Version: v.String(),
				Dev:     section == SectionDevDependencies,
			})
			return true
		})
	}
	return entries, nil
}

// Range returns the caret range written for version.
func Range(version string) string {
	return "^" + bare(version)
}

// bare drops a leading range operator or "v" prefix.
func bare(version string) string {
	return strings.TrimLeft(version, "^~=v ")
}

// Edit sets name to "^version" in data. dependencies is searched before
// devDependencies. When the stored value already names version, with or
// without a range operator, data is returned as is with Changed false.
func Edit(data []byte, name, version string) ([]byte, Change, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, Change{}, err
	}
	if err := errors.ValidateVersion(version); err != nil {
		return nil, Change{}, err
	}
	if !gjson.ValidBytes(data) {
		return nil, Change{}, errors.New(errors.ErrCodeInvalidManifest, "manifest is not valid JSON")
	}

	want := Range(version)
	for _, section := range sections {
		path := section + "." + escapeKey(name)
		cur := gjson.GetBytes(data, path)
		if !cur.Exists() {
			continue
		}
		ch := Change{Name: name, Section: section, From: cur.String(), To: want}
		if bare(cur.String()) == bare(version) {
			ch.To = cur.String()
			return data, ch, nil
		}
		out, err := sjson.SetBytes(data, path, want)
		if err != nil {
			return nil, Change{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "set %s", name)
		}
		ch.Changed = true
		return out, ch, nil
	}
	return nil, Change{}, errors.New(errors.ErrCodePackageNotFound,
		"package %s not found in dependencies or devDependencies", name)
}

// SetVersion applies Edit to the manifest at path and writes it back
// atomically. The file is untouched when nothing changes or on error.
func SetVersion(path, name, version string) (Change, error) {
	data, err := readFile(path)
	if err != nil {
		return Change{}, err
	}
	out, ch, err := Edit(data, name, version)
	if err != nil || !ch.Changed {
		return ch, err
	}
	if err := fsutil.WriteFileAtomic(path, out); err != nil {
		return Change{}, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return ch, nil
}

// escapeKey escapes characters gjson/sjson treat as path syntax.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '@', '#', '|', ':', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return data, nil
}
