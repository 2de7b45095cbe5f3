// Package pm wraps the npm-compatible package managers: which commands to run
// for a version lookup or a lockfile resync, and how to run them.
package pm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
)

// Manager names a package manager binary.
type Manager string

const (
	NPM  Manager = "npm"
	Yarn Manager = "yarn"
)

// Default is used when neither the project nor the settings name a manager.
const Default = NPM

// Parse validates a manager name. An empty name yields Default.
func Parse(s string) (Manager, error) {
	switch Manager(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return Default, nil
	case NPM:
		return NPM, nil
	case Yarn:
		return Yarn, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unsupported package manager %q", s)
}

func (m Manager) String() string { return string(m) }

// ViewArgs returns the arguments that print the latest published version of pkg.
func (m Manager) ViewArgs(pkg string) []string {
	if m == Yarn {
		return []string{"info", pkg, "version", "--silent"}
	}
	return []string{"view", pkg, "version"}
}

// InstallArgs returns the arguments that bring the lockfile in line with the
// manifest. npm only rewrites the lockfile; yarn has no such mode and runs a
// full install.
func (m Manager) InstallArgs() []string {
	if m == Yarn {
		return []string{"install"}
	}
	return []string{"install", "--package-lock-only"}
}

var strictVersion = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// IsStrictVersion reports whether s is exactly MAJOR.MINOR.PATCH.
func IsStrictVersion(s string) bool { return strictVersion.MatchString(s) }

// ParseVersionOutput extracts a strict version from view/info output. yarn
// wraps the answer in banner lines, so the last strict line wins.
func ParseVersionOutput(out []byte) (string, bool) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if v := strings.TrimSpace(lines[i]); IsStrictVersion(v) {
			return v, true
		}
	}
	return "", false
}

// Runner runs an external command in dir and returns its stdout.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		line := name + " " + strings.Join(args, " ")
		if exitErr, ok := err.(*exec.ExitError); ok {
			return stdout.Bytes(), fmt.Errorf("%s failed with exit code %d: %s",
				line, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%s: %w", line, err)
	}
	return stdout.Bytes(), nil
}
