package resolve

import (
	"context"
	"fmt"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/pm"
)

// CLIStrategy asks the package manager. Output is accepted only when it is a
// strict MAJOR.MINOR.PATCH version.
type CLIStrategy struct {
	manager pm.Manager
	runner  pm.Runner
}

func NewCLIStrategy(manager pm.Manager, runner pm.Runner) *CLIStrategy {
	if runner == nil {
		runner = pm.ExecRunner{}
	}
	return &CLIStrategy{manager: manager, runner: runner}
}

func (s *CLIStrategy) Name() string { return "cli" }

// Resolve rejects names that are not valid npm names before they reach the
// command line.
func (s *CLIStrategy) Resolve(ctx context.Context, pkg string) (string, error) {
	if err := errors.ValidateNpmPackageName(pkg); err != nil {
		return "", err
	}
	out, err := s.runner.Run(ctx, "", s.manager.String(), s.manager.ViewArgs(pkg)...)
	if err != nil {
		return "", err
	}
	v, ok := pm.ParseVersionOutput(out)
	if !ok {
		return "", fmt.Errorf("%s printed no strict version for %s", s.manager, pkg)
	}
	return v, nil
}
