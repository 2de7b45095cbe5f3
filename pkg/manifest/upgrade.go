package manifest

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/fsutil"
	"github.com/thanhnhan2tn/package-updater/pkg/observability"
	"github.com/thanhnhan2tn/package-updater/pkg/pm"
)

// Installer resynchronizes the lockfile next to a manifest.
type Installer interface {
	Install(ctx context.Context, dir string) error
}

// CommandInstaller runs the package manager's install command.
type CommandInstaller struct {
	Manager pm.Manager
	Runner  pm.Runner
}

func (i CommandInstaller) Install(ctx context.Context, dir string) error {
	runner := i.Runner
	if runner == nil {
		runner = pm.ExecRunner{}
	}
	_, err := runner.Run(ctx, dir, i.Manager.String(), i.Manager.InstallArgs()...)
	return err
}

// Upgrader edits a manifest and reinstalls as one step: when the install
// fails, the manifest is restored to its previous bytes.
type Upgrader struct {
	locks  *fsutil.Locker
	runner pm.Runner
	logger *log.Logger
}

// NewUpgrader creates an Upgrader. locks may be shared with other writers so
// that every edit to a file is serialized.
func NewUpgrader(locks *fsutil.Locker, runner pm.Runner, logger *log.Logger) *Upgrader {
	if locks == nil {
		locks = fsutil.NewLocker()
	}
	if runner == nil {
		runner = pm.ExecRunner{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Upgrader{locks: locks, runner: runner, logger: logger}
}

// Upgrade sets name to "^version" in the manifest at path and runs the
// manager's install in the manifest's directory.
func (u *Upgrader) Upgrade(ctx context.Context, path, name, version string, manager pm.Manager) (ch Change, err error) {
	start := time.Now()
	defer func() {
		observability.Upgrade().OnUpgrade(ctx, "npm", name, ch.Changed, time.Since(start), err)
	}()

	unlock := u.locks.Lock(path)
	defer unlock()

	original, err := readFile(path)
	if err != nil {
		return Change{}, err
	}
	out, ch, err := Edit(original, name, version)
	if err != nil {
		return Change{}, err
	}
	if !ch.Changed {
		u.logger.Debug("already at version", "package", name, "version", ch.To, "manifest", path)
		return ch, nil
	}

	if err := fsutil.WriteFileAtomic(path, out); err != nil {
		return Change{}, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := fsutil.WriteFileAtomic(path, original); rerr != nil {
			u.logger.Error("restore manifest failed", "manifest", path, "err", rerr)
			return
		}
		observability.Upgrade().OnRestore(ctx, path)
		u.logger.Warn("manifest restored", "manifest", path, "package", name)
	}()

	dir := filepath.Dir(path)
	u.logger.Info("installing", "manager", manager, "dir", dir)
	installer := CommandInstaller{Manager: manager, Runner: u.runner}
	if err := installer.Install(ctx, dir); err != nil {
		return Change{}, errors.Wrap(errors.ErrCodeInstallFailed, err, "%s install in %s", manager, dir)
	}

	committed = true
	u.logger.Info("upgraded", "package", name, "from", ch.From, "to", ch.To, "manifest", path)
	return ch, nil
}
