package project

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"

	perrors "github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/fsutil"
)

// DefaultCloneTimeout bounds a clone.
const DefaultCloneTimeout = 2 * time.Minute

// Syncer makes sure a project's checkout exists before it is read. Calls
// for the same path are serialized.
type Syncer struct {
	cloneTimeout time.Duration
	locks        *fsutil.Locker
	logger       *log.Logger
}

// NewSyncer returns a Syncer. A nil locks gets a private Locker.
func NewSyncer(cloneTimeout time.Duration, locks *fsutil.Locker, logger *log.Logger) *Syncer {
	if cloneTimeout <= 0 {
		cloneTimeout = DefaultCloneTimeout
	}
	if locks == nil {
		locks = fsutil.NewLocker()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Syncer{cloneTimeout: cloneTimeout, locks: locks, logger: logger}
}

// Ensure reports whether p's checkout is usable. For remote projects:
//
//   - an existing repository is pulled; a failed pull is logged and the
//     checkout is still usable
//   - an existing directory that is not a repository is removed and cloned
//   - a missing directory is cloned after creating its parents
//
// Each step is attempted once. Local projects are usable when the path exists.
func (s *Syncer) Ensure(ctx context.Context, p Project) bool {
	unlock := s.locks.Lock(p.Path)
	defer unlock()

	info, err := os.Stat(p.Path)
	exists := err == nil && info.IsDir()

	if !p.Remote() {
		if !exists {
			s.logger.Warn("project path missing", "project", p.Name, "path", p.Path)
		}
		return exists
	}

	if exists {
		repo, err := git.PlainOpen(p.Path)
		if err == nil {
			if err := pull(ctx, repo); err != nil {
				s.logger.Warn("pull failed", "project", p.Name, "err", err)
			}
			return true
		}
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			s.logger.Error("open repository failed", "project", p.Name,
				"err", perrors.Wrap(perrors.ErrCodeGitFailed, err, "open %s", p.Path))
			return false
		}
		s.logger.Warn("path is not a repository, replacing", "project", p.Name, "path", p.Path)
		if err := os.RemoveAll(p.Path); err != nil {
			s.logger.Error("remove failed", "project", p.Name, "err", err)
			return false
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
			s.logger.Error("create parent directory failed", "project", p.Name, "err", err)
			return false
		}
	}
	s.logger.Info("cloning", "project", p.Name, "remote", p.RemoteURL, "path", p.Path)
	if err := s.clone(ctx, p); err != nil {
		s.logger.Error("clone failed", "project", p.Name, "code", perrors.GetCode(err), "err", err)
		_ = os.RemoveAll(p.Path)
		return false
	}
	return true
}

// pull fast-forwards the worktree. An up-to-date checkout is not an error.
func pull(ctx context.Context, repo *git.Repository) error {
	wt, err := repo.Worktree()
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeGitFailed, err, "worktree")
	}
	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: git.DefaultRemoteName})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return perrors.Wrap(perrors.ErrCodeGitFailed, err, "pull")
	}
	return nil
}

func (s *Syncer) clone(ctx context.Context, p Project) error {
	ctx, cancel := context.WithTimeout(ctx, s.cloneTimeout)
	defer cancel()

	_, err := git.PlainCloneContext(ctx, p.Path, false, &git.CloneOptions{URL: p.RemoteURL})
	switch {
	case err == nil:
		return nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return perrors.Wrap(perrors.ErrCodeTimeout, err, "clone %s after %s", p.RemoteURL, s.cloneTimeout)
	default:
		return perrors.Wrap(perrors.ErrCodeGitFailed, err, "clone %s", p.RemoteURL)
	}
}
