// Package updater ties projects, manifests, resolvers and writers together
// into the operations the API and CLI expose.
package updater

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/thanhnhan2tn/package-updater/pkg/docker"
	"github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/fsutil"
	"github.com/thanhnhan2tn/package-updater/pkg/manifest"
	"github.com/thanhnhan2tn/package-updater/pkg/pm"
	"github.com/thanhnhan2tn/package-updater/pkg/project"
	"github.com/thanhnhan2tn/package-updater/pkg/resolve"
)

// DefaultConcurrency bounds version and tag lookups in flight.
const DefaultConcurrency = 8

// ProjectLoader returns the configured projects. It is called on every
// operation so edits to the projects file apply without a restart.
type ProjectLoader func() ([]project.Project, error)

// Syncer is satisfied by *project.Syncer.
type Syncer interface {
	Ensure(ctx context.Context, p project.Project) bool
}

// ImageResolver is satisfied by *docker.Resolver.
type ImageResolver interface {
	Latest(ctx context.Context, image string) string
}

// Options configures a Service.
type Options struct {
	Projects       ProjectLoader
	Syncer         Syncer
	Versions       resolve.Resolver
	Images         ImageResolver
	Runner         pm.Runner
	Locks          *fsutil.Locker
	PackageManager pm.Manager
	Concurrency    int
	Logger         *log.Logger
}

// Service implements project, dependency and image operations.
type Service struct {
	projects    ProjectLoader
	syncer      Syncer
	versions    resolve.Resolver
	images      ImageResolver
	upgrader    *manifest.Upgrader
	locks       *fsutil.Locker
	manager     pm.Manager
	concurrency int
	logger      *log.Logger
}

func New(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Locks == nil {
		opts.Locks = fsutil.NewLocker()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.PackageManager == "" {
		opts.PackageManager = pm.Default
	}
	return &Service{
		projects:    opts.Projects,
		syncer:      opts.Syncer,
		versions:    opts.Versions,
		images:      opts.Images,
		upgrader:    manifest.NewUpgrader(opts.Locks, opts.Runner, opts.Logger),
		locks:       opts.Locks,
		manager:     opts.PackageManager,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
}

// Projects loads the project list and syncs every checkout, reporting Cloned
// for remote projects that are usable afterwards.
func (s *Service) Projects(ctx context.Context) ([]project.Project, error) {
	list, err := s.projects()
	if err != nil {
		return nil, err
	}
	if s.syncer == nil {
		return list, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range list {
		g.Go(func() error {
			ok := s.syncer.Ensure(gctx, list[i])
			list[i].Cloned = ok && list[i].Remote()
			return nil
		})
	}
	_ = g.Wait()
	return list, nil
}

// Project returns the named project without syncing it.
func (s *Service) Project(ctx context.Context, name string) (project.Project, error) {
	list, err := s.projects()
	if err != nil {
		return project.Project{}, err
	}
	for _, p := range list {
		if p.Name == name || p.ID == name {
			return p, nil
		}
	}
	return project.Project{}, errors.New(errors.ErrCodeProjectNotFound, "project %q not found", name)
}

func (s *Service) managerFor(p project.Project) pm.Manager {
	if m, err := pm.Parse(p.PackageManager); err == nil && p.PackageManager != "" {
		return m
	}
	return s.manager
}

// Packages flattens the dependencies of every project. Missing or malformed
// manifests are logged and skipped.
func (s *Service) Packages(ctx context.Context) ([]Dependency, error) {
	list, err := s.Projects(ctx)
	if err != nil {
		return nil, err
	}
	return s.packages(list), nil
}

func (s *Service) packages(list []project.Project) []Dependency {
	var deps []Dependency
	for _, p := range list {
		deps = append(deps, s.projectPackages(p)...)
	}
	return deps
}

func (s *Service) projectPackages(p project.Project) []Dependency {
	var deps []Dependency
	for _, kind := range project.Kinds {
		path := p.Manifest(kind)
		if path == "" {
			continue
		}
		entries, err := manifest.Read(path)
		if err != nil {
			s.logger.Warn("skipping manifest", "project", p.Name, "type", kind, "err", err)
			continue
		}
		for _, e := range entries {
			deps = append(deps, Dependency{
				ID:             DependencyID(p.Name, kind, e.Name),
				Name:           e.Name,
				CurrentVersion: e.Version,
				Project:        p.Name,
				Type:           kind,
				DevDependency:  e.Dev,
			})
		}
	}
	return deps
}

// Dependencies lists every dependency with its latest version. Each distinct
// package name is resolved once.
func (s *Service) Dependencies(ctx context.Context) ([]Dependency, error) {
	deps, err := s.Packages(ctx)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, deps)
	return deps, nil
}

// ProjectDependencies lists one project's dependencies with latest versions.
func (s *Service) ProjectDependencies(ctx context.Context, name string) ([]Dependency, error) {
	p, err := s.Project(ctx, name)
	if err != nil {
		return nil, err
	}
	if s.syncer != nil && !s.syncer.Ensure(ctx, p) {
		s.logger.Warn("checkout not available", "project", p.Name)
	}
	deps := s.projectPackages(p)
	s.enrich(ctx, deps)
	return deps, nil
}

func (s *Service) enrich(ctx context.Context, deps []Dependency) {
	latest := s.resolveAll(ctx, names(deps))
	for i := range deps {
		deps[i].LatestVersion = latest[deps[i].Name]
		deps[i].Outdated = Outdated(deps[i].CurrentVersion, deps[i].LatestVersion)
	}
}

func names(deps []Dependency) []string {
	seen := make(map[string]bool, len(deps))
	var out []string
	for _, d := range deps {
		if !seen[d.Name] {
			seen[d.Name] = true
			out = append(out, d.Name)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Service) resolveAll(ctx context.Context, pkgs []string) map[string]string {
	var (
		mu  sync.Mutex
		out = make(map[string]string, len(pkgs))
		g   errgroup.Group
	)
	g.SetLimit(s.concurrency)
	for _, pkg := range pkgs {
		g.Go(func() error {
			v := s.versions.Resolve(ctx, pkg)
			mu.Lock()
			out[pkg] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// PackageVersion resolves the latest version of the dependency with id.
func (s *Service) PackageVersion(ctx context.Context, id string) (PackageVersion, error) {
	list, err := s.projects()
	if err != nil {
		return PackageVersion{}, err
	}
	for _, d := range s.packages(list) {
		if d.ID == id {
			return PackageVersion{ID: id, Name: d.Name, LatestVersion: s.versions.Resolve(ctx, d.Name)}, nil
		}
	}
	return PackageVersion{}, errors.New(errors.ErrCodePackageNotFound, "no dependency with id %q", id)
}

// UpgradeRequest names a package to move to Version. An empty Type searches
// the frontend manifest, then the server manifest.
type UpgradeRequest struct {
	Project string
	Name    string
	Version string
	Type    project.Kind
}

// UpgradeResult reports what an upgrade did.
type UpgradeResult struct {
	Project  string       `json:"project"`
	Type     project.Kind `json:"type"`
	Manifest string       `json:"manifest"`
	manifest.Change
}

// Upgrade rewrites one dependency and reinstalls, restoring the manifest if
// the install fails.
func (s *Service) Upgrade(ctx context.Context, req UpgradeRequest) (UpgradeResult, error) {
	if req.Version == "" || req.Version == resolve.Unknown {
		return UpgradeResult{}, errors.New(errors.ErrCodeInvalidInput, "no version to upgrade %s to", req.Name)
	}
	p, err := s.Project(ctx, req.Project)
	if err != nil {
		return UpgradeResult{}, err
	}
	kind, path, err := s.locate(p, req)
	if err != nil {
		return UpgradeResult{}, err
	}
	ch, err := s.upgrader.Upgrade(ctx, path, req.Name, req.Version, s.managerFor(p))
	if err != nil {
		return UpgradeResult{}, err
	}
	return UpgradeResult{Project: p.Name, Type: kind, Manifest: path, Change: ch}, nil
}

func (s *Service) locate(p project.Project, req UpgradeRequest) (project.Kind, string, error) {
	kinds := project.Kinds
	if req.Type != "" {
		kinds = []project.Kind{req.Type}
	}
	for _, kind := range kinds {
		path := p.Manifest(kind)
		if path == "" {
			continue
		}
		if req.Type != "" {
			return kind, path, nil
		}
		entries, err := manifest.Read(path)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.Name == req.Name {
				return kind, path, nil
			}
		}
	}
	if req.Type != "" {
		return "", "", errors.New(errors.ErrCodeFileNotFound, "project %q has no %s manifest", p.Name, req.Type)
	}
	return "", "", errors.New(errors.ErrCodePackageNotFound, "package %s not found in project %q", req.Name, p.Name)
}

// Images lists the base image of every configured Dockerfile with its
// latest tag.
func (s *Service) Images(ctx context.Context) ([]DockerImage, error) {
	list, err := s.Projects(ctx)
	if err != nil {
		return nil, err
	}
	var images []DockerImage
	for _, p := range list {
		for _, kind := range project.Kinds {
			img, err := s.readImage(p, kind)
			if err != nil {
				if !errors.Is(err, errors.ErrCodeUnsupported) {
					s.logger.Warn("skipping dockerfile", "project", p.Name, "type", kind, "err", err)
				}
				continue
			}
			images = append(images, img)
		}
	}

	g := errgroup.Group{}
	g.SetLimit(s.concurrency)
	for i := range images {
		g.Go(func() error {
			s.enrichImage(ctx, &images[i])
			return nil
		})
	}
	_ = g.Wait()
	return images, nil
}

// Image returns one project's image for kind.
func (s *Service) Image(ctx context.Context, projectName string, kind project.Kind) (DockerImage, error) {
	p, err := s.Project(ctx, projectName)
	if err != nil {
		return DockerImage{}, err
	}
	img, err := s.readImage(p, kind)
	if err != nil {
		if errors.Is(err, errors.ErrCodeUnsupported) {
			return DockerImage{}, errors.New(errors.ErrCodeFileNotFound, "project %q has no %s Dockerfile", p.Name, kind)
		}
		return DockerImage{}, err
	}
	s.enrichImage(ctx, &img)
	return img, nil
}

func (s *Service) readImage(p project.Project, kind project.Kind) (DockerImage, error) {
	path := p.Dockerfile(kind)
	if path == "" {
		return DockerImage{}, errors.New(errors.ErrCodeUnsupported, "no %s Dockerfile", kind)
	}
	base, err := docker.Read(path)
	if err != nil {
		return DockerImage{}, err
	}
	return DockerImage{
		Project:        p.Name,
		Type:           kind,
		ImageName:      base.Name,
		CurrentVersion: base.Tag,
		DockerfilePath: path,
	}, nil
}

func (s *Service) enrichImage(ctx context.Context, img *DockerImage) {
	img.LatestVersion = s.images.Latest(ctx, img.ImageName)
	img.Outdated = Outdated(img.CurrentVersion, img.LatestVersion)
}

// ImageUpgradeRequest moves a project's base image to Version.
type ImageUpgradeRequest struct {
	Project   string
	ImageName string
	Version   string
	Type      project.Kind
}

// ImageUpgradeResult reports what an image upgrade did.
type ImageUpgradeResult struct {
	Project        string       `json:"project"`
	Type           project.Kind `json:"type"`
	ImageName      string       `json:"imageName"`
	Version        string       `json:"latestVersion"`
	DockerfilePath string       `json:"dockerfilePath"`
	Changed        bool         `json:"changed"`
}

// UpgradeImage rewrites the FROM line of the project's Dockerfile for Type.
// No rebuild is triggered.
func (s *Service) UpgradeImage(ctx context.Context, req ImageUpgradeRequest) (ImageUpgradeResult, error) {
	if req.Version == "" || req.Version == resolve.Unknown {
		return ImageUpgradeResult{}, errors.New(errors.ErrCodeInvalidInput, "no tag to upgrade %s to", req.ImageName)
	}
	p, err := s.Project(ctx, req.Project)
	if err != nil {
		return ImageUpgradeResult{}, err
	}
	path := p.Dockerfile(req.Type)
	if path == "" {
		return ImageUpgradeResult{}, errors.New(errors.ErrCodeFileNotFound, "project %q has no %s Dockerfile", p.Name, req.Type)
	}
	changed, err := docker.SetFromTag(ctx, s.locks, path, req.ImageName, req.Version)
	if err != nil {
		return ImageUpgradeResult{}, err
	}
	if !changed {
		s.logger.Warn("dockerfile unchanged", "project", p.Name, "image", req.ImageName, "tag", req.Version, "path", path)
	} else {
		s.logger.Info("image upgraded", "project", p.Name, "image", req.ImageName, "tag", req.Version)
	}
	return ImageUpgradeResult{
		Project:        p.Name,
		Type:           req.Type,
		ImageName:      req.ImageName,
		Version:        req.Version,
		DockerfilePath: path,
		Changed:        changed,
	}, nil
}
