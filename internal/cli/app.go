package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/thanhnhan2tn/package-updater/pkg/cache"
	"github.com/thanhnhan2tn/package-updater/pkg/config"
	"github.com/thanhnhan2tn/package-updater/pkg/docker"
	"github.com/thanhnhan2tn/package-updater/pkg/integrations/dockerhub"
	"github.com/thanhnhan2tn/package-updater/pkg/integrations/github"
	"github.com/thanhnhan2tn/package-updater/pkg/integrations/npm"
	"github.com/thanhnhan2tn/package-updater/pkg/pm"
	"github.com/thanhnhan2tn/package-updater/pkg/project"
	"github.com/thanhnhan2tn/package-updater/pkg/resolve"
	"github.com/thanhnhan2tn/package-updater/pkg/scrape"
	"github.com/thanhnhan2tn/package-updater/pkg/updater"
)

// cacheMode selects the backend used when no Redis URL is configured.
type cacheMode int

const (
	cacheFile   cacheMode = iota // one-shot commands share results across runs
	cacheMemory                  // the server keeps results in process
)

// app is the wired service graph for one command invocation.
type app struct {
	cfg     *config.Config
	svc     *updater.Service
	backend cache.Cache
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// newApp builds the updater service from the loaded configuration.
func (c *CLI) newApp(ctx context.Context, mode cacheMode) (*app, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	backend, err := newBackend(ctx, cfg, mode, c.Logger)
	if err != nil {
		return nil, err
	}
	a.backend = backend
	a.closers = append(a.closers, backend.Close)

	manager, err := pm.Parse(cfg.PackageManager)
	if err != nil {
		a.Close()
		return nil, err
	}

	scrapers, err := resolve.LoadScrapers(cfg.ScrapersFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	var fetcher scrape.Fetcher = scrape.NewHTTPFetcher()
	if cfg.Resolver.Browser {
		bf := scrape.NewBrowserFetcher()
		a.closers = append(a.closers, bf.Close)
		fetcher = bf
	}

	runner := pm.ExecRunner{}
	strategies, err := resolve.Build(cfg.Resolver.Strategies, resolve.Sources{
		Manager:  manager,
		Runner:   runner,
		Fetcher:  fetcher,
		Scrapers: scrapers,
		Registry: npm.NewClient(backend, cfg.Cache.RegistryTTL),
		GitHub:   github.NewClient(backend, cfg.GitHub.Token, cfg.Cache.RegistryTTL),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	chain := resolve.NewChain(c.Logger, cfg.Resolver.Timeout, strategies...).
		WithCache(backend, cfg.Cache.RegistryTTL)
	c.Logger.Debug("resolver ready", "strategies", chain.Names(), "timeout", cfg.Resolver.Timeout)

	images := docker.NewResolver(
		dockerhub.NewClient(backend, cfg.Cache.TagTTL),
		docker.NewTagCache(backend, cfg.Cache.TagTTL),
		c.Logger,
	)

	a.svc = updater.New(updater.Options{
		Projects: func() ([]project.Project, error) {
			return config.LoadProjects(cfg.ProjectsFile, cfg.WorkDir)
		},
		Syncer:         project.NewSyncer(cfg.Git.CloneTimeout, nil, c.Logger),
		Versions:       chain,
		Images:         images,
		Runner:         runner,
		PackageManager: manager,
		Concurrency:    cfg.Resolver.Concurrency,
		Logger:         c.Logger,
	})
	return a, nil
}

func newBackend(ctx context.Context, cfg *config.Config, mode cacheMode, logger *log.Logger) (cache.Cache, error) {
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, appName+":")
		if err != nil {
			return nil, err
		}
		logger.Debug("using redis cache")
		return rc, nil
	}
	if mode == cacheMemory {
		return cache.NewMemoryCache(), nil
	}
	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		logger.Warn("file cache unavailable, continuing without cache", "dir", cfg.Cache.Dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}
