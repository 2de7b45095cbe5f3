package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thanhnhan2tn/package-updater/pkg/docker"
	"github.com/thanhnhan2tn/package-updater/pkg/pm"
	"github.com/thanhnhan2tn/package-updater/pkg/project"
	"github.com/thanhnhan2tn/package-updater/pkg/resolve"
)

// Environment variable prefix.
const envPrefix = "PKGUP"

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment bindings.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("github.token", "PKGUP_GITHUB_TOKEN", "GITHUB_TOKEN")

	setDefaults(v)
	return &Loader{v: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("projectsFile", "projects.json")
	v.SetDefault("workDir", "./repos")
	v.SetDefault("packageManager", string(pm.Default))
	v.SetDefault("scrapersFile", "")
	v.SetDefault("server.addr", ":3001")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("cache.tagTTL", docker.DefaultTagTTL)
	v.SetDefault("cache.registryTTL", "1h")
	v.SetDefault("cache.redisURL", "")
	v.SetDefault("cache.dir", "")
	v.SetDefault("resolver.strategies", resolve.DefaultStrategies)
	v.SetDefault("resolver.timeout", resolve.DefaultTimeout)
	v.SetDefault("resolver.concurrency", 8)
	v.SetDefault("resolver.browser", false)
	v.SetDefault("git.cloneTimeout", project.DefaultCloneTimeout)
	v.SetDefault("github.token", "")
}

// Load reads configFile (or the default location when empty). A missing file
// is not an error. Environment variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(expandedPath)
	if filepath.Ext(expandedPath) == "" {
		l.v.SetConfigType("yaml")
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed returns the file the last Load read, if any.
func (l *Loader) ConfigFileUsed() string { return l.v.ConfigFileUsed() }

func (c *Config) finish() error {
	if _, err := pm.Parse(c.PackageManager); err != nil {
		return err
	}
	if c.Resolver.Concurrency < 1 {
		c.Resolver.Concurrency = 1
	}
	if c.Cache.Dir == "" {
		paths, err := DefaultPaths()
		if err != nil {
			return err
		}
		c.Cache.Dir = paths.CacheDir
	}
	for _, p := range []*string{&c.ProjectsFile, &c.WorkDir, &c.ScrapersFile, &c.Cache.Dir} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}
