// Package config loads application settings and the project list.
//
// Settings come from, in increasing precedence: built-in defaults, the YAML
// config file (~/.pkgupdater/config.yaml, PKGUP_CONFIG or --config), and
// PKGUP_* environment variables (PKGUP_SERVER_ADDR for server.addr).
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the application configuration.
type Config struct {
	// ProjectsFile is the JSON project list, re-read on every request.
	ProjectsFile string `mapstructure:"projectsFile"`

	// WorkDir holds checkouts of remote projects without an explicit path.
	WorkDir string `mapstructure:"workDir"`

	// PackageManager is used when a project does not name one.
	PackageManager string `mapstructure:"packageManager"`

	// ScrapersFile is an optional TOML file of per-package scrape recipes.
	ScrapersFile string `mapstructure:"scrapersFile"`

	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Git      GitConfig      `mapstructure:"git"`
	GitHub   GitHubConfig   `mapstructure:"github"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type CacheConfig struct {
	// TagTTL is how long a Docker tag lookup is trusted.
	TagTTL time.Duration `mapstructure:"tagTTL"`

	// RegistryTTL applies to registry API responses and resolved versions.
	RegistryTTL time.Duration `mapstructure:"registryTTL"`

	// RedisURL switches the shared cache from memory to Redis.
	RedisURL string `mapstructure:"redisURL"`

	// Dir is the on-disk cache used by the CLI.
	Dir string `mapstructure:"dir"`
}

type ResolverConfig struct {
	Strategies  []string      `mapstructure:"strategies"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`

	// Browser renders scraped pages in headless Chrome instead of parsing
	// the static HTML.
	Browser bool `mapstructure:"browser"`
}

type GitConfig struct {
	CloneTimeout time.Duration `mapstructure:"cloneTimeout"`
}

type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

// Paths contains standard filesystem paths.
type Paths struct {
	HomeDir    string
	ConfigFile string
	CacheDir   string
}

// DefaultPaths returns ~/.pkgupdater based paths.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	home := filepath.Join(homeDir, ".pkgupdater")
	return &Paths{
		HomeDir:    home,
		ConfigFile: filepath.Join(home, "config.yaml"),
		CacheDir:   filepath.Join(home, "cache"),
	}, nil
}

// GetConfigFile returns the config file path. PKGUP_CONFIG takes precedence.
func GetConfigFile() (string, error) {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p, nil
	}
	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
