package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
)

func TestLoaderDefaults(t *testing.T) {
	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "projects.json", cfg.ProjectsFile)
	assert.Equal(t, "./repos", cfg.WorkDir)
	assert.Equal(t, "npm", cfg.PackageManager)
	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 60*time.Second, cfg.Cache.TagTTL)
	assert.Equal(t, time.Hour, cfg.Cache.RegistryTTL)
	assert.Equal(t, []string{"cli", "custom", "github"}, cfg.Resolver.Strategies)
	assert.Equal(t, 20*time.Second, cfg.Resolver.Timeout)
	assert.Equal(t, 8, cfg.Resolver.Concurrency)
	assert.False(t, cfg.Resolver.Browser)
	assert.Equal(t, 2*time.Minute, cfg.Git.CloneTimeout)
	assert.NotEmpty(t, cfg.Cache.Dir)
}

func TestLoaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
projectsFile: /etc/pkgupdater/projects.json
packageManager: yarn
server:
  addr: ":8080"
  allowedOrigins: ["https://dash.example.com"]
cache:
  tagTTL: 5m
  redisURL: redis://localhost:6379/0
resolver:
  strategies: [registry, cli]
  concurrency: 2
  browser: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/pkgupdater/projects.json", cfg.ProjectsFile)
	assert.Equal(t, "yarn", cfg.PackageManager)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TagTTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
	assert.Equal(t, []string{"registry", "cli"}, cfg.Resolver.Strategies)
	assert.Equal(t, 2, cfg.Resolver.Concurrency)
	assert.True(t, cfg.Resolver.Browser)
}

func TestLoaderEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":8080\"\n"), 0o644))

	t.Setenv("PKGUP_SERVER_ADDR", ":9090")
	t.Setenv("PKGUP_GITHUB_TOKEN", "ghp_test")

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "ghp_test", cfg.GitHub.Token)
}

func TestLoaderInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("packageManager: pnpm\n"), 0o644))

	_, err := NewLoader().Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed\n"), 0o644))
	_, err = NewLoader().Load(path)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/repos")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "repos"), got)

	got, err = ExpandPath("./repos")
	require.NoError(t, err)
	assert.Equal(t, "./repos", got)
}

func TestParseProjects(t *testing.T) {
	data := []byte(`{"projects": [
	  {"name": "shop", "path": "shop", "frontend": "web/package.json", "serverDockerfile": "api/Dockerfile"},
	  {"name": "blog", "remoteUrl": "git@github.com:acme/blog.git", "packageManager": "yarn"},
	  {"id": "abs", "name": "abs", "path": "/srv/abs"}
	]}`)

	list, err := ParseProjects(data, "/etc/pkgupdater", "/var/repos")
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "shop", list[0].ID)
	assert.Equal(t, "/etc/pkgupdater/shop", list[0].Path)
	assert.Equal(t, "/etc/pkgupdater/shop/web/package.json", list[0].Manifest("frontend"))

	assert.Equal(t, "/var/repos/blog", list[1].Path)
	assert.True(t, list[1].Remote())
	assert.Equal(t, "yarn", list[1].PackageManager)

	assert.Equal(t, "/srv/abs", list[2].Path)
}

func TestParseProjectsBareArray(t *testing.T) {
	list, err := ParseProjects([]byte(` [{"name": "a", "path": "/a"}]`), "/", "/w")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Name)
}

func TestParseProjectsInvalid(t *testing.T) {
	tests := map[string]string{
		"malformed":       `{"projects": [`,
		"missing name":    `[{"path": "/a"}]`,
		"no path":         `[{"name": "a"}]`,
		"duplicate":       `[{"name": "a", "path": "/a"}, {"name": "a", "path": "/b"}]`,
		"bad manager":     `[{"name": "a", "path": "/a", "packageManager": "pnpm"}]`,
		"escaping path":   `[{"name": "a", "path": "/a", "frontend": "../../etc/passwd"}]`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseProjects([]byte(data), "/", "/w")
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err), "got %v", err)
		})
	}
}

func TestLoadProjectsMissingFile(t *testing.T) {
	_, err := LoadProjects(filepath.Join(t.TempDir(), "projects.json"), "/w")
	assert.True(t, errors.IsNotFound(err))
}
