package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/fsutil"
	"github.com/thanhnhan2tn/package-updater/pkg/pm"
)

const sample = `{
  "name": "web",
  "version": "1.0.0",
  "scripts": { "build": "vite build" },
  "dependencies": {
    "react": "17.0.0",
    "@types/node": "^20.0.0",
    "lodash.merge": "~4.6.0",
    "x": "^1.2.3"
  },
  "devDependencies": {
    "vite": "^5.0.0"
  }
}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "frontend")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFileT(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRead(t *testing.T) {
	entries, err := Read(writeManifest(t, sample))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "react", Version: "17.0.0"},
		{Name: "@types/node", Version: "^20.0.0"},
		{Name: "lodash.merge", Version: "~4.6.0"},
		{Name: "x", Version: "^1.2.3"},
		{Name: "vite", Version: "^5.0.0", Dev: true},
	}, entries)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "package.json"))
	assert.True(t, perrors.IsNotFound(err))

	_, err = Read(writeManifest(t, `{"dependencies": {`))
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidManifest))
}

func TestReadNoDependencies(t *testing.T) {
	entries, err := Read(writeManifest(t, `{"name":"empty"}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		version string
		section string
		want    string
	}{
		{"dependency", "react", "18.0.0", SectionDependencies, `"react": "^18.0.0"`},
		{"scoped", "@types/node", "20.11.5", SectionDependencies, `"@types/node": "^20.11.5"`},
		{"dotted", "lodash.merge", "4.6.2", SectionDependencies, `"lodash.merge": "^4.6.2"`},
		{"dev dependency", "vite", "5.1.4", SectionDevDependencies, `"vite": "^5.1.4"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, sample)
			ch, err := SetVersion(path, tt.pkg, tt.version)
			require.NoError(t, err)
			assert.True(t, ch.Changed)
			assert.Equal(t, tt.section, ch.Section)

			got := readFileT(t, path)
			assert.Contains(t, got, tt.want)

			entries, err := Read(path)
			require.NoError(t, err)
			assert.Len(t, entries, 5, "no entries added or lost")
		})
	}
}

func TestSetVersionPreservesLayout(t *testing.T) {
	path := writeManifest(t, sample)
	_, err := SetVersion(path, "react", "18.0.0")
	require.NoError(t, err)

	want := strings.Replace(sample, `"react": "17.0.0"`, `"react": "^18.0.0"`, 1)
	assert.Equal(t, want, readFileT(t, path))
}

func TestSetVersionIdempotent(t *testing.T) {
	path := writeManifest(t, sample)
	before, err := os.Stat(path)
	require.NoError(t, err)

	ch, err := SetVersion(path, "x", "1.2.3")
	require.NoError(t, err)
	assert.False(t, ch.Changed)
	assert.Equal(t, "^1.2.3", ch.From)
	assert.Equal(t, sample, readFileT(t, path))

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestSetVersionMissingPackage(t *testing.T) {
	path := writeManifest(t, sample)
	_, err := SetVersion(path, "left-pad", "1.3.0")
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrCodePackageNotFound))
	assert.Equal(t, sample, readFileT(t, path))
}

func TestSetVersionInvalidInput(t *testing.T) {
	path := writeManifest(t, sample)
	_, err := SetVersion(path, "react", "")
	assert.True(t, perrors.IsInvalid(err))
	assert.Equal(t, sample, readFileT(t, path))
}

func TestRange(t *testing.T) {
	assert.Equal(t, "^18.0.0", Range("18.0.0"))
	assert.Equal(t, "^18.0.0", Range("^18.0.0"))
	assert.Equal(t, "^18.0.0", Range("v18.0.0"))
}

type call struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []call
	err   error
	delay time.Duration
}

func (r *fakeRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{dir, name, args})
	return nil, r.err
}

func TestUpgradeEndToEnd(t *testing.T) {
	path := writeManifest(t, sample)
	runner := &fakeRunner{}
	u := NewUpgrader(nil, runner, nil)

	ch, err := u.Upgrade(context.Background(), path, "react", "18.0.0", pm.NPM)
	require.NoError(t, err)
	assert.True(t, ch.Changed)
	assert.Equal(t, "17.0.0", ch.From)

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "^18.0.0", entries[0].Version)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, filepath.Dir(path), runner.calls[0].dir)
	assert.Equal(t, "npm", runner.calls[0].name)
	assert.Equal(t, []string{"install", "--package-lock-only"}, runner.calls[0].args)
}

func TestUpgradeYarn(t *testing.T) {
	path := writeManifest(t, sample)
	runner := &fakeRunner{}
	_, err := NewUpgrader(nil, runner, nil).Upgrade(context.Background(), path, "vite", "5.1.0", pm.Yarn)
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "yarn", runner.calls[0].name)
	assert.Equal(t, []string{"install"}, runner.calls[0].args)
}

func TestUpgradeNoopSkipsInstall(t *testing.T) {
	path := writeManifest(t, sample)
	runner := &fakeRunner{}

	ch, err := NewUpgrader(nil, runner, nil).Upgrade(context.Background(), path, "x", "1.2.3", pm.NPM)
	require.NoError(t, err)
	assert.False(t, ch.Changed)
	assert.Empty(t, runner.calls)
	assert.Equal(t, sample, readFileT(t, path))
}

func TestUpgradeExactVersionNoop(t *testing.T) {
	const exact = `{
  "dependencies": {
    "x": "1.2.3",
    "y": "~2.0.1"
  }
}
`
	path := writeManifest(t, exact)
	runner := &fakeRunner{}
	u := NewUpgrader(nil, runner, nil)

	ch, err := u.Upgrade(context.Background(), path, "x", "1.2.3", pm.NPM)
	require.NoError(t, err)
	assert.False(t, ch.Changed)
	assert.Equal(t, "1.2.3", ch.From)
	assert.Equal(t, "1.2.3", ch.To)

	ch, err = u.Upgrade(context.Background(), path, "y", "2.0.1", pm.NPM)
	require.NoError(t, err)
	assert.False(t, ch.Changed)

	assert.Empty(t, runner.calls)
	assert.Equal(t, exact, readFileT(t, path))
}

func TestUpgradeMissingPackage(t *testing.T) {
	path := writeManifest(t, sample)
	runner := &fakeRunner{}

	_, err := NewUpgrader(nil, runner, nil).Upgrade(context.Background(), path, "left-pad", "1.3.0", pm.NPM)
	assert.True(t, perrors.IsNotFound(err))
	assert.Empty(t, runner.calls)
	assert.Equal(t, sample, readFileT(t, path))
}

func TestUpgradeRestoresOnInstallFailure(t *testing.T) {
	path := writeManifest(t, sample)
	runner := &fakeRunner{err: errors.New("ERESOLVE unable to resolve dependency tree")}

	_, err := NewUpgrader(nil, runner, nil).Upgrade(context.Background(), path, "react", "18.0.0", pm.NPM)
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInstallFailed))
	assert.Len(t, runner.calls, 1)
	assert.Equal(t, sample, readFileT(t, path))
}

func TestUpgradeConcurrentKeepsBothEdits(t *testing.T) {
	path := writeManifest(t, sample)
	runner := &fakeRunner{delay: 5 * time.Millisecond}
	u := NewUpgrader(fsutil.NewLocker(), runner, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, job := range [][2]string{{"react", "18.0.0"}, {"vite", "5.1.0"}} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = u.Upgrade(context.Background(), path, job[0], job[1], pm.NPM)
		}()
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	got := readFileT(t, path)
	assert.Contains(t, got, `"react": "^18.0.0"`)
	assert.Contains(t, got, `"vite": "^5.1.0"`)
	assert.Len(t, runner.calls, 2)
}

func TestEscapeKey(t *testing.T) {
	tests := map[string]string{
		"react":        "react",
		"lodash.merge": `lodash\.merge`,
		"@types/node":  `\@types/node`,
	}
	for in, want := range tests {
		assert.Equal(t, want, escapeKey(in), fmt.Sprintf("escapeKey(%q)", in))
	}
}
