package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/thanhnhan2tn/package-updater/pkg/integrations/github"
	"github.com/thanhnhan2tn/package-updater/pkg/pm"
	"github.com/thanhnhan2tn/package-updater/pkg/scrape"
)

const (
	githubReleasesURL = "https://github.com/%[1]s/%[1]s/releases"
	releaseSelector   = "a.Link--primary"
)

var releasePattern = regexp.MustCompile(`v(\d+\.\d+\.\d+)`)

// scoped reports whether pkg is an "@scope/name" package, which has no
// <pkg>/<pkg> repository to guess.
func scoped(pkg string) bool { return strings.HasPrefix(pkg, "@") }

// GitHubStrategy scrapes the releases page of github.com/<pkg>/<pkg>.
type GitHubStrategy struct {
	fetcher scrape.Fetcher
	urlFmt  string
}

func NewGitHubStrategy(fetcher scrape.Fetcher) *GitHubStrategy {
	return &GitHubStrategy{fetcher: fetcher, urlFmt: githubReleasesURL}
}

func (s *GitHubStrategy) Name() string { return "github" }

func (s *GitHubStrategy) Resolve(ctx context.Context, pkg string) (string, error) {
	if scoped(pkg) {
		return "", ErrSkipped
	}
	url := fmt.Sprintf(s.urlFmt, pkg)
	texts, err := s.fetcher.Fetch(ctx, url, releaseSelector)
	if err != nil {
		return "", err
	}
	v, ok := scrape.Extract(texts, releasePattern)
	if !ok {
		return "", fmt.Errorf("%w: no release title on %s", scrape.ErrNoMatch, url)
	}
	return v, nil
}

// ReleaseFetcher is satisfied by *github.Client.
type ReleaseFetcher interface {
	LatestRelease(ctx context.Context, owner, repo string, refresh bool) (*github.Release, error)
}

// GitHubAPIStrategy reads the latest release of <pkg>/<pkg> from the API.
type GitHubAPIStrategy struct {
	client ReleaseFetcher
}

func NewGitHubAPIStrategy(client ReleaseFetcher) *GitHubAPIStrategy {
	return &GitHubAPIStrategy{client: client}
}

func (s *GitHubAPIStrategy) Name() string { return "github-api" }

func (s *GitHubAPIStrategy) Resolve(ctx context.Context, pkg string) (string, error) {
	if scoped(pkg) {
		return "", ErrSkipped
	}
	rel, err := s.client.LatestRelease(ctx, pkg, pkg, false)
	if err != nil {
		return "", err
	}
	v := rel.Version()
	if !pm.IsStrictVersion(v) {
		return "", fmt.Errorf("release tag %q is not a plain version", rel.TagName)
	}
	return v, nil
}
