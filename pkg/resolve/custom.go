package resolve

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/scrape"
)

// Scraper describes where a package publishes its version.
type Scraper struct {
	URL      string `toml:"url"`
	Selector string `toml:"selector"`
	Regex    string `toml:"regex"`

	pattern *regexp.Regexp
}

// Scrapers maps package names to their scrape recipe.
type Scrapers struct {
	byName map[string]Scraper
}

type scrapersFile struct {
	Packages map[string]Scraper `toml:"packages"`
}

// LoadScrapers reads a TOML file of the form
//
//	[packages."some-lib"]
//	url = "https://example.com/changelog"
//	selector = "h2.release"
//	regex = 'v(\d+\.\d+\.\d+)'
//
// An empty path yields an empty registry.
func LoadScrapers(path string) (*Scrapers, error) {
	if path == "" {
		return NewScrapers(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scrapers file %s", path)
		}
		return nil, err
	}
	return ParseScrapers(string(data))
}

// ParseScrapers decodes TOML scraper definitions.
func ParseScrapers(data string) (*Scrapers, error) {
	var f scrapersFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse scrapers")
	}
	return NewScrapers(f.Packages)
}

// NewScrapers validates and compiles a set of scraper definitions.
func NewScrapers(defs map[string]Scraper) (*Scrapers, error) {
	s := &Scrapers{byName: make(map[string]Scraper, len(defs))}
	for name, d := range defs {
		if d.URL == "" || d.Selector == "" || d.Regex == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "scraper %q needs url, selector and regex", name)
		}
		if err := errors.ValidateURL(d.URL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "scraper %q", name)
		}
		re, err := regexp.Compile(d.Regex)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "scraper %q regex", name)
		}
		d.pattern = re
		s.byName[name] = d
	}
	return s, nil
}

// Lookup returns the scraper for pkg.
func (s *Scrapers) Lookup(pkg string) (Scraper, bool) {
	if s == nil {
		return Scraper{}, false
	}
	d, ok := s.byName[pkg]
	return d, ok
}

// Names lists configured packages in sorted order.
func (s *Scrapers) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CustomStrategy scrapes a per-package page configured in Scrapers.
type CustomStrategy struct {
	scrapers *Scrapers
	fetcher  scrape.Fetcher
}

func NewCustomStrategy(scrapers *Scrapers, fetcher scrape.Fetcher) *CustomStrategy {
	return &CustomStrategy{scrapers: scrapers, fetcher: fetcher}
}

func (s *CustomStrategy) Name() string { return "custom" }

func (s *CustomStrategy) Resolve(ctx context.Context, pkg string) (string, error) {
	d, ok := s.scrapers.Lookup(pkg)
	if !ok {
		return "", ErrSkipped
	}
	texts, err := s.fetcher.Fetch(ctx, d.URL, d.Selector)
	if err != nil {
		return "", err
	}
	v, ok := scrape.Extract(texts, d.pattern)
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", scrape.ErrNoMatch, d.Regex, d.URL)
	}
	return v, nil
}
