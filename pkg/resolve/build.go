package resolve

import (
	"strings"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/pm"
	"github.com/thanhnhan2tn/package-updater/pkg/scrape"
)

// DefaultStrategies is the order used when none is configured.
var DefaultStrategies = []string{"cli", "custom", "github"}

// Sources holds the collaborators strategies are built from. Only the ones a
// configured strategy needs must be set.
type Sources struct {
	Manager  pm.Manager
	Runner   pm.Runner
	Fetcher  scrape.Fetcher
	Scrapers *Scrapers
	Registry PackageFetcher
	GitHub   ReleaseFetcher
}

// Build turns strategy names into strategies, in order.
func Build(names []string, src Sources) ([]Strategy, error) {
	if len(names) == 0 {
		names = DefaultStrategies
	}
	out := make([]Strategy, 0, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "cli":
			out = append(out, NewCLIStrategy(src.Manager, src.Runner))
		case "custom":
			if src.Fetcher == nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "strategy %q needs a scraper", name)
			}
			out = append(out, NewCustomStrategy(src.Scrapers, src.Fetcher))
		case "github":
			if src.Fetcher == nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "strategy %q needs a scraper", name)
			}
			out = append(out, NewGitHubStrategy(src.Fetcher))
		case "registry":
			if src.Registry == nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "strategy %q needs a registry client", name)
			}
			out = append(out, NewRegistryStrategy(src.Registry))
		case "github-api":
			if src.GitHub == nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "strategy %q needs a GitHub client", name)
			}
			out = append(out, NewGitHubAPIStrategy(src.GitHub))
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown resolution strategy %q", raw)
		}
	}
	return out, nil
}
