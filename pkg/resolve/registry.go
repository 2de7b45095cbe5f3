package resolve

import (
	"context"

	"github.com/thanhnhan2tn/package-updater/pkg/integrations/npm"
)

// PackageFetcher is satisfied by *npm.Client.
type PackageFetcher interface {
	FetchPackage(ctx context.Context, pkg string, refresh bool) (*npm.PackageInfo, error)
}

// RegistryStrategy reads dist-tags.latest from the npm registry.
type RegistryStrategy struct {
	client PackageFetcher
}

func NewRegistryStrategy(client PackageFetcher) *RegistryStrategy {
	return &RegistryStrategy{client: client}
}

func (s *RegistryStrategy) Name() string { return "registry" }

func (s *RegistryStrategy) Resolve(ctx context.Context, pkg string) (string, error) {
	info, err := s.client.FetchPackage(ctx, pkg, false)
	if err != nil {
		return "", err
	}
	return info.Version, nil
}
