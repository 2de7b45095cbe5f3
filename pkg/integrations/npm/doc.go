// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches the latest published version of a package from the
// npm registry (https://registry.npmjs.org). It backs the "registry"
// version-resolution strategy.
//
// # Usage
//
//	client := npm.NewClient(cache.NewMemoryCache(), time.Hour)
//	info, err := client.FetchPackage(ctx, "react", false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(info.Name, info.Version)
//
// # Version Selection
//
// The client reports the version tagged as "latest" in dist-tags, which is
// what `npm view <pkg> version` prints.
//
// # Caching
//
// Responses are cached in the configured backend. Pass refresh=true to
// bypass the cache.
package npm
