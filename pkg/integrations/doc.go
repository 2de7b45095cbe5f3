// Package integrations provides HTTP clients for the registries the version
// resolvers talk to.
//
// # Overview
//
// Each registry has its own subpackage:
//
//   - [npm]: npm registry (dist-tags.latest)
//   - [dockerhub]: Docker Hub tag listing
//   - [github]: GitHub releases API
//
// # Client Pattern
//
// All registry clients embed [Client] and follow the same shape:
//
//	client := npm.NewClient(backend, time.Hour)
//	info, err := client.FetchPackage(ctx, "react", false) // false = use cache
//
// Clients handle:
//   - HTTP requests with retry for 5xx/429 and network errors
//   - Response caching through any [cache.Cache] backend
//   - Mapping 404 to [ErrNotFound]
//
// Request, response and cache events are reported through the
// observability hooks, which the server wires to Prometheus.
package integrations
