// Package pkg holds the libraries behind pkgupdater.
//
// The data flow for a dependency listing:
//
//	config (settings + project list)
//	     ↓
//	project (clone/pull remote checkouts)
//	     ↓
//	manifest (read package.json)    docker (parse Dockerfile FROM)
//	     ↓                               ↓
//	resolve (strategy chain)        docker.Resolver (Docker Hub tags)
//	     ↓                               ↓
//	updater (outdated check, upgrades, image rewrites)
//
// Supporting packages: [cache] backends, [integrations] registry clients,
// [scrape] HTML fetchers, [pm] package manager commands, [fsutil] atomic
// writes and per-file locks, [observability] hooks, [errors] coded errors.
package pkg
