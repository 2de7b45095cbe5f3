// Package cli implements the pkgupdater command-line interface.
//
// # Commands
//
//   - serve: run the HTTP API the dashboard talks to
//   - projects: list configured projects, cloning or pulling remote ones
//   - deps: show dependencies with their latest versions
//   - upgrade: upgrade outdated dependencies, interactively or with --all
//   - docker: show base images; docker upgrade rewrites a FROM line
//   - cache: clear or locate the on-disk cache
//
// # Configuration
//
// Settings are read from ~/.pkgupdater/config.yaml, the file named by
// --config or PKGUP_CONFIG, and PKGUP_* environment variables.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli
