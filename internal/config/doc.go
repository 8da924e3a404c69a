// Package config loads and merges repolens configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GITHUB_TOKEN, REPOLENS_PROVIDER, REPOLENS_MODEL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/repolens/config.yaml)
//  4. Built-in defaults
//
// The config file is YAML; an older config.json is still read. Token values
// may reference environment variables as ${NAME}.
package config
