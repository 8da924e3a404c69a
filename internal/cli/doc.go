// Package cli wires together the Cobra command tree for the repolens binary.
//
// It defines the root command and its subcommands (review, serve, config,
// models, version), layers flags over the loaded configuration, assembles
// the review pipeline in a dig container, and maps failures to exit codes.
package cli
