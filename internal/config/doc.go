// Package config loads, normalizes, and validates slate's own configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SLATE_PROJECT_ROOT and SLATE_USER. The Config type centralizes every knob
// the CLI and library need: project roots, the current artist name, document
// format, version padding, and lock timing.
//
// This is the tool's configuration only. Pipeline documents (the project's
// template table, custom locations, version sidecars) are stored through
// internal/confstore in the project itself.
package config
