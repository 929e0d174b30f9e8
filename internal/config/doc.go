// Package config loads, normalizes, and validates depotkit's TOML
// configuration.
package config
