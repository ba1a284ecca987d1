// Package config loads, normalizes, and validates tutorsync configuration
// from TOML files with sane defaults for every value.
package config
