// Package config loads and validates the sup2srt TOML configuration.
package config
