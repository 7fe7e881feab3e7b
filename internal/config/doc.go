// Package config loads, normalizes, and validates liftlog configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LLM_API_KEY. The Config type centralizes every knob the daemon and CLI need:
// catalog file locations, oracle connection settings, upload limits, and log
// routing are all discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
