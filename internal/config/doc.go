// Package config loads, normalizes, and validates the TOML configuration.
//
// A Config value is constructed once at startup (Load or Default) and passed
// by reference into the scheduler, resource monitor, and chunking engine.
// Paths are expanded (~ and relative forms) during normalization so the rest
// of the codebase only sees absolute paths. Validation rejects unknown model
// tiers, chunking strategies, and output formats up front rather than at the
// point of use.
package config
