// Package config loads runtime configuration for the foodduck CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the account API
//	-timeout    per-request timeout, e.g. "10s"
//
// JSON keys are "server_url" and "request_timeout"; the timeout accepts
// strings like "10s" or integer nanoseconds.
package config
