// Package config loads the geosync pipeline configuration.
//
// Non-secret tunables come from environment variables, command-line flags,
// an optional JSON file and built-in defaults, merged in that priority
// order. Credentials come from a separate mounted JSON bundle resolved via
// [Config].SecretsPath.
package config
