// Package config loads client configuration from YAML files,
// .env files and environment variables.
package config
