// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including server settings, backend URLs, strategy selection, health check
// probe tuning, and supports live reload of the config file.
package config
