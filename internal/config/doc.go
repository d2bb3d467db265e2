// Package config provides configuration management for the identity
// correlation engine: runtime defaults, validation, the YAML source
// inventory file, and tunable scoring weights.
package config
