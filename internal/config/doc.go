// Package config loads and validates the Mnemosyne cache
// configuration from YAML files and MNEMOSYNE_* environment
// variables. Byte quantities are expressed as human-readable size
// strings ("256MB") and resolved through utils.ParseBytes.
package config
