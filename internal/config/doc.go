// Package config loads, normalizes, and validates captionchat settings.
//
// Defaults are applied first, then the TOML file, then environment variables
// such as OPENAI_API_KEY or CAPTIONCHAT_ADDR. Downstream code should read
// settings only through Config so paths are expanded and timeouts resolved.
package config
