// Package config loads cadence's TOML configuration.
//
// # Resolution
//
// Load follows this order:
//
//  1. A .env file in the working directory is loaded into the environment (if present)
//  2. The config file at the given path, or ~/.config/cadence/config.toml
//  3. CADENCE_* environment variables override file values
//  4. Empty or missing fields fall back to defaults
//
// A missing config file is not an error.
//
// # Fields
//
//	api_base = "127.0.0.1:3000"        # music API host:port or URL
//	poll_interval_ms = 1500            # delay between status checks
//	login_timeout_seconds = 180        # 0 disables the local deadline
//	request_timeout_seconds = 10
//	credential_path = "~/.config/cadence/credential.toml"
//	log_file = "~/.local/state/cadence/cadence.log"
//	log_level = "info"
//	theme = "Nightfox"
//
// Environment overrides: CADENCE_API_BASE, CADENCE_POLL_INTERVAL_MS,
// CADENCE_LOGIN_TIMEOUT_SECONDS, CADENCE_LOG_FILE, CADENCE_LOG_LEVEL.
// Malformed numeric overrides are ignored.
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files and
// TOML parse errors ("parse config: ...").
package config
