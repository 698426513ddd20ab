// Package config resolves the CLI configuration.
//
// The package merges YAML configuration files, a stored profile, environment
// variables (optionally seeded from a .env file) and CLI flags, then
// validates the result using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. The selected profile from ~/.apillon/config.yaml
//  4. Environment variables (APILLON_ prefix), including those read from .env
//  5. CLI flags
//
// # Usage
//
//	cfg, err := config.Load(nil, cmd.Flags(), config.WithProfile(profile))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with APILLON_ prefix:
//   - api.key → APILLON_API_KEY
//   - api.secret → APILLON_API_SECRET
//   - api.url → APILLON_API_URL
//   - debug → APILLON_DEBUG
//   - log.level → APILLON_LOG_LEVEL
package config
