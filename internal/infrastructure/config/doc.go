// Package config handles loading and validating Glowbridge Core
// configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The devices section is the declarative source of truth for which
// HTTP lights exist; the accessory registry reconciles itself against
// it on startup. Individual device entries are deliberately NOT
// validated here — an entry missing its required URLs is skipped by
// the reconciler rather than failing the whole configuration.
//
// Security Considerations:
//   - Sensitive values (tokens) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(cfg.Devices))
package config
