// Package config loads and validates Medbox Core configuration.
//
// Configuration is read from a YAML file, with hardcoded defaults for
// anything the file omits and MEDBOX_* environment variable overrides
// applied last. Secrets (JWT signing key, broker credentials, InfluxDB
// token) should come from the environment rather than the file.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//
// Validation runs as part of Load; a Config obtained from Load is safe
// to hand to the rest of the application without further checks.
package config
