// Package config loads state machine options from YAML documents and from the
// environment.
//
// It wraps `gopkg.in/yaml.v3`, `github.com/joho/godotenv` and
// `github.com/caarlos0/env/v11` so that machine settings can live next to the
// rest of an application's configuration instead of being hard-coded at the
// call to statechart.New.
//
// # Usage
//
// Decode a YAML document:
//
//	cfg, err := config.Decode(strings.NewReader(`
//	name: Traffic light SM
//	memory: false
//	message_not_exist: warn
//	trace: debug
//	`))
//
// Or read the environment, optionally seeded from `.env` files:
//
//	// LIGHT_NAME=Traffic light SM
//	// LIGHT_TRACE=none
//	cfg, err := config.FromEnv("LIGHT_", ".env")
//
// Every field is optional. Only the fields that were set turn into options, so
// a configuration can be layered over code defaults:
//
//	cfg = config.Merge(fileCfg, envCfg)
//	sm, err := statechart.New(obj, states, append(cfg.Options(), statechart.WithLogger(logger))...)
//
// # Error Handling
//
// Decoding failures wrap ErrDecodingConfig and environment failures wrap
// ErrParsingConfig, so callers can tell them apart with errors.Is.
package config
