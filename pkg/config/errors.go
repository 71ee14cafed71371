package config

import "errors"

// Package-specific errors
var (
	// ErrDecodingConfig is returned when a YAML document cannot be decoded into a Machine
	ErrDecodingConfig = errors.New("failed to decode state machine config")

	// ErrParsingConfig is returned when environment variables cannot be parsed into a Machine
	ErrParsingConfig = errors.New("failed to parse environment variables into state machine config")

	// ErrLoadingEnvFile is returned when an existing .env file cannot be read
	ErrLoadingEnvFile = errors.New("failed to load env file")
)
