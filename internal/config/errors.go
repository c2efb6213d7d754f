package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	// ErrInvalidLogFormat is returned when log_format is not text, json or auto.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text, json or auto")

	// ErrInvalidHistoryLimit is returned when history_limit is negative.
	// Zero keeps every session.
	ErrInvalidHistoryLimit = errors.New("invalid history limit: must be non-negative")

	// ErrEmptyDataDir is returned when history is enabled without a data directory.
	ErrEmptyDataDir = errors.New("empty data directory: history needs a place to live")
)

// ErrConfigNotFound is returned when a configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
