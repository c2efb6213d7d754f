// Package config holds the runtime configuration of CipherGuard2.
//
// Configuration comes from built-in defaults, optionally overridden by a
// YAML file. The verbose switch is deliberately absent: it only ever comes
// from the command line.
package config
