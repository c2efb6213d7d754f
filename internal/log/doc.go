// Package log builds the slog loggers used by CipherGuard2.
//
// Every logger returned by this package wraps its output handler in a
// SecureHandler, which masks attribute values that look like key material
// or credentials before they are written:
//   - attributes whose key names a secret (passphrase, master_key, token, ...)
//   - PEM private key blocks and age secret keys
//   - bearer and basic authorization values
//
// Masking also applies in verbose mode, so debug output can be shared
// without leaking secrets.
//
// # Usage
//
//	logger := log.New(os.Stderr, verbose, log.FormatAuto)
//	slog.SetDefault(logger)
//
//	logger.Debug("unlocking keyring", "passphrase", p) // passphrase=***REDACTED***
package log
