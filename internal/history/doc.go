// Package history records CipherGuard2 sessions in a SQLite database.
//
// Each invocation of the program is one session: when it started, whether
// it ran verbosely, when it finished and how. The store lives in a single
// file, cipherguard2.db, inside the configured data directory.
//
// SQLite is provided by modernc.org/sqlite, which needs no CGO.
package history
