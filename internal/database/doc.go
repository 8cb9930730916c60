// Package database provides the local SQLite store for JobGuard.
//
// The store keeps three things:
//   - the cached identity (one row), read optimistically at startup and
//     overwritten by every reconciliation
//   - the server session cookie (one row)
//   - the history of finished scans, with a SHA3 fingerprint of each text
//
// modernc.org/sqlite is CGO-free, so the binary cross-compiles.
package database
