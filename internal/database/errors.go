package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when the database file is
	// missing and creation was not requested.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrScanNotFound is returned when no scan matches an ID.
	ErrScanNotFound = errors.New("scan not found")

	// ErrAmbiguousScanID is returned when an ID prefix matches several scans.
	ErrAmbiguousScanID = errors.New("scan ID prefix is ambiguous")
)
