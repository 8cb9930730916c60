// Package logstream turns server-supplied log lines into display entries.
//
// Severity is derived from fixed substring tags:
//
//	[ERROR], BLOCK      -> Critical
//	[WARN]              -> Warning
//	[SUCCESS], [INIT]   -> Success
//	[AI]                -> Info
//	anything else       -> Default
//
// The server already orders the lines for display (newest first), so a
// Stream never re-sorts; it only replaces its contents wholesale, exactly
// as received.
package logstream
