// Package model defines the core data structures shared by the JobGuard client.
//
// This package contains the following main types:
//   - ScanSession: One click-to-result analysis cycle and its status
//   - ScanResult: The /predict response as sent by the JobGuard server
//   - Tier: The discrete risk classification derived from a result
//   - Identity: The operator identity and where it came from
//   - LogEntry: A server log line tagged with a display severity
//
// Models live in their own package so that the controller, renderer,
// reconciler and storage layers can share them without import cycles.
// All of them serialize to JSON for reports and local history.
package model
