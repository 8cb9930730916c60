// Package identity reconciles the locally cached operator identity with the
// session the server reports.
//
// Paint shows the cached name immediately. Reconcile then asks the server
// and overwrites both the cache and the display with whatever it says, so a
// stale cache heals itself on the next successful query. When the query
// fails the painted value stays.
//
// The admin operator additionally sees the system log panel; the first time
// the server confirms the admin session, the server's log lines are fetched
// once into the shared log stream.
package identity
