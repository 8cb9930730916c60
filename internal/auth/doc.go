// Package auth validates login and signup fields before they are sent to
// the server and formats the server's verdicts for display.
package auth
