// Package client talks to a JobGuard server.
//
// Client wraps the server's JSON endpoints (/predict, /api/user_info,
// /api/system_logs and the auth routes). The server authenticates with a
// session cookie: the client keeps it in a SessionStore and a wrapping
// RoundTripper injects it into every request and captures refreshed
// Set-Cookie values from every response.
//
// Requests can optionally be routed through a SOCKS5 proxy, or through an
// embedded Tor daemon started with tornago, for users who do not want the
// scan service to see their address.
package client
