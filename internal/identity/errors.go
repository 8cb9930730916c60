package identity

import "errors"

// ErrQueryFailed is returned by Reconcile when the server could not be asked.
// The painted identity is kept.
var ErrQueryFailed = errors.New("identity query failed")
