// Package session runs scan submissions.
//
// Controller.Submit validates the text, takes the single submission slot,
// calls the server and, on success, runs the post-response pipeline (logs,
// classify, render, record). While the slot is held the trigger is
// disabled and a second Submit is rejected rather than queued. Every
// outcome releases the slot; nothing is retried automatically.
package session
