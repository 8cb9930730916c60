// Package monitor tracks the input buffer and derives a settled status.
//
// Every text change puts the monitor into Typing ("RECEIVING DATA", blinking)
// and arms a single-shot debounce. When the debounce fires the monitor settles
// into Standby for a non-empty buffer or Idle for an empty one. Blur resolves
// the debounce immediately. The monitor never touches the network and has no
// failure modes.
//
// Monitor is a plain state machine keyed by a generation counter. Input
// returns an Arm carrying the new generation; the caller schedules a settle
// for it (the dashboard uses a tick message). Arming again supersedes the
// previous settle, which is ignored when it arrives, so one burst of input
// never produces two settles.
package monitor
