// Package dashboard is the interactive terminal console: a posting input
// watched by the buffer monitor, a scan trigger driven by the session
// controller, the verdict panel with its animated meter, and the admin-only
// live log panel.
//
// All timers are bubbletea ticks that carry a generation number; a tick
// whose generation is no longer current is dropped when it arrives.
package dashboard
