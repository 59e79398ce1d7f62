// Package session implements the countdown used by forms that declare a
// custom session duration. The lifecycle is a small state machine
// (not-started, running, paused, expired) and ticking runs as a cancellable
// background task so a paused, reset or closed timer never leaks ticks.
package session
