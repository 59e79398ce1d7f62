package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (Ctrl+C or declining to start).
	ErrAborted = errors.New("tui: aborted")
	// ErrSessionExpired is returned when the countdown ends while filling.
	ErrSessionExpired = errors.New("tui: session expired")
)
