// Package stepper drives a multi-step form: forward navigation is gated on
// the current step validating, backward navigation is free, and submission
// happens once from the last step. Timed schemas add a session countdown that
// must be started first and freezes everything once it expires.
package stepper
