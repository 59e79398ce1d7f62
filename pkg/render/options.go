package render

// RenderOptions carry per-call data renderers may use without touching the
// input.
type RenderOptions struct {
	// Errors are field messages keyed by field id, usually form.State.Errors.
	Errors map[string]string
	// Submission is an optional identifier shown alongside the summary.
	Submission string
	// Remaining is the session time left in seconds; negative hides it.
	Remaining int
}
