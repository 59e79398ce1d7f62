package tui

import (
	"io"

	"github.com/goliatone/go-formstep/pkg/render"
)

// Navigation labels shown after each step.
const (
	ActionContinue = "Continuar"
	ActionBack     = "Atrás"
	ActionSubmit   = "Enviar"
)

// Theme holds message prefixes the renderer applies when printing.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sets where the default driver prints messages.
func WithOutput(out io.Writer) Option {
	return func(r *Renderer) {
		r.out = out
	}
}

// WithSummary prints the renderer's output and asks for confirmation before
// submitting.
func WithSummary(summary render.Renderer) Option {
	return func(r *Renderer) {
		r.summary = summary
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
