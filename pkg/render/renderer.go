package render

import (
	"context"

	"github.com/goliatone/go-formstep/pkg/form"
	"github.com/goliatone/go-formstep/pkg/schema"
)

// Input is a filled (or partially filled) form.
type Input struct {
	Schema schema.FormSchema
	Values form.Values
}

// Renderer converts a filled form into a byte representation (text summary,
// JSON, YAML).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, input Input, options RenderOptions) ([]byte, error)
}
