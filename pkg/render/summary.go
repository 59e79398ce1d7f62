package render

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstep/pkg/form"
	"github.com/goliatone/go-formstep/pkg/render/template"
	"github.com/goliatone/go-formstep/pkg/schema"
	"github.com/goliatone/go-formstep/pkg/session"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

const (
	summaryTemplate = "summary"
	emptyValue      = "-"
)

// TextRenderer prints a plain text summary of a form, one block per step.
type TextRenderer struct {
	engine *template.Engine
}

// NewTextRenderer builds the summary renderer over the embedded templates.
func NewTextRenderer(options ...template.Option) (*TextRenderer, error) {
	files, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("render: templates: %w", err)
	}
	engine, err := template.New(append([]template.Option{template.WithFS(files)}, options...)...)
	if err != nil {
		return nil, err
	}
	return &TextRenderer{engine: engine}, nil
}

func (r *TextRenderer) Name() string        { return "text" }
func (r *TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (r *TextRenderer) Render(ctx context.Context, input Input, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := r.engine.RenderTemplate(summaryTemplate, buildSummary(input, options))
	if err != nil {
		return nil, fmt.Errorf("render: text summary: %w", err)
	}
	return []byte(out), nil
}

type summaryView struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Submission  string        `json:"submission,omitempty"`
	Remaining   string        `json:"remaining,omitempty"`
	Steps       []summaryStep `json:"steps"`
}

type summaryStep struct {
	Position string         `json:"position"`
	Title    string         `json:"title"`
	Fields   []summaryField `json:"fields"`
}

type summaryField struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Error string `json:"error,omitempty"`
}

func buildSummary(input Input, options RenderOptions) summaryView {
	s := input.Schema
	view := summaryView{
		Title:       s.Title,
		Description: s.Description,
		Submission:  strings.TrimSpace(options.Submission),
	}
	if s.SessionDuration.Timed() && options.Remaining >= 0 {
		view.Remaining = session.Format(options.Remaining)
	}

	total := len(s.Steps)
	for i, step := range s.Steps {
		item := summaryStep{
			Position: fmt.Sprintf("%d/%d", i+1, total),
			Title:    step.Title,
		}
		for _, field := range step.Fields {
			item.Fields = append(item.Fields, summaryField{
				Label: field.Label,
				Value: DisplayValue(field, input.Values[field.ID]),
				Error: options.Errors[field.ID],
			})
		}
		view.Steps = append(view.Steps, item)
	}
	return view
}

// DisplayValue formats a field value for humans: select values show their
// option label, files their name and size, and blanks a dash.
func DisplayValue(field schema.Field, value any) string {
	switch v := value.(type) {
	case nil:
		return emptyValue
	case *form.File:
		if v == nil {
			return emptyValue
		}
		return fmt.Sprintf("%s (%d KB)", v.Name(), (v.Size()+1023)/1024)
	case string:
		if strings.TrimSpace(v) == "" {
			return emptyValue
		}
		if field.Type == schema.FieldTypeSelect {
			for _, option := range field.Options {
				if option.Value == v {
					return option.Label
				}
			}
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
