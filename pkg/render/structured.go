package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstep/pkg/form"
)

// Document is the structured export of a filled form.
type Document struct {
	FormID     string            `json:"formId" yaml:"formId"`
	Title      string            `json:"title" yaml:"title"`
	Submission string            `json:"submission,omitempty" yaml:"submission,omitempty"`
	Steps      []string          `json:"steps" yaml:"steps"`
	Values     map[string]any    `json:"values" yaml:"values"`
	Errors     map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type fileValue struct {
	FileName string `json:"fileName" yaml:"fileName"`
	Size     int64  `json:"size" yaml:"size"`
}

// NewDocument flattens input into a Document. Every schema field gets a key;
// files are reduced to name and size.
func NewDocument(input Input, options RenderOptions) Document {
	doc := Document{
		FormID:     input.Schema.ID,
		Title:      input.Schema.Title,
		Submission: options.Submission,
		Values:     make(map[string]any),
	}
	for _, step := range input.Schema.Steps {
		doc.Steps = append(doc.Steps, step.ID)
	}
	for _, field := range input.Schema.Fields() {
		switch v := input.Values[field.ID].(type) {
		case *form.File:
			if v == nil {
				doc.Values[field.ID] = nil
				continue
			}
			doc.Values[field.ID] = fileValue{FileName: v.Name(), Size: v.Size()}
		default:
			doc.Values[field.ID] = v
		}
	}
	if len(options.Errors) > 0 {
		doc.Errors = make(map[string]string, len(options.Errors))
		for id, msg := range options.Errors {
			doc.Errors[id] = msg
		}
	}
	return doc
}

// JSONRenderer encodes the Document as indented JSON.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (JSONRenderer) Name() string        { return "json" }
func (JSONRenderer) ContentType() string { return "application/json" }

func (JSONRenderer) Render(ctx context.Context, input Input, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NewDocument(input, options)); err != nil {
		return nil, fmt.Errorf("render: json: %w", err)
	}
	return buf.Bytes(), nil
}

// YAMLRenderer encodes the Document as YAML.
type YAMLRenderer struct{}

func NewYAMLRenderer() *YAMLRenderer { return &YAMLRenderer{} }

func (YAMLRenderer) Name() string        { return "yaml" }
func (YAMLRenderer) ContentType() string { return "application/yaml" }

func (YAMLRenderer) Render(ctx context.Context, input Input, options RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(input, options)); err != nil {
		return nil, fmt.Errorf("render: yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("render: yaml: %w", err)
	}
	return buf.Bytes(), nil
}
