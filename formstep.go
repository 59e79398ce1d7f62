// Package formstep is the entry point for loading step form schemas and
// driving them with a stepper controller.
package formstep

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formstep/pkg/schema"
	"github.com/goliatone/go-formstep/pkg/stepper"
	"github.com/goliatone/go-formstep/pkg/templates"
	"github.com/goliatone/go-formstep/pkg/validation"
)

// ControllerOption aliases stepper.Option for callers wiring the controller
// from the root package.
type ControllerOption = stepper.Option

// LoadSchema reads a schema from a file path or http(s) URL, validates it and
// returns the decoded value. Invalid schemas return an error wrapping
// validation.ErrInvalidSchema.
func LoadSchema(ctx context.Context, location string, options ...schema.LoaderOption) (schema.FormSchema, error) {
	return load(ctx, location, validation.ValidateDocument, options)
}

// LoadSanitizedSchema is LoadSchema for assistant authored schemas: markup is
// stripped from the human readable text before validation, so a label that
// was only markup is reported as missing.
func LoadSanitizedSchema(ctx context.Context, location string, options ...schema.LoaderOption) (schema.FormSchema, error) {
	return load(ctx, location, SanitizeAndValidate, options)
}

// SanitizeAndValidate decodes doc, sanitizes it and validates the sanitized
// schema. Result.Schema holds the sanitized value when valid.
func SanitizeAndValidate(doc schema.Document) validation.SchemaValidationResult {
	candidate, err := doc.Decode()
	if err != nil {
		return validation.ValidateDocument(doc)
	}
	return validation.ValidateSchema(schema.Sanitize(candidate))
}

func load(ctx context.Context, location string, validate func(schema.Document) validation.SchemaValidationResult, options []schema.LoaderOption) (schema.FormSchema, error) {
	src, err := schema.ParseSource(location)
	if err != nil {
		return schema.FormSchema{}, err
	}
	doc, err := schema.NewLoader(options...).Load(ctx, src)
	if err != nil {
		return schema.FormSchema{}, err
	}
	result := validate(doc)
	if err := result.Err(); err != nil {
		return schema.FormSchema{}, err
	}
	return *result.Schema, nil
}

// NewController builds a stepper controller for s.
func NewController(s schema.FormSchema, options ...ControllerOption) (*stepper.Controller, error) {
	return stepper.New(s, options...)
}

// EmbeddedTemplates exposes the predefined template documents.
func EmbeddedTemplates() fs.FS {
	return templates.FS()
}
