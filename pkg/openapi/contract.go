package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstep/pkg/schema"
)

const (
	openAPIVersion     = "3.0.3"
	submissionPath     = "/submissions/{shortId}"
	multipartMediaType = "multipart/form-data"
	jsonMediaType      = "application/json"
	submitOperationID  = "submitForm"
	contractVersion    = "1.0.0"
)

// SubmissionSchema describes the multipart body accepted for s: one property
// per field carrying the same constraints the field validator enforces.
func SubmissionSchema(s schema.FormSchema) *openapi3.Schema {
	body := openapi3.NewObjectSchema()
	body.Title = s.Title
	body.Description = s.Description

	for _, field := range s.Fields() {
		body.WithProperty(field.ID, fieldSchema(field))
		if field.Required() {
			body.Required = append(body.Required, field.ID)
		}
	}
	return body
}

func fieldSchema(field schema.Field) *openapi3.Schema {
	rules := field.Validation
	if rules == nil {
		rules = &schema.FieldValidation{}
	}

	var out *openapi3.Schema
	switch field.Type {
	case schema.FieldTypeFile:
		out = openapi3.NewStringSchema().WithFormat("binary")
		if len(rules.Extensions) > 0 {
			out.Extensions = map[string]any{"x-extensions": append([]string{}, rules.Extensions...)}
		}
		if rules.MaxSize != nil {
			if out.Extensions == nil {
				out.Extensions = map[string]any{}
			}
			out.Extensions["x-max-size-kb"] = *rules.MaxSize
		}
	case schema.FieldTypeNumber:
		out = openapi3.NewFloat64Schema()
		if rules.Min != nil {
			out.WithMin(*rules.Min)
		}
		if rules.Max != nil {
			out.WithMax(*rules.Max)
		}
	case schema.FieldTypeSelect:
		out = openapi3.NewStringSchema()
		values := make([]any, 0, len(field.Options))
		for _, option := range field.Options {
			values = append(values, option.Value)
		}
		out.WithEnum(values...)
	default:
		out = openapi3.NewStringSchema()
		if field.Type == schema.FieldTypeEmail || rules.Email {
			out.WithFormat("email")
		}
		if rules.MinLength != nil && *rules.MinLength > 0 {
			out.WithMinLength(int64(*rules.MinLength))
		}
		if rules.MaxLength != nil && *rules.MaxLength > 0 {
			out.WithMaxLength(int64(*rules.MaxLength))
		}
		if rules.Regex != "" {
			out.WithPattern(rules.Regex)
		}
	}
	out.Title = field.Label
	return out
}

// SubmissionDocument builds and validates the contract for submitting the
// form published under shortID.
func SubmissionDocument(ctx context.Context, s schema.FormSchema, shortID string) (*openapi3.T, error) {
	if strings.TrimSpace(shortID) == "" {
		return nil, errors.New("openapi: short id is required")
	}

	param := openapi3.NewPathParameter("shortId").WithSchema(openapi3.NewStringSchema())
	param.Example = shortID

	op := openapi3.NewOperation()
	op.OperationID = submitOperationID
	op.Summary = "Submit " + s.Title
	op.Tags = []string{s.ID}
	op.Parameters = openapi3.Parameters{{Value: param}}
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.NewContentWithSchema(SubmissionSchema(s), []string{multipartMediaType})),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Submission accepted").
			WithContent(openapi3.NewContentWithSchema(resultSchema(), []string{jsonMediaType}))}),
		openapi3.WithStatus(404, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Form not found").
			WithContent(openapi3.NewContentWithSchema(errorSchema(), []string{jsonMediaType}))}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Invalid field values").
			WithContent(openapi3.NewContentWithSchema(errorSchema(), []string{jsonMediaType}))}),
	)

	doc := &openapi3.T{
		OpenAPI: openAPIVersion,
		Info: &openapi3.Info{
			Title:       s.Title,
			Description: s.Description,
			Version:     contractVersion,
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(submissionPath, &openapi3.PathItem{Post: op})),
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate contract: %w", err)
	}
	return doc, nil
}

func resultSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("id", openapi3.NewStringSchema().WithFormat("uuid")).
		WithProperty("completed", openapi3.NewBoolSchema())
}

func errorSchema() *openapi3.Schema {
	errorBody := openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("details", openapi3.NewObjectSchema())
	return openapi3.NewObjectSchema().WithProperty("error", errorBody)
}

// Marshal encodes a contract as indented JSON or, for "yaml", YAML.
func Marshal(doc *openapi3.T, format string) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: encode: %w", err)
	}
	if format != "yaml" {
		return raw, nil
	}
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("openapi: convert to yaml: %w", err)
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode yaml: %w", err)
	}
	return out, nil
}

// Load parses a contract (JSON or YAML) and validates it.
func Load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}

// RequiredFields returns the required property names of the submission body
// in a loaded contract.
func RequiredFields(doc *openapi3.T) ([]string, error) {
	body, err := submissionBody(doc)
	if err != nil {
		return nil, err
	}
	return append([]string{}, body.Required...), nil
}

func submissionBody(doc *openapi3.T) (*openapi3.Schema, error) {
	if doc == nil || doc.Paths == nil {
		return nil, errors.New("openapi: document has no paths")
	}
	item := doc.Paths.Value(submissionPath)
	if item == nil || item.Post == nil {
		return nil, fmt.Errorf("openapi: missing POST %s", submissionPath)
	}
	body := item.Post.RequestBody
	if body == nil || body.Value == nil {
		return nil, errors.New("openapi: submission has no request body")
	}
	media := body.Value.Content.Get(multipartMediaType)
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("openapi: submission body is not %s", multipartMediaType)
	}
	return media.Schema.Value, nil
}
