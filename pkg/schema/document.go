package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a raw schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document wraps the raw schema payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Format guesses the document encoding from the location extension, falling
// back to sniffing the first non-space byte.
func (d Document) Format() Format {
	switch strings.ToLower(filepath.Ext(d.Location())) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	return SniffFormat(d.raw)
}

// Decode parses the document into a FormSchema. It performs no structural
// validation; see the validation package for that.
func (d Document) Decode() (FormSchema, error) {
	return Decode(d.raw, d.Format())
}

// SniffFormat reports JSON when the payload starts with an object or array
// delimiter and YAML otherwise.
func SniffFormat(raw []byte) Format {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses raw bytes in the given format.
func Decode(raw []byte, format Format) (FormSchema, error) {
	var out FormSchema
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &out); err != nil {
			return FormSchema{}, fmt.Errorf("schema: decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &out); err != nil {
			return FormSchema{}, fmt.Errorf("schema: decode json: %w", err)
		}
	}
	return out, nil
}

// Encode marshals the schema as indented JSON.
func Encode(s FormSchema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: encode: %w", err)
	}
	return data, nil
}
