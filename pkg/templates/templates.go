package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/goliatone/go-formstep/pkg/schema"
	"github.com/goliatone/go-formstep/pkg/validation"
)

//go:embed data/*.yaml
var dataFS embed.FS

// ErrUnknownTemplate is returned by Get for ids outside the catalog.
var ErrUnknownTemplate = errors.New("templates: unknown template")

// Template describes a predefined schema offered as a starting point.
type Template struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description" yaml:"description"`
	AccountType schema.AccountType `json:"accountType" yaml:"accountType"`
}

var catalog = []Template{
	{
		ID:          "onboarding-pm",
		Name:        "Onboarding Persona Moral",
		Description: "Formulario para el proceso de onboarding de empresas y organizaciones",
		AccountType: schema.AccountTypePM,
	},
	{
		ID:          "onboarding-pf",
		Name:        "Onboarding Persona Física",
		Description: "Formulario para el proceso de onboarding de personas físicas",
		AccountType: schema.AccountTypePF,
	},
}

var (
	loadOnce sync.Once
	loaded   map[string]schema.FormSchema
	loadErr  error
)

// List returns the catalog entries.
func List() []Template {
	return append([]Template{}, catalog...)
}

// Get returns a copy of the schema for a template id.
func Get(id string) (schema.FormSchema, error) {
	loadOnce.Do(func() {
		loaded, loadErr = load(dataFS)
	})
	if loadErr != nil {
		return schema.FormSchema{}, loadErr
	}
	s, ok := loaded[id]
	if !ok {
		return schema.FormSchema{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return s.Clone(), nil
}

// FS exposes the raw template documents.
func FS() fs.FS {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

func load(fsys fs.FS) (map[string]schema.FormSchema, error) {
	out := make(map[string]schema.FormSchema, len(catalog))
	for _, tpl := range catalog {
		path := "data/" + tpl.ID + ".yaml"
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("templates: read %s: %w", path, err)
		}
		result := validation.ValidateFormSchema(raw)
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("templates: %s: %w", tpl.ID, err)
		}
		out[tpl.ID] = *result.Schema
	}
	return out, nil
}
