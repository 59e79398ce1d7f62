package templates_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/goliatone/go-formstep/pkg/form"
	"github.com/goliatone/go-formstep/pkg/schema"
	"github.com/goliatone/go-formstep/pkg/templates"
	"github.com/goliatone/go-formstep/pkg/validation"
)

func TestList(t *testing.T) {
	list := templates.List()
	if len(list) != 2 {
		t.Fatalf("expected two templates, got %d", len(list))
	}
	list[0].ID = "mutated"
	if templates.List()[0].ID != "onboarding-pm" {
		t.Fatalf("List must return a copy")
	}
}

func TestGet_EveryTemplateIsValid(t *testing.T) {
	for _, tpl := range templates.List() {
		t.Run(tpl.ID, func(t *testing.T) {
			s, err := templates.Get(tpl.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if s.ID != tpl.ID || s.AccountType != tpl.AccountType {
				t.Fatalf("unexpected schema header %q/%q", s.ID, s.AccountType)
			}
			if s.SessionDuration.Type != schema.SessionUnlimited {
				t.Fatalf("expected unlimited session")
			}
			if res := validation.ValidateSchema(s); !res.Valid {
				t.Fatalf("template invalid: %v", res.Err())
			}
		})
	}
}

func TestGet_PersonaFisica(t *testing.T) {
	s, err := templates.Get("onboarding-pf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.StepCount() != 8 {
		t.Fatalf("expected 8 steps, got %d", s.StepCount())
	}
	marital, ok := s.FieldByID("marital-status")
	if !ok || len(marital.Options) != 5 || marital.Options[0].Label != "Soltero(a)" {
		t.Fatalf("unexpected marital status field %#v", marital)
	}

	v := validation.NewValidator()
	rfc, _ := s.FieldByID("rfc")
	if res := v.ValidateSchemaField(rfc, "GODE561231GR8"); !res.Valid {
		t.Fatalf("expected valid rfc, got %q", res.Message)
	}
	if res := v.ValidateSchemaField(rfc, "GODE561231GR"); res.Message != "RFC debe tener al menos 13 caracteres" {
		t.Fatalf("unexpected rfc message %q", res.Message)
	}

	defaults := form.CreateDefaults(s)
	if defaults["ine-photo"] != nil || defaults["firstName"] != "" {
		t.Fatalf("unexpected defaults %#v", defaults)
	}
}

func TestGet_ReturnsCopies(t *testing.T) {
	first, _ := templates.Get("onboarding-pm")
	first.Steps[0].Title = "changed"
	second, _ := templates.Get("onboarding-pm")
	if second.Steps[0].Title == "changed" {
		t.Fatalf("Get must not share schema state")
	}
}

func TestGet_Unknown(t *testing.T) {
	if _, err := templates.Get("nope"); !errors.Is(err, templates.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestFS(t *testing.T) {
	entries, err := fs.ReadDir(templates.FS(), ".")
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two documents, got %d", len(entries))
	}
}
