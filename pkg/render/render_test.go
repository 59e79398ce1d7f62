package render_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstep/pkg/form"
	"github.com/goliatone/go-formstep/pkg/render"
	"github.com/goliatone/go-formstep/pkg/schema"
)

func contactInput() render.Input {
	s := schema.FormSchema{
		ID:              "contacto",
		Title:           "Contacto",
		SessionDuration: schema.SessionDuration{Type: schema.SessionCustom, CustomMinutes: 5},
		Steps: []schema.Step{
			{ID: "datos", Title: "Datos", Fields: []schema.Field{
				{ID: "name", Label: "Nombre", Type: schema.FieldTypeText},
				{ID: "email", Label: "Correo", Type: schema.FieldTypeEmail},
			}},
			{ID: "extra", Title: "Extra", Fields: []schema.Field{
				{ID: "topic", Label: "Tema", Type: schema.FieldTypeSelect, Options: []schema.Option{{Label: "Ventas", Value: "sales"}}},
				{ID: "cv", Label: "CV", Type: schema.FieldTypeFile},
			}},
		},
	}
	return render.Input{
		Schema: s,
		Values: form.Values{
			"name":  "Ana & <Bea>",
			"email": "",
			"topic": "sales",
			"cv":    &form.File{Filename: "cv.pdf", Length: 1500},
		},
	}
}

func TestTextRenderer(t *testing.T) {
	renderer, err := render.NewTextRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), contactInput(), render.RenderOptions{
		Errors:     map[string]string{"email": "Correo es requerido"},
		Submission: "k3j9x0a1",
		Remaining:  90,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	for _, want := range []string{
		"Contacto\n",
		"Envío: k3j9x0a1",
		"Tiempo restante: 1:30",
		"[1/2] Datos",
		"[2/2] Extra",
		"Nombre: Ana & <Bea>",
		"Correo: - ! Correo es requerido",
		"Tema: Ventas",
		"CV: cv.pdf (2 KB)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestTextRenderer_HidesTimer(t *testing.T) {
	renderer, err := render.NewTextRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), contactInput(), render.RenderOptions{Remaining: -1})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "Tiempo restante") {
		t.Fatalf("expected no timer line:\n%s", out)
	}
}

func TestDisplayValue(t *testing.T) {
	field := schema.Field{ID: "n", Label: "N", Type: schema.FieldTypeNumber}
	cases := map[string]struct {
		value any
		want  string
	}{
		"nil":        {nil, "-"},
		"blank":      {"  ", "-"},
		"nil file":   {(*form.File)(nil), "-"},
		"float":      {2.5, "2.5"},
		"int":        {7, "7"},
		"zero float": {float64(0), "0"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := render.DisplayValue(field, tc.value); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestJSONRenderer(t *testing.T) {
	out, err := render.NewJSONRenderer().Render(context.Background(), contactInput(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"name":  "Ana & <Bea>",
		"email": "",
		"topic": "sales",
		"cv":    map[string]any{"fileName": "cv.pdf", "size": float64(1500)},
	}
	if diff := cmp.Diff(want, doc["values"]); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if doc["formId"] != "contacto" {
		t.Fatalf("unexpected form id %v", doc["formId"])
	}
	if _, ok := doc["errors"]; ok {
		t.Fatalf("expected errors to be omitted")
	}
}

func TestYAMLRenderer(t *testing.T) {
	out, err := render.NewYAMLRenderer().Render(context.Background(), contactInput(), render.RenderOptions{
		Errors: map[string]string{"email": "Correo es requerido"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var doc struct {
		FormID string            `yaml:"formId"`
		Steps  []string          `yaml:"steps"`
		Values map[string]any    `yaml:"values"`
		Errors map[string]string `yaml:"errors"`
	}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.FormID != "contacto" || doc.Values["topic"] != "sales" {
		t.Fatalf("unexpected document %+v", doc)
	}
	if diff := cmp.Diff([]string{"datos", "extra"}, doc.Steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
	if doc.Errors["email"] != "Correo es requerido" {
		t.Fatalf("expected error entry, got %v", doc.Errors)
	}
}

func TestDefaultRegistry(t *testing.T) {
	registry, err := render.NewDefaultRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if diff := cmp.Diff([]string{"json", "text", "yaml"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if _, err := registry.Get("html"); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
	if err := registry.Register(render.NewJSONRenderer()); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	out, err := registry.Render(context.Background(), "text", contactInput(), render.RenderOptions{Remaining: -1})
	if err != nil || !strings.Contains(string(out), "Contacto") {
		t.Fatalf("render via registry: %v %q", err, out)
	}
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := render.NewJSONRenderer().Render(ctx, contactInput(), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
