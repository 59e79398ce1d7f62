package template

import (
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formstep/pkg/testsupport"
)

func newTestEngine(t *testing.T, options ...Option) *Engine {
	t.Helper()
	files := fstest.MapFS{
		"hello.tpl": {Data: []byte(`Hola {{ name|formstep_shout }} de {{ app }}`)},
		"items.txt": {Data: []byte(`{% for item in items %}[{{ item.label|trim }}]{% endfor %}`)},
	}
	engine, err := New(append([]Option{WithFS(files)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func shout(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.ToUpper(in.String())), nil
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newTestEngine(t,
		WithFilters(map[string]pongo2.FilterFunction{"formstep_shout": shout}),
		WithGlobalData(map[string]any{"app": "formstep"}),
	)

	out, written := testsupport.CaptureOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "ana"}, w)
	})
	if out != "Hola ANA de formstep" {
		t.Fatalf("unexpected output %q", out)
	}
	if written != out {
		t.Fatalf("writer got %q", written)
	}
}

func TestEngine_StructDataUsesJSONNames(t *testing.T) {
	engine := newTestEngine(t, WithExtension("txt"))

	type item struct {
		Label string `json:"label"`
	}
	data := struct {
		Items []item `json:"items"`
	}{Items: []item{{Label: " a "}, {Label: "b"}}}

	out, err := engine.RenderTemplate("items", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[a][b]" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngine_RenderString(t *testing.T) {
	engine := newTestEngine(t)
	out, err := engine.RenderString(`{{ a }}-{{ b }}`, map[string]any{"a": "x", "b": "y"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if out != "x-y" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngine_Errors(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatalf("expected error without template source")
	}
	engine := newTestEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
	var nilEngine *Engine
	if _, err := nilEngine.RenderString("x", nil); err == nil {
		t.Fatalf("expected error for nil engine")
	}
}
