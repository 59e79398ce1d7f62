package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstep/pkg/form"
	"github.com/goliatone/go-formstep/pkg/render"
	"github.com/goliatone/go-formstep/pkg/schema"
	"github.com/goliatone/go-formstep/pkg/session"
	"github.com/goliatone/go-formstep/pkg/stepper"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string

	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int

	infoMessages []string
	selects      []SelectConfig
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) said(substr string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func uploadSchema() schema.FormSchema {
	return schema.FormSchema{
		ID:              "upload",
		Title:           "Registro",
		SessionDuration: schema.SessionDuration{Type: schema.SessionUnlimited},
		Steps: []schema.Step{
			{ID: "datos", Title: "Datos", Fields: []schema.Field{
				{ID: "name", Label: "Nombre", Type: schema.FieldTypeText, Validation: &schema.FieldValidation{Required: true}},
			}},
			{ID: "documentos", Title: "Documentos", Fields: []schema.Field{
				{ID: "file", Label: "Adjunto", Type: schema.FieldTypeFile, Validation: &schema.FieldValidation{Required: true, Extensions: []string{"pdf"}}},
			}},
		},
	}
}

func newController(t *testing.T, s schema.FormSchema) *stepper.Controller {
	t.Helper()
	c, err := stepper.New(s, stepper.WithTimerOptions(session.WithClock(nil)))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("contenido"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestRun_FillsAndSubmits(t *testing.T) {
	txt := writeFile(t, "notas.txt")
	pdf := writeFile(t, "acta.pdf")

	driver := &stubDriver{
		inputs:    []string{"", "Ana", "", txt, pdf},
		selectIdx: []int{0, 0},
	}
	c := newController(t, uploadSchema())

	var submitted form.Values
	values, err := New(WithPromptDriver(driver)).Run(context.Background(), c, func(_ context.Context, v form.Values) error {
		submitted = v
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{"[1/2] Datos", "Nombre es requerido", "[2/2] Documentos", "Adjunto es requerido", "Formulario enviado"} {
		if !driver.said(want) {
			t.Errorf("expected message %q in %v", want, driver.infoMessages)
		}
	}
	if values["name"] != "Ana" || submitted["name"] != "Ana" {
		t.Fatalf("unexpected values %v", values)
	}
	file, ok := submitted["file"].(*form.File)
	if !ok || file.Name() != "acta.pdf" {
		t.Fatalf("expected acta.pdf, got %#v", submitted["file"])
	}
	if !c.Submitted() {
		t.Fatalf("expected controller to be submitted")
	}
	if diff := cmp.Diff([]string{ActionSubmit, ActionBack}, driver.selects[1].Options); diff != "" {
		t.Fatalf("last step actions mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_BackRepromptsPreviousStep(t *testing.T) {
	pdf := writeFile(t, "acta.pdf")
	driver := &stubDriver{
		inputs:    []string{"Ana", pdf, "Beatriz", pdf},
		selectIdx: []int{0, 1, 0, 0},
	}
	c := newController(t, uploadSchema())

	values, err := New(WithPromptDriver(driver)).Run(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if values["name"] != "Beatriz" {
		t.Fatalf("expected edited name, got %v", values["name"])
	}
	if diff := cmp.Diff([]string{ActionContinue}, driver.selects[0].Options); diff != "" {
		t.Fatalf("first step actions mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_SubmitFailureCanRetry(t *testing.T) {
	pdf := writeFile(t, "acta.pdf")
	driver := &stubDriver{
		inputs:    []string{"Ana", pdf, pdf},
		selectIdx: []int{0, 0, 0},
		confirm:   []bool{true},
	}
	c := newController(t, uploadSchema())

	calls := 0
	_, err := New(WithPromptDriver(driver)).Run(context.Background(), c, func(context.Context, form.Values) error {
		calls++
		if calls == 1 {
			return errors.New("servicio no disponible")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected two submit attempts, got %d", calls)
	}
	if !driver.said("servicio no disponible") {
		t.Fatalf("expected failure to be reported: %v", driver.infoMessages)
	}
}

func TestRun_SubmitFailureWithoutRetry(t *testing.T) {
	pdf := writeFile(t, "acta.pdf")
	driver := &stubDriver{
		inputs:    []string{"Ana", pdf},
		selectIdx: []int{0, 0},
		confirm:   []bool{false},
	}
	c := newController(t, uploadSchema())

	boom := errors.New("boom")
	_, err := New(WithPromptDriver(driver)).Run(context.Background(), c, func(context.Context, form.Values) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected submit error, got %v", err)
	}
	if c.Submitted() {
		t.Fatalf("form should stay open")
	}
}

func TestRun_TimedSessionAsksToStart(t *testing.T) {
	s := uploadSchema()
	s.SessionDuration = schema.SessionDuration{Type: schema.SessionCustom, CustomMinutes: 2}

	driver := &stubDriver{confirm: []bool{false}}
	c := newController(t, s)
	if _, err := New(WithPromptDriver(driver)).Run(context.Background(), c, nil); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if c.HasStarted() {
		t.Fatalf("session must not start when declined")
	}

	pdf := writeFile(t, "acta.pdf")
	driver = &stubDriver{
		inputs:    []string{"Ana", pdf},
		selectIdx: []int{0, 0},
		confirm:   []bool{true},
	}
	if _, err := New(WithPromptDriver(driver)).Run(context.Background(), c, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !driver.said("[1/2] Datos (2:00)") {
		t.Fatalf("expected countdown in header: %v", driver.infoMessages)
	}
}

func TestRun_ExpiredSession(t *testing.T) {
	s := uploadSchema()
	s.SessionDuration = schema.SessionDuration{Type: schema.SessionCustom, CustomMinutes: 1}
	c := newController(t, s)
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 60; i++ {
		c.Timer().Tick()
	}

	driver := &stubDriver{}
	if _, err := New(WithPromptDriver(driver)).Run(context.Background(), c, nil); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if !driver.said("Tiempo agotado") {
		t.Fatalf("expected expiry message: %v", driver.infoMessages)
	}
}

func TestRun_SelectAndSummary(t *testing.T) {
	s := schema.FormSchema{
		ID:              "tema",
		Title:           "Consulta",
		SessionDuration: schema.SessionDuration{Type: schema.SessionUnlimited},
		Steps: []schema.Step{
			{ID: "uno", Title: "Uno", Fields: []schema.Field{
				{ID: "topic", Label: "Tema", Type: schema.FieldTypeSelect, Options: []schema.Option{{Label: "Ventas", Value: "sales"}, {Label: "Soporte", Value: "support"}}},
				{ID: "notes", Label: "Notas", Type: schema.FieldTypeTextArea},
			}},
		},
	}
	summary, err := render.NewTextRenderer()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	driver := &stubDriver{
		selectIdx: []int{2, 0},
		textAreas: []string{"línea 1\nlínea 2"},
		confirm:   []bool{true},
	}
	c := newController(t, s)

	values, err := New(WithPromptDriver(driver), WithSummary(summary), WithTheme(Theme{ErrorPrefix: "! "})).Run(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if values["topic"] != "support" {
		t.Fatalf("expected support, got %v", values["topic"])
	}
	if diff := cmp.Diff([]string{blankOption, "Ventas", "Soporte"}, driver.selects[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if !driver.said("Tema: Soporte") {
		t.Fatalf("expected summary output: %v", driver.infoMessages)
	}
}

func TestRun_Aborted(t *testing.T) {
	driver := &stubDriver{}
	c := newController(t, uploadSchema())
	if _, err := New(WithPromptDriver(driver)).Run(context.Background(), c, nil); err == nil {
		t.Fatalf("expected error when the driver has nothing scripted")
	}
	if _, err := New(WithPromptDriver(driver)).Run(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil controller")
	}
}
