package stepper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstep/pkg/form"
	"github.com/goliatone/go-formstep/pkg/schema"
	"github.com/goliatone/go-formstep/pkg/session"
	"github.com/goliatone/go-formstep/pkg/stepper"
)

func twoStepSchema() schema.FormSchema {
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

func timedSchema(minutes int) schema.FormSchema {
	s := twoStepSchema()
	s.SessionDuration = schema.SessionDuration{Type: schema.SessionCustom, CustomMinutes: minutes}
	return s
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

func TestNext_BlocksOnInvalidStep(t *testing.T) {
	c := newController(t, twoStepSchema())

	err := c.Next()
	var stepErr *stepper.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if diff := cmp.Diff(map[string]string{"name": "Nombre es requerido"}, stepErr.Fields); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
	if c.CurrentStep() != 0 {
		t.Fatalf("expected to stay on step 0, got %d", c.CurrentStep())
	}
}

func TestNextPrev_Navigation(t *testing.T) {
	c := newController(t, twoStepSchema())
	if !c.IsFirstStep() || c.IsLastStep() {
		t.Fatalf("unexpected initial position")
	}
	if err := c.Prev(); err != nil || c.CurrentStep() != 0 {
		t.Fatalf("prev on first step must floor at 0, got %d (%v)", c.CurrentStep(), err)
	}

	_, _ = c.SetValue("name", "Ana")
	if err := c.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if !c.IsLastStep() || c.Step().ID != "documentos" {
		t.Fatalf("expected last step, got %d", c.CurrentStep())
	}
	if err := c.Next(); !errors.Is(err, stepper.ErrLastStep) {
		t.Fatalf("expected ErrLastStep, got %v", err)
	}

	// stepping back never re-validates, even with an invalid value
	_, _ = c.SetValue("name", "")
	if err := c.Prev(); err != nil || c.CurrentStep() != 0 {
		t.Fatalf("expected prev to succeed, got %d (%v)", c.CurrentStep(), err)
	}
}

func TestSubmit_RequiresFileOnLastStep(t *testing.T) {
	c := newController(t, twoStepSchema())
	calls := 0
	submit := func(context.Context, form.Values) error {
		calls++
		return nil
	}

	if err := c.Submit(context.Background(), submit); !errors.Is(err, stepper.ErrNotLastStep) {
		t.Fatalf("expected ErrNotLastStep, got %v", err)
	}

	_, _ = c.SetValue("name", "Ana")
	if err := c.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}

	err := c.Submit(context.Background(), submit)
	var stepErr *stepper.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if got := stepErr.Fields["file"]; got != "Adjunto es requerido" {
		t.Fatalf("unexpected message %q", got)
	}
	if calls != 0 || c.Submitted() {
		t.Fatalf("form must not be submitted")
	}

	res, _ := c.SetValue("file", &form.File{Filename: "contrato.txt", Length: 10})
	if res.Valid || res.Message != "Adjunto debe ser uno de los siguientes tipos: pdf" {
		t.Fatalf("unexpected result %#v", res)
	}

	_, _ = c.SetValue("file", &form.File{Filename: "contrato.PDF", Length: 10})
	var got form.Values
	err = c.Submit(context.Background(), func(_ context.Context, values form.Values) error {
		calls++
		got = values
		return nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single submission, got %d", calls)
	}
	if name, _ := got.String("name"); name != "Ana" {
		t.Fatalf("unexpected submitted name %q", name)
	}
	if err := c.Submit(context.Background(), submit); !errors.Is(err, stepper.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("submit callback ran twice")
	}
}

func TestSubmit_RevalidatesEarlierSteps(t *testing.T) {
	c := newController(t, twoStepSchema())
	_, _ = c.SetValue("name", "Ana")
	_ = c.Next()
	_, _ = c.SetValue("name", " ")
	_, _ = c.SetValue("file", &form.File{Filename: "a.pdf", Length: 1})

	err := c.Submit(context.Background(), nil)
	var stepErr *stepper.StepError
	if !errors.As(err, &stepErr) || stepErr.Step != 0 {
		t.Fatalf("expected step 0 failure, got %v", err)
	}
}

func TestSubmit_CallbackErrorKeepsFormOpen(t *testing.T) {
	c := newController(t, twoStepSchema())
	_, _ = c.SetValue("name", "Ana")
	_ = c.Next()
	_, _ = c.SetValue("file", &form.File{Filename: "a.pdf", Length: 1})

	boom := errors.New("boom")
	if err := c.Submit(context.Background(), func(context.Context, form.Values) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped callback error, got %v", err)
	}
	if c.Submitted() {
		t.Fatalf("failed submission must not mark the form")
	}
	if err := c.Submit(context.Background(), nil); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestTimedSession_GatesNavigation(t *testing.T) {
	c := newController(t, timedSchema(1))
	if !c.Timed() || c.HasStarted() {
		t.Fatalf("expected timed, not started session")
	}
	_, _ = c.SetValue("name", "Ana")
	if err := c.Next(); !errors.Is(err, stepper.ErrSessionNotStarted) {
		t.Fatalf("expected ErrSessionNotStarted, got %v", err)
	}

	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}

	for i := 0; i < 60; i++ {
		c.Timer().Tick()
	}
	if !c.Expired() {
		t.Fatalf("expected expiry after 60 seconds, got %s", c.Timer().State())
	}
	if err := c.Prev(); !errors.Is(err, stepper.ErrSessionExpired) {
		t.Fatalf("expected prev to be frozen, got %v", err)
	}
	if err := c.Submit(context.Background(), nil); !errors.Is(err, stepper.ErrSessionExpired) {
		t.Fatalf("expected submit to be rejected, got %v", err)
	}
	if _, err := c.SetValue("file", &form.File{Filename: "a.pdf"}); !errors.Is(err, stepper.ErrSessionExpired) {
		t.Fatalf("expected input to be frozen, got %v", err)
	}
	if err := c.Start(); !errors.Is(err, stepper.ErrSessionExpired) {
		t.Fatalf("expected start to fail after expiry, got %v", err)
	}

	if reset, _ := c.Load(timedSchema(1)); reset {
		t.Fatalf("equal schema must not escape expiry")
	}
	if !c.Expired() {
		t.Fatalf("expected session to stay expired")
	}

	reset, err := c.Load(timedSchema(2))
	if err != nil || !reset {
		t.Fatalf("expected reset on schema change, got %v/%v", reset, err)
	}
	if c.Expired() || c.HasStarted() || c.CurrentStep() != 0 {
		t.Fatalf("expected fresh session after reload")
	}
	if c.Timer().Remaining() != 120 {
		t.Fatalf("expected 120 seconds, got %d", c.Timer().Remaining())
	}
}

func TestTimedSession_PauseAllowsNavigation(t *testing.T) {
	c := newController(t, timedSchema(5))
	_ = c.Start()
	_, _ = c.SetValue("name", "Ana")
	if err := c.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := c.Next(); err != nil {
		t.Fatalf("next while paused: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if c.Timer().Remaining() != 300 {
		t.Fatalf("resume must keep remaining time, got %d", c.Timer().Remaining())
	}
}

func TestLoad_ResetsOnlyOnChange(t *testing.T) {
	c := newController(t, twoStepSchema())
	_, _ = c.SetValue("name", "Ana")
	_ = c.Next()

	if reset, _ := c.Load(twoStepSchema()); reset || c.CurrentStep() != 1 {
		t.Fatalf("equal schema must keep position")
	}

	changed := twoStepSchema()
	changed.Title = "Otro"
	if reset, _ := c.Load(changed); !reset || c.CurrentStep() != 0 {
		t.Fatalf("changed schema must reset position")
	}
	if v, _ := c.State().Value("name"); v != "" {
		t.Fatalf("expected defaults after reset, got %v", v)
	}
}

func TestNew_RejectsInvalidSession(t *testing.T) {
	if _, err := stepper.New(timedSchema(0)); !errors.Is(err, session.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}
