package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstep/pkg/form"
	"github.com/goliatone/go-formstep/pkg/render"
	"github.com/goliatone/go-formstep/pkg/schema"
	"github.com/goliatone/go-formstep/pkg/session"
	"github.com/goliatone/go-formstep/pkg/stepper"
)

const blankOption = "(sin selección)"

// Renderer walks a stepper.Controller through the terminal: one prompt per
// field, a navigation choice per step, and the submission at the end.
type Renderer struct {
	driver  PromptDriver
	out     io.Writer
	summary render.Renderer
	theme   Theme
}

// New constructs a TUI renderer backed by survey unless a driver is given.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	return r
}

// Run fills the form held by c and submits it through fn. It returns the
// submitted values. Timed sessions ask before the countdown starts.
func (r *Renderer) Run(ctx context.Context, c *stepper.Controller, fn stepper.SubmitFunc) (form.Values, error) {
	if c == nil {
		return nil, errors.New("tui: controller is required")
	}
	if err := r.start(ctx, c); err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.Expired() {
			_ = r.errorf(ctx, "Tiempo agotado")
			return nil, ErrSessionExpired
		}

		if err := r.header(ctx, c); err != nil {
			return nil, err
		}
		for _, field := range c.Step().Fields {
			if err := r.promptField(ctx, c, field); err != nil {
				return nil, err
			}
		}

		action, err := r.navigate(ctx, c)
		if err != nil {
			return nil, err
		}

		switch action {
		case ActionBack:
			err = c.Prev()
		case ActionContinue:
			err = c.Next()
		case ActionSubmit:
			done, submitErr := r.submit(ctx, c, fn)
			if done {
				return c.Values(), nil
			}
			err = submitErr
		}
		if err := r.handle(ctx, c, err); err != nil {
			return nil, err
		}
	}
}

func (r *Renderer) start(ctx context.Context, c *stepper.Controller) error {
	if !c.Timed() || c.HasStarted() {
		return nil
	}
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Tienes %s para completar el formulario. ¿Comenzar?", session.Format(c.Timer().Duration())),
		Default: true,
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return c.Start()
}

func (r *Renderer) header(ctx context.Context, c *stepper.Controller) error {
	title := fmt.Sprintf("[%d/%d] %s", c.CurrentStep()+1, c.StepCount(), c.Step().Title)
	if c.Timed() {
		title += fmt.Sprintf(" (%s)", session.Format(c.Timer().Remaining()))
	}
	return r.info(ctx, title)
}

func (r *Renderer) navigate(ctx context.Context, c *stepper.Controller) (string, error) {
	var actions []string
	if c.IsLastStep() {
		actions = append(actions, ActionSubmit)
	} else {
		actions = append(actions, ActionContinue)
	}
	if !c.IsFirstStep() {
		actions = append(actions, ActionBack)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "¿Qué deseas hacer?", Options: actions})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(actions) {
		return "", fmt.Errorf("tui: invalid navigation choice %d", idx)
	}
	return actions[idx], nil
}

// submit returns true once the form has been accepted.
func (r *Renderer) submit(ctx context.Context, c *stepper.Controller, fn stepper.SubmitFunc) (bool, error) {
	if r.summary != nil {
		out, err := r.summary.Render(ctx, render.Input{Schema: c.Schema(), Values: c.Values()}, render.RenderOptions{
			Errors:    c.State().Errors(),
			Remaining: remaining(c),
		})
		if err != nil {
			return false, err
		}
		if err := r.info(ctx, strings.TrimRight(string(out), "\n")); err != nil {
			return false, err
		}
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "¿Enviar formulario?", Default: true})
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	if err := c.Submit(ctx, fn); err != nil {
		return false, err
	}
	_ = r.info(ctx, "Formulario enviado")
	return true, nil
}

// handle reports recoverable errors and moves back to the step holding the
// first invalid field. Anything else stops the run.
func (r *Renderer) handle(ctx context.Context, c *stepper.Controller, err error) error {
	var stepErr *stepper.StepError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &stepErr):
		for _, id := range sortedIDs(stepErr.Fields) {
			if perr := r.errorf(ctx, stepErr.Fields[id]); perr != nil {
				return perr
			}
		}
		for c.CurrentStep() > stepErr.Step {
			if perr := c.Prev(); perr != nil {
				return perr
			}
		}
		return nil
	case errors.Is(err, stepper.ErrSessionExpired):
		_ = r.errorf(ctx, "Tiempo agotado")
		return ErrSessionExpired
	case errors.Is(err, stepper.ErrLastStep), errors.Is(err, stepper.ErrNotLastStep):
		return nil
	case errors.Is(err, stepper.ErrAlreadySubmitted):
		return err
	default:
		if perr := r.errorf(ctx, err.Error()); perr != nil {
			return perr
		}
		retry, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: "¿Reintentar?", Default: true})
		if cerr != nil {
			return cerr
		}
		if !retry {
			return err
		}
		return nil
	}
}

func (r *Renderer) promptField(ctx context.Context, c *stepper.Controller, field schema.Field) error {
	for {
		value, err := r.ask(ctx, c, field)
		if err != nil {
			return err
		}
		res, err := c.SetValue(field.ID, value)
		if err != nil {
			if errors.Is(err, stepper.ErrSessionExpired) {
				return ErrSessionExpired
			}
			return err
		}
		if res.Valid {
			return nil
		}
		if err := r.errorf(ctx, res.Message); err != nil {
			return err
		}
	}
}

func (r *Renderer) ask(ctx context.Context, c *stepper.Controller, field schema.Field) (any, error) {
	current := c.Values()[field.ID]
	label := fieldLabel(field)

	switch field.Type {
	case schema.FieldTypeSelect:
		options := make([]string, 0, len(field.Options)+1)
		offset := 0
		if !field.Required() {
			options = append(options, blankOption)
			offset = 1
		}
		selected := 0
		for i, option := range field.Options {
			options = append(options, option.Label)
			if s, ok := current.(string); ok && s == option.Value {
				selected = i + offset
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: selected})
		if err != nil {
			return nil, err
		}
		if idx < offset || idx-offset >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx-offset].Value, nil

	case schema.FieldTypeFile:
		def := ""
		if f, ok := current.(*form.File); ok && f != nil {
			def = f.Path
		}
		for {
			path, err := r.driver.Input(ctx, InputConfig{Message: label, Default: def, Help: fileHelp(field)})
			if err != nil {
				return nil, err
			}
			path = strings.TrimSpace(path)
			if path == "" {
				return nil, nil
			}
			file, err := form.FileFromPath(path)
			if err == nil {
				return file, nil
			}
			if err := r.errorf(ctx, err.Error()); err != nil {
				return nil, err
			}
		}

	case schema.FieldTypeTextArea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: stringOf(current)})

	default:
		return r.driver.Input(ctx, InputConfig{Message: label, Default: stringOf(current)})
	}
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) errorf(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func fieldLabel(field schema.Field) string {
	if field.Required() {
		return field.Label + " *"
	}
	return field.Label
}

func fileHelp(field schema.Field) string {
	if field.Validation == nil {
		return "Ruta del archivo"
	}
	var parts []string
	if len(field.Validation.Extensions) > 0 {
		parts = append(parts, "Extensiones: "+strings.Join(field.Validation.Extensions, ", "))
	}
	if field.Validation.MaxSize != nil {
		parts = append(parts, "Máximo "+strconv.FormatFloat(*field.Validation.MaxSize, 'f', -1, 64)+" KB")
	}
	if len(parts) == 0 {
		return "Ruta del archivo"
	}
	return strings.Join(parts, ". ")
}

func stringOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func remaining(c *stepper.Controller) int {
	if !c.Timed() {
		return -1
	}
	return c.Timer().Remaining()
}

func sortedIDs(fields map[string]string) []string {
	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
