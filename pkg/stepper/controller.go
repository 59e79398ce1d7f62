package stepper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formstep/pkg/form"
	"github.com/goliatone/go-formstep/pkg/schema"
	"github.com/goliatone/go-formstep/pkg/session"
	"github.com/goliatone/go-formstep/pkg/validation"
)

var (
	// ErrLastStep is returned by Next when the current step is the last one.
	ErrLastStep = errors.New("stepper: already on the last step")
	// ErrNotLastStep is returned by Submit when called before the last step.
	ErrNotLastStep = errors.New("stepper: submission is only allowed from the last step")
	// ErrSessionNotStarted guards timed forms until Start is called.
	ErrSessionNotStarted = errors.New("stepper: session not started")
	// ErrSessionExpired freezes navigation and submission once the countdown ends.
	ErrSessionExpired = errors.New("stepper: session expired")
	// ErrAlreadySubmitted rejects a second submission of the same form.
	ErrAlreadySubmitted = errors.New("stepper: form already submitted")
)

// StepError lists the fields that blocked a transition, keyed by field id.
type StepError struct {
	Step   int
	Fields map[string]string
}

func (e *StepError) Error() string {
	ids := make([]string, 0, len(e.Fields))
	for id := range e.Fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %s", id, e.Fields[id]))
	}
	return fmt.Sprintf("stepper: step %d has invalid fields (%s)", e.Step, strings.Join(parts, "; "))
}

// SubmitFunc receives a copy of the values when the form is submitted.
type SubmitFunc func(ctx context.Context, values form.Values) error

// Option customises a Controller.
type Option func(*Controller)

// WithValidator overrides the field validator (and its message catalog).
func WithValidator(v *validation.Validator) Option {
	return func(c *Controller) {
		c.validator = v
	}
}

// WithTimerOptions forwards options to the session timer built for timed
// schemas.
func WithTimerOptions(options ...session.Option) Option {
	return func(c *Controller) {
		c.timerOptions = append(c.timerOptions, options...)
	}
}

// Controller walks a schema one step at a time. It owns the step index, the
// value map and, for timed schemas, the session countdown. It is not safe for
// concurrent use.
type Controller struct {
	state        *form.State
	validator    *validation.Validator
	timer        *session.Timer
	timerOptions []session.Option
	index        int
	submitted    bool
}

// New builds a controller positioned on the first step of s.
func New(s schema.FormSchema, options ...Option) (*Controller, error) {
	c := &Controller{}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	c.state = form.NewState(s, c.validator)
	if err := c.resetSession(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load swaps the schema. When the content differs the step index, values,
// submission flag and session timer all reset; an equal schema is a no-op.
func (c *Controller) Load(next schema.FormSchema) (bool, error) {
	if !c.state.Load(next) {
		return false, nil
	}
	c.index = 0
	c.submitted = false
	return true, c.resetSession()
}

// Close releases the session timer.
func (c *Controller) Close() {
	if c.timer != nil {
		c.timer.Close()
	}
}

// Start begins (or resumes) the session countdown. Untimed forms accept it
// as a no-op.
func (c *Controller) Start() error {
	if c.timer == nil {
		return nil
	}
	if c.timer.Expired() {
		return ErrSessionExpired
	}
	if c.timer.State() == session.StateRunning {
		return nil
	}
	return c.timer.Start()
}

// Pause halts the countdown of a running timed session.
func (c *Controller) Pause() error {
	if c.timer == nil {
		return nil
	}
	return c.timer.Pause()
}

// Next validates the current step and advances only if every field passes.
func (c *Controller) Next() error {
	if err := c.guard(); err != nil {
		return err
	}
	if c.IsLastStep() {
		return ErrLastStep
	}
	failures, err := c.state.ValidateStep(c.index)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return &StepError{Step: c.index, Fields: failures}
	}
	c.index++
	return nil
}

// Prev steps back without validating. The index never goes below zero.
func (c *Controller) Prev() error {
	if err := c.guard(); err != nil {
		return err
	}
	if c.index > 0 {
		c.index--
	}
	return nil
}

// Submit validates the last step and then the whole form before handing a
// copy of the values to fn. A form is submitted at most once; a failing fn
// leaves it open for another attempt.
func (c *Controller) Submit(ctx context.Context, fn SubmitFunc) error {
	if err := c.guard(); err != nil {
		return err
	}
	if c.submitted {
		return ErrAlreadySubmitted
	}
	if !c.IsLastStep() {
		return ErrNotLastStep
	}
	failures, err := c.state.ValidateStep(c.index)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return &StepError{Step: c.index, Fields: failures}
	}
	if failures := c.state.ValidateAll(); len(failures) > 0 {
		return &StepError{Step: c.firstFailingStep(failures), Fields: failures}
	}
	if fn != nil {
		if err := fn(ctx, c.state.Values()); err != nil {
			return fmt.Errorf("stepper: submit: %w", err)
		}
	}
	c.submitted = true
	if c.timer != nil && c.timer.State() == session.StateRunning {
		_ = c.timer.Pause()
	}
	return nil
}

// SetValue stores a field value and returns its fresh validation result.
func (c *Controller) SetValue(id string, value any) (validation.Result, error) {
	if c.Expired() {
		return validation.Result{}, ErrSessionExpired
	}
	return c.state.SetValue(id, value)
}

// Schema returns the active schema.
func (c *Controller) Schema() schema.FormSchema {
	return c.state.Schema()
}

// State exposes the underlying form state.
func (c *Controller) State() *form.State {
	return c.state
}

// Values returns a copy of the current values.
func (c *Controller) Values() form.Values {
	return c.state.Values()
}

// CurrentStep returns the zero based step index.
func (c *Controller) CurrentStep() int {
	return c.index
}

// Step returns the step at the current index.
func (c *Controller) Step() schema.Step {
	return c.state.Schema().Steps[c.index]
}

// StepCount returns the number of steps.
func (c *Controller) StepCount() int {
	return c.state.Schema().StepCount()
}

func (c *Controller) IsFirstStep() bool {
	return c.index == 0
}

func (c *Controller) IsLastStep() bool {
	return c.index == c.StepCount()-1
}

// Submitted reports whether Submit completed.
func (c *Controller) Submitted() bool {
	return c.submitted
}

// Timed reports whether the active schema carries a custom session.
func (c *Controller) Timed() bool {
	return c.timer != nil
}

// HasStarted reports whether a timed session was started. Untimed forms are
// always considered started.
func (c *Controller) HasStarted() bool {
	return c.timer == nil || c.timer.Started()
}

// Expired reports whether the session countdown reached zero.
func (c *Controller) Expired() bool {
	return c.timer != nil && c.timer.Expired()
}

// Timer returns the session timer, or nil for untimed forms.
func (c *Controller) Timer() *session.Timer {
	return c.timer
}

func (c *Controller) guard() error {
	if c.timer == nil {
		return nil
	}
	switch c.timer.State() {
	case session.StateExpired:
		return ErrSessionExpired
	case session.StateNotStarted:
		return ErrSessionNotStarted
	}
	return nil
}

func (c *Controller) resetSession() error {
	if c.timer != nil {
		c.timer.Close()
		c.timer = nil
	}
	duration := c.state.Schema().SessionDuration
	if duration.Type != schema.SessionCustom {
		return nil
	}
	timer, err := session.New(duration.CustomMinutes, c.timerOptions...)
	if err != nil {
		return fmt.Errorf("stepper: session: %w", err)
	}
	c.timer = timer
	return nil
}

func (c *Controller) firstFailingStep(failures map[string]string) int {
	for i, step := range c.state.Schema().Steps {
		for _, field := range step.Fields {
			if _, ok := failures[field.ID]; ok {
				return i
			}
		}
	}
	return c.index
}
