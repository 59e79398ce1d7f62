package form

import (
	"fmt"

	"github.com/goliatone/go-formstep/pkg/schema"
	"github.com/goliatone/go-formstep/pkg/validation"
)

// State owns the value map and the per-field error messages for the schema
// currently being rendered. It has a single writer and is not safe for
// concurrent use.
type State struct {
	schema    schema.FormSchema
	loaded    bool
	values    Values
	errors    map[string]string
	validator *validation.Validator
}

// NewState loads s and seeds its defaults. A nil validator falls back to the
// Spanish catalog.
func NewState(s schema.FormSchema, v *validation.Validator) *State {
	if v == nil {
		v = validation.NewValidator()
	}
	st := &State{validator: v}
	st.Load(s)
	return st
}

// Load swaps the active schema. Defaults are re-derived, and errors cleared,
// only when the content differs from the loaded schema; loading an equal
// schema keeps in-progress input. It reports whether a reset happened.
func (s *State) Load(next schema.FormSchema) bool {
	if s.loaded && schema.Equal(s.schema, next) {
		return false
	}
	s.schema = next.Clone()
	s.loaded = true
	s.values = CreateDefaults(s.schema)
	s.errors = make(map[string]string)
	return true
}

// Schema returns the active schema.
func (s *State) Schema() schema.FormSchema {
	return s.schema
}

// Values returns a copy of the current value map.
func (s *State) Values() Values {
	return s.values.Clone()
}

// Value returns the current value for a field id.
func (s *State) Value(id string) (any, bool) {
	v, ok := s.values[id]
	return v, ok
}

// SetValue writes a value and re-validates that field so its message always
// reflects the latest input. Unknown ids are rejected.
func (s *State) SetValue(id string, value any) (validation.Result, error) {
	field, ok := s.schema.FieldByID(id)
	if !ok {
		return validation.Result{}, fmt.Errorf("form: unknown field %q", id)
	}
	s.values[id] = value
	return s.validate(field), nil
}

// ValidateField re-runs the rules for one field against its stored value.
func (s *State) ValidateField(id string) (validation.Result, error) {
	field, ok := s.schema.FieldByID(id)
	if !ok {
		return validation.Result{}, fmt.Errorf("form: unknown field %q", id)
	}
	return s.validate(field), nil
}

// ValidateStep validates every field of the step at index and returns the
// failing messages keyed by field id. An empty map means the step passes.
func (s *State) ValidateStep(index int) (map[string]string, error) {
	if index < 0 || index >= len(s.schema.Steps) {
		return nil, fmt.Errorf("form: step %d out of range", index)
	}
	failures := make(map[string]string)
	for _, field := range s.schema.Steps[index].Fields {
		if res := s.validate(field); !res.Valid {
			failures[field.ID] = res.Message
		}
	}
	return failures, nil
}

// ValidateAll validates every field across all steps.
func (s *State) ValidateAll() map[string]string {
	failures := make(map[string]string)
	for _, field := range s.schema.Fields() {
		if res := s.validate(field); !res.Valid {
			failures[field.ID] = res.Message
		}
	}
	return failures
}

// ErrorFor returns the last message recorded for a field.
func (s *State) ErrorFor(id string) string {
	return s.errors[id]
}

// Errors returns a copy of the recorded messages.
func (s *State) Errors() map[string]string {
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

func (s *State) validate(field schema.Field) validation.Result {
	res := s.validator.ValidateSchemaField(field, s.values[field.ID])
	if res.Valid {
		delete(s.errors, field.ID)
	} else {
		s.errors[field.ID] = res.Message
	}
	return res
}
