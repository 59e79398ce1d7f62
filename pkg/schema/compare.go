package schema

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Equal reports whether two schemas describe the same form. Nil and empty
// slices compare equal so a schema decoded from JSON matches one built in
// code.
func Equal(a, b FormSchema) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// Diff returns a human readable difference, empty when Equal.
func Diff(a, b FormSchema) string {
	return cmp.Diff(a, b, cmpopts.EquateEmpty())
}

// Clone returns a deep copy so callers can hand the schema around without
// sharing slices or validation pointers.
func (s FormSchema) Clone() FormSchema {
	out := s
	if s.Steps == nil {
		return out
	}
	out.Steps = make([]Step, len(s.Steps))
	for i, step := range s.Steps {
		out.Steps[i] = step
		if step.Fields == nil {
			continue
		}
		out.Steps[i].Fields = make([]Field, len(step.Fields))
		for j, field := range step.Fields {
			out.Steps[i].Fields[j] = field.clone()
		}
	}
	return out
}

func (f Field) clone() Field {
	out := f
	if f.Options != nil {
		out.Options = make([]Option, len(f.Options))
		copy(out.Options, f.Options)
	}
	if f.Validation != nil {
		v := *f.Validation
		if f.Validation.MinLength != nil {
			v.MinLength = Int(*f.Validation.MinLength)
		}
		if f.Validation.MaxLength != nil {
			v.MaxLength = Int(*f.Validation.MaxLength)
		}
		if f.Validation.Min != nil {
			v.Min = Float(*f.Validation.Min)
		}
		if f.Validation.Max != nil {
			v.Max = Float(*f.Validation.Max)
		}
		if f.Validation.MaxSize != nil {
			v.MaxSize = Float(*f.Validation.MaxSize)
		}
		if f.Validation.Extensions != nil {
			v.Extensions = make([]string, len(f.Validation.Extensions))
			copy(v.Extensions, f.Validation.Extensions)
		}
		out.Validation = &v
	}
	return out
}
