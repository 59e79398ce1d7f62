package schema

// FieldType discriminates the input kinds a Field can render as.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeTextArea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeFile     FieldType = "file"
	FieldTypeNumber   FieldType = "number"
)

// FieldTypes lists every known discriminant in declaration order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypeTel,
	FieldTypeTextArea,
	FieldTypeSelect,
	FieldTypeFile,
	FieldTypeNumber,
}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsTextual reports whether the type accepts free text and therefore honours
// length, email and regex rules.
func (t FieldType) IsTextual() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypeTel, FieldTypeTextArea:
		return true
	default:
		return false
	}
}

// SessionType discriminates SessionDuration.
type SessionType string

const (
	SessionUnlimited SessionType = "unlimited"
	SessionCustom    SessionType = "custom"
)

// AccountType identifies the onboarding account kind a schema targets.
type AccountType string

const (
	AccountTypePF AccountType = "PF"
	AccountTypePM AccountType = "PM"
)

// FormSchema describes a form as an ordered sequence of steps. It is treated
// as an immutable value once loaded.
type FormSchema struct {
	ID              string          `json:"id" yaml:"id" validate:"required"`
	Title           string          `json:"title" yaml:"title" validate:"required"`
	Description     string          `json:"description,omitempty" yaml:"description,omitempty"`
	AccountType     AccountType     `json:"accountType,omitempty" yaml:"accountType,omitempty" validate:"omitempty,oneof=PF PM"`
	SessionDuration SessionDuration `json:"sessionDuration" yaml:"sessionDuration"`
	Steps           []Step          `json:"steps" yaml:"steps" validate:"required,min=1,dive"`
}

// Step is an ordered page of fields.
type Step struct {
	ID     string  `json:"id" yaml:"id" validate:"required"`
	Title  string  `json:"title" yaml:"title" validate:"required"`
	Fields []Field `json:"fields" yaml:"fields" validate:"required,min=1,dive"`
}

// Field is a single typed input. Options only apply to select fields.
type Field struct {
	ID         string           `json:"id" yaml:"id" validate:"required"`
	Label      string           `json:"label" yaml:"label" validate:"required"`
	Type       FieldType        `json:"type" yaml:"type" validate:"required,oneof=text email tel textarea select file number"`
	Validation *FieldValidation `json:"validation,omitempty" yaml:"validation,omitempty"`
	Options    []Option         `json:"options,omitempty" yaml:"options,omitempty" validate:"omitempty,dive"`
}

// Option is a select choice.
type Option struct {
	Label string `json:"label" yaml:"label" validate:"required"`
	Value string `json:"value" yaml:"value" validate:"required"`
}

// FieldValidation holds the optional per-type constraints. Numeric bounds are
// pointers so zero stays a meaningful bound; MaxSize is expressed in KB.
type FieldValidation struct {
	Required   bool     `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength  *int     `json:"minLength,omitempty" yaml:"minLength,omitempty" validate:"omitempty,gte=0"`
	MaxLength  *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty" validate:"omitempty,gte=0"`
	Regex      string   `json:"regex,omitempty" yaml:"regex,omitempty"`
	Email      bool     `json:"email,omitempty" yaml:"email,omitempty"`
	Min        *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max        *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MaxSize    *float64 `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// SessionDuration is either unlimited or a custom number of minutes.
type SessionDuration struct {
	Type          SessionType `json:"type" yaml:"type" validate:"required,oneof=unlimited custom"`
	CustomMinutes int         `json:"customMinutes,omitempty" yaml:"customMinutes,omitempty"`
}

// Timed reports whether the session carries a countdown.
func (d SessionDuration) Timed() bool {
	return d.Type == SessionCustom && d.CustomMinutes > 0
}

// Required reports whether the field must carry a non-blank value.
func (f Field) Required() bool {
	return f.Validation != nil && f.Validation.Required
}

// Fields returns every field across every step in declaration order.
func (s FormSchema) Fields() []Field {
	var out []Field
	for _, step := range s.Steps {
		out = append(out, step.Fields...)
	}
	return out
}

// FieldByID looks up a field by id across all steps.
func (s FormSchema) FieldByID(id string) (Field, bool) {
	for _, step := range s.Steps {
		for _, field := range step.Fields {
			if field.ID == id {
				return field, true
			}
		}
	}
	return Field{}, false
}

// StepCount returns the number of steps.
func (s FormSchema) StepCount() int {
	return len(s.Steps)
}

// Int returns a pointer to v. Handy for building validations in code.
func Int(v int) *int {
	return &v
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
