package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/goliatone/go-formstep/pkg/schema"
)

// PatternTimeout bounds a single regex rule match. Rule patterns use
// JavaScript syntax and may backtrack.
const PatternTimeout = 100 * time.Millisecond

var emailPattern = regexp2.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`, regexp2.ECMAScript)

// FileInfo is the view of an uploaded file the validator needs. os.FileInfo
// satisfies it, as does form.File.
type FileInfo interface {
	Name() string
	Size() int64
}

// Result is the outcome of validating one value. Only the first failing
// rule's message is reported.
type Result struct {
	Valid   bool   `json:"isValid"`
	Message string `json:"errorMessage,omitempty"`
}

func valid() Result {
	return Result{Valid: true}
}

func invalid(message string) Result {
	return Result{Valid: false, Message: message}
}

// Validator dispatches per-type field rules. It is safe for concurrent use
// and caches compiled regex rules.
type Validator struct {
	messages Messages
	patterns sync.Map // string -> *regexp2.Regexp or error
}

// Option configures a Validator.
type Option func(*Validator)

// WithMessages swaps the message catalog.
func WithMessages(messages Messages) Option {
	return func(v *Validator) {
		v.messages = mergeMessages(v.messages, messages)
	}
}

// NewValidator builds a Validator using the Spanish catalog by default.
func NewValidator(options ...Option) *Validator {
	v := &Validator{messages: SpanishMessages}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

var defaultValidator = NewValidator()

// ValidateField validates value against rules using the default catalog.
func ValidateField(value any, fieldType schema.FieldType, rules *schema.FieldValidation, label string) Result {
	return defaultValidator.Validate(value, fieldType, rules, label)
}

// ValidateSchemaField is shorthand for validating a value against a schema
// field's own type, rules and label.
func (v *Validator) ValidateSchemaField(field schema.Field, value any) Result {
	return v.Validate(value, field.Type, field.Validation, field.Label)
}

// Validate runs the rules in a fixed order: required, blank short-circuit,
// then the type specific checks. The first failure wins.
func (v *Validator) Validate(value any, fieldType schema.FieldType, rules *schema.FieldValidation, label string) Result {
	if rules == nil {
		rules = &schema.FieldValidation{}
	}

	blank := isBlank(value)
	if rules.Required && blank {
		return invalid(v.messages.Required(label))
	}
	if blank {
		return valid()
	}

	switch {
	case fieldType.IsTextual():
		return v.validateText(stringValue(value), rules, label)
	case fieldType == schema.FieldTypeNumber:
		return v.validateNumber(value, rules, label)
	case fieldType == schema.FieldTypeFile:
		if file, ok := value.(FileInfo); ok {
			return v.validateFile(file, rules, label)
		}
	}
	return valid()
}

func (v *Validator) validateText(text string, rules *schema.FieldValidation, label string) Result {
	length := utf8.RuneCountInString(text)
	if rules.MinLength != nil && *rules.MinLength > 0 && length < *rules.MinLength {
		return invalid(v.messages.MinLength(label, *rules.MinLength))
	}
	if rules.MaxLength != nil && *rules.MaxLength > 0 && length > *rules.MaxLength {
		return invalid(v.messages.MaxLength(label, *rules.MaxLength))
	}
	if rules.Email {
		if ok, err := emailPattern.MatchString(text); err != nil || !ok {
			return invalid(v.messages.Email(label))
		}
	}
	if rules.Regex != "" {
		re, err := v.compile(rules.Regex)
		if err != nil {
			return invalid(v.messages.InvalidPattern(label))
		}
		// a match that times out counts as a mismatch
		if ok, err := re.MatchString(text); err != nil || !ok {
			return invalid(v.messages.Pattern(label))
		}
	}
	return valid()
}

func (v *Validator) validateNumber(value any, rules *schema.FieldValidation, label string) Result {
	n, ok := toNumber(value)
	if !ok {
		return invalid(v.messages.Number(label))
	}
	if rules.Min != nil && n < *rules.Min {
		return invalid(v.messages.Min(label, *rules.Min))
	}
	if rules.Max != nil && n > *rules.Max {
		return invalid(v.messages.Max(label, *rules.Max))
	}
	return valid()
}

func (v *Validator) validateFile(file FileInfo, rules *schema.FieldValidation, label string) Result {
	if rules.MaxSize != nil && *rules.MaxSize > 0 && float64(file.Size())/1024 > *rules.MaxSize {
		return invalid(v.messages.MaxSize(label, *rules.MaxSize))
	}
	if len(rules.Extensions) > 0 && !extensionAllowed(file.Name(), rules.Extensions) {
		return invalid(v.messages.Extensions(label, rules.Extensions))
	}
	return valid()
}

func (v *Validator) compile(pattern string) (*regexp2.Regexp, error) {
	if cached, ok := v.patterns.Load(pattern); ok {
		switch c := cached.(type) {
		case *regexp2.Regexp:
			return c, nil
		case error:
			return nil, c
		}
	}
	re, err := CompilePattern(pattern)
	if err != nil {
		v.patterns.Store(pattern, err)
		return nil, err
	}
	v.patterns.Store(pattern, re)
	return re, nil
}

// CompilePattern compiles a regex rule with ECMAScript semantics, so
// lookaheads and backreferences behave as they do in the browser.
func CompilePattern(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = PatternTimeout
	return re, nil
}

// ExtensionOf returns the lower-cased extension after the last dot, without
// the dot. Names without a dot have no extension.
func ExtensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

func extensionAllowed(name string, allowed []string) bool {
	ext := ExtensionOf(name)
	if ext == "" {
		return false
	}
	for _, candidate := range allowed {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(candidate), "."))
		if normalized == ext {
			return true
		}
	}
	return false
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case FileInfo:
		if isNilPointer(v) {
			return true
		}
		return v.Name() == ""
	default:
		return isNilPointer(v)
	}
}

func isNilPointer(value any) bool {
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func toNumber(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = parsed
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case float32:
		n = float64(v)
	case float64:
		n = v
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func mergeMessages(base, override Messages) Messages {
	out := base
	if override.Required != nil {
		out.Required = override.Required
	}
	if override.MinLength != nil {
		out.MinLength = override.MinLength
	}
	if override.MaxLength != nil {
		out.MaxLength = override.MaxLength
	}
	if override.Email != nil {
		out.Email = override.Email
	}
	if override.Pattern != nil {
		out.Pattern = override.Pattern
	}
	if override.InvalidPattern != nil {
		out.InvalidPattern = override.InvalidPattern
	}
	if override.Number != nil {
		out.Number = override.Number
	}
	if override.Min != nil {
		out.Min = override.Min
	}
	if override.Max != nil {
		out.Max = override.Max
	}
	if override.MaxSize != nil {
		out.MaxSize = override.MaxSize
	}
	if override.Extensions != nil {
		out.Extensions = override.Extensions
	}
	return out
}
