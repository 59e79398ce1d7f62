package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formstep/pkg/schema"
)

// SchemaIssue represents a structural problem with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i SchemaIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// SchemaValidationResult captures structural validation outcomes. Schema is
// only set when Valid is true.
type SchemaValidationResult struct {
	Valid  bool               `json:"isValid"`
	Issues []SchemaIssue      `json:"issues"`
	Schema *schema.FormSchema `json:"schema"`
}

// Err folds the issues into a single error, nil when valid.
func (r SchemaValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	messages := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		messages = append(messages, issue.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidSchema, strings.Join(messages, "; "))
}

// ErrInvalidSchema is wrapped by SchemaValidationResult.Err.
var ErrInvalidSchema = errors.New("validation: invalid form schema")

var (
	structValidatorOnce sync.Once
	structValidator     *validator.Validate
)

func getStructValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New()
		structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return structValidator
}

// ValidateFormSchema decodes a JSON or YAML candidate and checks its
// structure. It never repairs the candidate.
func ValidateFormSchema(raw []byte) SchemaValidationResult {
	candidate, err := schema.Decode(raw, schema.SniffFormat(raw))
	if err != nil {
		return SchemaValidationResult{
			Issues: []SchemaIssue{{Message: err.Error()}},
		}
	}
	return ValidateSchema(candidate)
}

// ValidateDocument validates a loaded document.
func ValidateDocument(doc schema.Document) SchemaValidationResult {
	candidate, err := doc.Decode()
	if err != nil {
		return SchemaValidationResult{
			Issues: []SchemaIssue{{Path: doc.Location(), Message: err.Error()}},
		}
	}
	return ValidateSchema(candidate)
}

// ValidateSchema checks a decoded candidate: required top-level fields, at
// least one step, at least one field per step, known field types, select
// options, the session duration shape, unique field ids and coherent bounds.
func ValidateSchema(candidate schema.FormSchema) SchemaValidationResult {
	issues := structIssues(candidate)
	issues = append(issues, semanticIssues(candidate)...)

	if len(issues) > 0 {
		return SchemaValidationResult{Issues: issues}
	}

	out := candidate.Clone()
	return SchemaValidationResult{
		Valid:  true,
		Issues: []SchemaIssue{},
		Schema: &out,
	}
}

func structIssues(candidate schema.FormSchema) []SchemaIssue {
	err := getStructValidator().Struct(candidate)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []SchemaIssue{{Message: err.Error()}}
	}

	issues := make([]SchemaIssue, 0, len(verrs))
	for _, fe := range verrs {
		path := trimRootNamespace(fe.Namespace())
		issues = append(issues, SchemaIssue{
			Path:    path,
			Field:   fieldIDAt(candidate, path),
			Message: tagMessage(fe),
		})
	}
	return issues
}

func semanticIssues(candidate schema.FormSchema) []SchemaIssue {
	var issues []SchemaIssue

	switch candidate.SessionDuration.Type {
	case schema.SessionCustom:
		if candidate.SessionDuration.CustomMinutes <= 0 {
			issues = append(issues, SchemaIssue{
				Path:    "sessionDuration.customMinutes",
				Message: "must be a positive number of minutes for custom sessions",
			})
		}
	case schema.SessionUnlimited:
		if candidate.SessionDuration.CustomMinutes != 0 {
			issues = append(issues, SchemaIssue{
				Path:    "sessionDuration.customMinutes",
				Message: "is only allowed for custom sessions",
			})
		}
	}

	seen := make(map[string]string)
	for si, step := range candidate.Steps {
		for fi, field := range step.Fields {
			path := fmt.Sprintf("steps[%d].fields[%d]", si, fi)

			if field.ID != "" {
				if previous, dup := seen[field.ID]; dup {
					issues = append(issues, SchemaIssue{
						Path:    path + ".id",
						Field:   field.ID,
						Message: fmt.Sprintf("duplicates the field id declared at %s", previous),
					})
				} else {
					seen[field.ID] = path
				}
			}

			if field.Type == schema.FieldTypeSelect && len(field.Options) == 0 {
				issues = append(issues, SchemaIssue{
					Path:    path + ".options",
					Field:   field.ID,
					Message: "select fields require at least one option",
				})
			}
			if field.Type != schema.FieldTypeSelect && len(field.Options) > 0 {
				issues = append(issues, SchemaIssue{
					Path:    path + ".options",
					Field:   field.ID,
					Message: "options are only allowed on select fields",
				})
			}

			issues = append(issues, ruleIssues(path, field)...)
		}
	}
	return issues
}

func ruleIssues(path string, field schema.Field) []SchemaIssue {
	rules := field.Validation
	if rules == nil {
		return nil
	}
	var issues []SchemaIssue
	add := func(suffix, message string) {
		issues = append(issues, SchemaIssue{
			Path:    path + ".validation" + suffix,
			Field:   field.ID,
			Message: message,
		})
	}

	if rules.MinLength != nil && rules.MaxLength != nil && *rules.MinLength > *rules.MaxLength {
		add(".minLength", "must not exceed maxLength")
	}
	if rules.Min != nil && rules.Max != nil && *rules.Min > *rules.Max {
		add(".min", "must not exceed max")
	}
	if rules.MaxSize != nil && *rules.MaxSize <= 0 {
		add(".maxSize", "must be a positive number of KB")
	}
	for i, ext := range rules.Extensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			add(fmt.Sprintf(".extensions[%d]", i), "must not be empty")
		}
	}
	if rules.Regex != "" {
		if _, err := CompilePattern(rules.Regex); err != nil {
			add(".regex", "is not a valid regular expression")
		}
	}
	return issues
}

func trimRootNamespace(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

var fieldPathPattern = regexp.MustCompile(`^steps\[(\d+)\]\.fields\[(\d+)\]`)

func fieldIDAt(candidate schema.FormSchema, path string) string {
	m := fieldPathPattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	var si, fi int
	if _, err := fmt.Sscanf(m[1]+" "+m[2], "%d %d", &si, &fi); err != nil {
		return ""
	}
	if si >= len(candidate.Steps) || fi >= len(candidate.Steps[si].Fields) {
		return ""
	}
	return candidate.Steps[si].Fields[fi].ID
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
