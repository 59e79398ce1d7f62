package submission

import (
	"github.com/goliatone/go-formstep/pkg/schema"
)

const (
	defaultMaxLength   = 20000
	defaultFileType    = "pdf"
	submitButtonLabel  = "Continuar"
	componentTextInput = "TextInput"
	componentTextArea  = "TextArea"
	componentFile      = "File"
	componentSelect    = "Select"
)

// FieldConfig carries component specific settings. Only the keys relevant
// to a component are populated.
type FieldConfig struct {
	Options   []schema.Option `json:"options,omitempty"`
	MinLength *int            `json:"minLength,omitempty"`
	MaxLength *int            `json:"maxLength,omitempty"`
	Label     string          `json:"label,omitempty"`
	FileType  string          `json:"fileType,omitempty"`
	Min       *float64        `json:"min,omitempty"`
	Max       *float64        `json:"max,omitempty"`
}

// ConfigField is one custom field of a published form.
type ConfigField struct {
	Label      string       `json:"label"`
	Slug       string       `json:"slug"`
	Component  string       `json:"component"`
	Section    string       `json:"section"`
	IsRequired bool         `json:"isRequired"`
	Config     *FieldConfig `json:"config,omitempty"`
}

type ButtonLabel struct {
	Label string `json:"label"`
}

type Section struct {
	Slug   string   `json:"slug"`
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

type Page struct {
	Slug            string      `json:"slug"`
	Name            string      `json:"name"`
	SubmitButton    ButtonLabel `json:"submitButton"`
	DescriptionPage ButtonLabel `json:"descriptionPage"`
	Sections        []Section   `json:"sections"`
}

type Pages struct {
	BeforeGeneralInformation []Page `json:"beforeGeneralInformation"`
	AfterGeneralInformation  []Page `json:"afterGeneralInformation"`
}

// PagesConfig is the publication payload for a form's custom pages.
type PagesConfig struct {
	Fields []ConfigField `json:"fields"`
	Pages  Pages         `json:"pages"`
}

// Component maps a field type to the onboarding UI component.
func Component(t schema.FieldType) string {
	switch t {
	case schema.FieldTypeTextArea:
		return componentTextArea
	case schema.FieldTypeFile:
		return componentFile
	case schema.FieldTypeSelect:
		return componentSelect
	default:
		return componentTextInput
	}
}

// CustomPagesConfig builds the custom pages payload. Predefined fields are
// collected by the account API itself and are left out; each step with at
// least one custom field becomes a page with a single section.
func CustomPagesConfig(s schema.FormSchema) PagesConfig {
	out := PagesConfig{
		Fields: []ConfigField{},
		Pages: Pages{
			BeforeGeneralInformation: []Page{},
			AfterGeneralInformation:  []Page{},
		},
	}

	for _, step := range s.Steps {
		slugs := make([]string, 0, len(step.Fields))
		for _, field := range step.Fields {
			if IsPredefined(field.ID) {
				continue
			}
			out.Fields = append(out.Fields, configField(step, field))
			slugs = append(slugs, field.ID)
		}
		if len(slugs) == 0 {
			continue
		}
		out.Pages.AfterGeneralInformation = append(out.Pages.AfterGeneralInformation, Page{
			Slug:            step.ID,
			Name:            step.Title,
			SubmitButton:    ButtonLabel{Label: submitButtonLabel},
			DescriptionPage: ButtonLabel{Label: step.Title},
			Sections: []Section{{
				Slug:   step.ID,
				Name:   step.Title,
				Fields: slugs,
			}},
		})
	}
	return out
}

func configField(step schema.Step, field schema.Field) ConfigField {
	rules := field.Validation
	if rules == nil {
		rules = &schema.FieldValidation{}
	}
	out := ConfigField{
		Label:      field.Label,
		Slug:       field.ID,
		Component:  Component(field.Type),
		Section:    step.ID,
		IsRequired: rules.Required,
	}

	switch field.Type {
	case schema.FieldTypeSelect:
		out.Config = &FieldConfig{Options: append([]schema.Option{}, field.Options...)}
	case schema.FieldTypeText, schema.FieldTypeEmail, schema.FieldTypeTel, schema.FieldTypeTextArea:
		minLength, maxLength := 0, defaultMaxLength
		if rules.MinLength != nil {
			minLength = *rules.MinLength
		}
		if rules.MaxLength != nil && *rules.MaxLength > 0 {
			maxLength = *rules.MaxLength
		}
		out.Config = &FieldConfig{MinLength: &minLength, MaxLength: &maxLength}
	case schema.FieldTypeFile:
		fileType := defaultFileType
		if len(rules.Extensions) > 0 {
			fileType = rules.Extensions[0]
		}
		out.Config = &FieldConfig{Label: field.Label, FileType: fileType}
	case schema.FieldTypeNumber:
		out.Config = &FieldConfig{Min: rules.Min, Max: rules.Max}
	}
	return out
}
