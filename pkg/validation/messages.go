package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// Messages renders the end-user text for each failing rule. The zero value is
// not usable; start from SpanishMessages and override what you need.
type Messages struct {
	Required       func(label string) string
	MinLength      func(label string, n int) string
	MaxLength      func(label string, n int) string
	Email          func(label string) string
	Pattern        func(label string) string
	InvalidPattern func(label string) string
	Number         func(label string) string
	Min            func(label string, n float64) string
	Max            func(label string, n float64) string
	MaxSize        func(label string, kb float64) string
	Extensions     func(label string, allowed []string) string
}

// SpanishMessages is the default catalog.
var SpanishMessages = Messages{
	Required: func(label string) string {
		return fmt.Sprintf("%s es requerido", label)
	},
	MinLength: func(label string, n int) string {
		return fmt.Sprintf("%s debe tener al menos %d caracteres", label, n)
	},
	MaxLength: func(label string, n int) string {
		return fmt.Sprintf("%s no puede tener más de %d caracteres", label, n)
	},
	Email: func(label string) string {
		return fmt.Sprintf("%s debe ser un email válido", label)
	},
	Pattern: func(label string) string {
		return fmt.Sprintf("%s no cumple con el formato requerido", label)
	},
	InvalidPattern: func(label string) string {
		return fmt.Sprintf("%s tiene un patrón de validación inválido", label)
	},
	Number: func(label string) string {
		return fmt.Sprintf("%s debe ser un número válido", label)
	},
	Min: func(label string, n float64) string {
		return fmt.Sprintf("%s debe ser mayor o igual a %s", label, formatNumber(n))
	},
	Max: func(label string, n float64) string {
		return fmt.Sprintf("%s debe ser menor o igual a %s", label, formatNumber(n))
	},
	MaxSize: func(label string, kb float64) string {
		return fmt.Sprintf("%s no puede ser mayor a %s KB", label, formatNumber(kb))
	},
	Extensions: func(label string, allowed []string) string {
		return fmt.Sprintf("%s debe ser uno de los siguientes tipos: %s", label, strings.Join(allowed, ", "))
	},
}

// EnglishMessages is provided for operator tooling and tests.
var EnglishMessages = Messages{
	Required: func(label string) string {
		return fmt.Sprintf("%s is required", label)
	},
	MinLength: func(label string, n int) string {
		return fmt.Sprintf("%s must be at least %d characters", label, n)
	},
	MaxLength: func(label string, n int) string {
		return fmt.Sprintf("%s cannot be longer than %d characters", label, n)
	},
	Email: func(label string) string {
		return fmt.Sprintf("%s must be a valid email", label)
	},
	Pattern: func(label string) string {
		return fmt.Sprintf("%s does not match the required format", label)
	},
	InvalidPattern: func(label string) string {
		return fmt.Sprintf("%s has an invalid validation pattern", label)
	},
	Number: func(label string) string {
		return fmt.Sprintf("%s must be a valid number", label)
	},
	Min: func(label string, n float64) string {
		return fmt.Sprintf("%s must be greater than or equal to %s", label, formatNumber(n))
	},
	Max: func(label string, n float64) string {
		return fmt.Sprintf("%s must be less than or equal to %s", label, formatNumber(n))
	},
	MaxSize: func(label string, kb float64) string {
		return fmt.Sprintf("%s cannot be larger than %s KB", label, formatNumber(kb))
	},
	Extensions: func(label string, allowed []string) string {
		return fmt.Sprintf("%s must be one of the following types: %s", label, strings.Join(allowed, ", "))
	},
}

// MessagesFor returns the catalog for a locale tag, defaulting to Spanish.
func MessagesFor(locale string) Messages {
	tag := strings.ToLower(strings.TrimSpace(locale))
	if strings.HasPrefix(tag, "en") {
		return EnglishMessages
	}
	return SpanishMessages
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
