// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema.
type Schema struct {
	schema *gojsonschema.Schema
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Compile parses a JSON schema document.
func Compile(schemaJSON string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(schemaJSON string) *Schema {
	s, err := Compile(schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a decoded JSON document (maps, slices, scalars) or any Go
// value that marshals to one.
func (s *Schema) Validate(doc interface{}) *ValidationResult {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_DOCUMENT"}},
		}
	}

	out := &ValidationResult{Valid: result.Valid(), Errors: []ValidationError{}}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, convert(e))
	}
	return out
}

// convert maps a schema violation to the field/code shape returned to callers.
// Required-property errors report the missing property, not its parent.
func convert(e gojsonschema.ResultError) ValidationError {
	field := e.Field()
	code := strings.ToUpper(e.Type())
	switch e.Type() {
	case "required":
		if prop, ok := e.Details()["property"].(string); ok {
			field = join(field, prop)
		}
		code = "MISSING_REQUIRED"
	case "invalid_type":
		code = "INVALID_TYPE"
	case "string_gte", "string_lte", "pattern", "format":
		code = "INVALID_FORMAT"
	}
	return ValidationError{Field: field, Message: e.Description(), Code: code}
}

func join(parent, prop string) string {
	if parent == "" || parent == "(root)" {
		return prop
	}
	return parent + "." + prop
}

// Add appends a field error and marks the result invalid.
func (vr *ValidationResult) Add(field, code, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Code: code, Message: message})
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{6,18}[0-9]$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone accepts local and international numbers with common separators.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
