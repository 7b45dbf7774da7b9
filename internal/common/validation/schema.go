package validation

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed scholarship.schema.json
var scholarshipSchema []byte

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// GetErrorMessages returns "field: message" for every error.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}

// SchemaValidator validates documents against one compiled JSON schema.
// It is safe for concurrent use.
type SchemaValidator struct {
	schema *gojsonschema.Schema
}

// NewScholarshipValidator compiles the import record schema. An empty path
// selects the built-in schema.
func NewScholarshipValidator(path string) (*SchemaValidator, error) {
	raw := scholarshipSchema
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", path, err)
		}
		raw = data
	}
	return NewSchemaValidator(gojsonschema.NewBytesLoader(raw))
}

func NewSchemaValidator(loader gojsonschema.JSONLoader) (*SchemaValidator, error) {
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// ValidateBytes validates a raw JSON document.
func (v *SchemaValidator) ValidateBytes(doc []byte) *ValidationResult {
	return v.validate(gojsonschema.NewBytesLoader(doc))
}

// ValidateObject validates an already decoded document.
func (v *SchemaValidator) ValidateObject(doc interface{}) *ValidationResult {
	return v.validate(gojsonschema.NewGoLoader(doc))
}

func (v *SchemaValidator) validate(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := v.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "INVALID_JSON",
		}}}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// E.164, the only format SNS accepts for direct SMS.
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
