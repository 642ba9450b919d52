package resume

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"resumeforge/internal/errors"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FieldError is one failed required-field check, reported next to the field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CheckRequired runs the checks that gate publishing and exporting: a name, a
// well-formed email and at least one skill keyword.
func CheckRequired(doc *Document) []FieldError {
	var out []FieldError
	if strings.TrimSpace(doc.Basics.Name) == "" {
		out = append(out, FieldError{Field: "basics.name", Message: "name is required"})
	}
	email := strings.TrimSpace(doc.Basics.Email)
	switch {
	case email == "":
		out = append(out, FieldError{Field: "basics.email", Message: "email is required"})
	case !emailPattern.MatchString(email):
		out = append(out, FieldError{Field: "basics.email", Message: "email is not a valid address"})
	}
	hasSkill := false
	for _, s := range doc.Skills {
		for _, k := range s.Keywords {
			if strings.TrimSpace(k) != "" {
				hasSkill = true
			}
		}
	}
	if !hasSkill {
		out = append(out, FieldError{Field: "skills", Message: "at least one skill is required"})
	}
	return out
}

// RequireFields returns a validation error listing every failed check, or nil.
func RequireFields(doc *Document) error {
	problems := CheckRequired(doc)
	if len(problems) == 0 {
		return nil
	}
	msgs := make([]string, len(problems))
	for i, p := range problems {
		msgs[i] = p.Message
	}
	return errors.NewValidationError(errors.ErrCodeMissingField,
		strings.Join(msgs, "; "), nil).
		WithContext("fields", problems)
}

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	})
	return schema, schemaErr
}

// ValidateSchema checks the document's shape against the embedded JSON
// schema and collects every violation into a single error.
func ValidateSchema(doc *Document) error {
	return validateWith(gojsonschema.NewGoLoader(doc))
}

// ValidateRaw checks arbitrary JSON against the schema before it is decoded.
func ValidateRaw(raw []byte) error {
	return validateWith(gojsonschema.NewBytesLoader(raw))
}

func validateWith(loader gojsonschema.JSONLoader) error {
	s, err := loadSchema()
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeSchemaInvalid, "resume schema failed to load", err)
	}
	res, err := s.Validate(loader)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeSchemaInvalid, "resume could not be validated", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := ""
	for _, e := range res.Errors() {
		msgs += fmt.Sprintf("%s; ", e.String())
	}
	return errors.NewValidationError(errors.ErrCodeSchemaInvalid,
		"schema validation failed: "+strings.TrimSuffix(msgs, "; "), nil).
		WithContext("violations", len(res.Errors()))
}
