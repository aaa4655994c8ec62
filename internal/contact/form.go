package contact

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Submission is the data posted by the contact form.
type Submission struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Subject string `form:"subject" json:"subject"`
	Message string `form:"message" json:"message"`
}

// Normalize trims surrounding whitespace from every field.
func (s *Submission) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Message = strings.TrimSpace(s.Message)
}

// Validate checks required fields and lengths. Failures are returned as a
// *ValidationError keyed by form field name.
func (s Submission) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.RuneLength(0, 120)),
		validation.Field(&s.Email, validation.Required, validation.RuneLength(0, 254), is.EmailFormat),
		validation.Field(&s.Subject, validation.RuneLength(0, 200)),
		validation.Field(&s.Message, validation.Required),
	)
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for field, fe := range fieldErrs {
		ve.Fields[field] = fe.Error()
	}
	return ve
}

// ValidationError carries per-field messages for re-displaying the form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid contact submission: " + strings.Join(parts, "; ")
}
