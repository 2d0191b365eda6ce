// Package validation checks decoded request bodies at the HTTP boundary.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError is one failed field rule.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidationErrors collects every failed rule of one request.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(v.Errors))
	for _, err := range v.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Validator wraps validator.Validate with JSON field names and readable messages.
type Validator struct {
	validate *validator.Validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the shared validator.
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a validator.
func NewValidator() *Validator {
	v := &Validator{validate: validator.New()}

	// Use JSON tag names in error messages
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.validate.RegisterValidation("notblank", notBlank)
	return v
}

// Validate runs struct tag validation on i.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := ValidationErrors{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, e := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldPath(e),
			Message: message(e.Tag(), e.Param()),
			Code:    strings.ToUpper(e.Tag()),
		})
	}
	return out
}

// fieldPath drops the root struct name: "EventRequest.note_id" -> "note_id".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func message(tag, param string) string {
	switch tag {
	case "required", "notblank":
		return "This field is required"
	case "required_if":
		field, value, _ := strings.Cut(param, " ")
		return fmt.Sprintf("This field is required when %s is %s", strings.ToLower(field), value)
	case "max":
		return fmt.Sprintf("Must be at most %s characters", param)
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(param, " ", ", "))
	default:
		return fmt.Sprintf("Failed %s validation", tag)
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
