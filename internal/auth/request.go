package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type SignInRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type SignUpRequest struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// FieldError is a message meant for the form field it names.
type FieldError struct {
	Field   string
	Message string
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Message returns the message for field, or "" when the field is valid.
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

var signInMessages = map[string]string{
	"Email.required":    "Enter your email",
	"Email.email":       "Enter a valid email address",
	"Password.required": "Enter your password",
}

var signUpMessages = map[string]string{
	"Name.required":     "Enter your full name",
	"Email.required":    "Enter your email",
	"Email.email":       "Enter a valid email address",
	"Password.required": "Create a password",
	"Password.min":      "Password must be at least 6 characters",
}

func (r *SignInRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *SignUpRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

func (r SignInRequest) Validate() error {
	r.normalize()
	return check(r, signInMessages)
}

func (r SignUpRequest) Validate() error {
	r.normalize()
	return check(r, signUpMessages)
}

func check(req any, messages map[string]string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
