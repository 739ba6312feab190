package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	msgEmailFormat    = "Please enter a valid email address"
	msgPasswordFormat = "Password has to have at minimum 8 characters with one lowercase letter, one uppercase letter, one number and one special character"
	msgPasswordLength = "Password must not be longer than 72 bytes"

	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

// Validator checks tagged structs and reports the first failure as an
// ErrValidation. It satisfies echo.Validator.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name[:1]) + fld.Name[1:]
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("tld", hasTLD)
	_ = v.RegisterValidation("password", strongPassword)
	_ = v.RegisterValidation("bcrypt", fitsBcrypt)
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, message(fields[0]))
	}
	return err
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email", "tld":
		return msgEmailFormat
	case "password":
		return msgPasswordFormat
	case "bcrypt":
		return msgPasswordLength
	case "required":
		return fe.Field() + " is required"
	case "min", "gte":
		if fe.Field() == "password" {
			return msgPasswordFormat
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

var inputs = NewValidator()

func hasTLD(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	at := strings.LastIndex(s, "@")
	return at >= 0 && strings.Contains(s[at+1:], ".")
}

func fitsBcrypt(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxPasswordBytes
}

// strongPassword wants a lowercase letter, an uppercase letter, a digit and
// one other printable character.
func strongPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsSpace(r):
			special = true
		}
	}
	return lower && upper && digit && special
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
