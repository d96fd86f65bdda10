package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/pkg/auth"
	"github.com/go-playground/validator/v10"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 50
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// Shape check only; the server is authoritative.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Global validator instance with the directory's custom tags registered
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// IsValidUsername reports whether s is 3–50 characters of [a-zA-Z0-9_-].
func IsValidUsername(s string) bool {
	if len(s) < MinUsernameLen || len(s) > MaxUsernameLen {
		return false
	}
	return usernamePattern.MatchString(s)
}

// IsValidEmail reports whether s has the shape local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateCreate checks a create payload and returns the first unmet rule.
func ValidateCreate(c models.UserCreate) error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return &models.ValidationError{
				Field:  ve[0].Field(),
				Reason: formatValidationError(ve[0]),
			}
		}
		return &models.ValidationError{Reason: err.Error()}
	}
	return nil
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "username", "emailshape":
		return formatTag(fe.Tag())
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// Mode selects which form rules apply.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// FormFields is the sampled state of an account form. In edit mode an empty
// field means "leave unchanged".
type FormFields struct {
	Username string
	Email    string
	Password string
}

// IsFormValid reports whether the form may be submitted.
func IsFormValid(mode Mode, f FormFields) bool {
	return CheckForm(mode, f) == nil
}

// CheckForm returns the first unmet rule as a *models.ValidationError, or nil.
func CheckForm(mode Mode, f FormFields) error {
	if mode == ModeCreate {
		if !IsValidUsername(f.Username) {
			return &models.ValidationError{Field: "username", Reason: formatTag("username")}
		}
		if !IsValidEmail(f.Email) {
			return &models.ValidationError{Field: "email", Reason: formatTag("emailshape")}
		}
		if len(f.Password) < auth.MinFormPasswordLen {
			return &models.ValidationError{Field: "password", Reason: passwordTooShort()}
		}
		return nil
	}

	if f.Email != "" && !IsValidEmail(f.Email) {
		return &models.ValidationError{Field: "email", Reason: formatTag("emailshape")}
	}
	if f.Password != "" && len(f.Password) < auth.MinFormPasswordLen {
		return &models.ValidationError{Field: "password", Reason: passwordTooShort()}
	}
	return nil
}

func formatTag(tag string) string {
	switch tag {
	case "username":
		return fmt.Sprintf("must be %d-%d characters of letters, digits, '_' or '-'", MinUsernameLen, MaxUsernameLen)
	case "emailshape":
		return "must be a valid email address"
	}
	return fmt.Sprintf("failed validation: %s", tag)
}

func passwordTooShort() string {
	return fmt.Sprintf("must have a minimum of %d characters", auth.MinFormPasswordLen)
}
