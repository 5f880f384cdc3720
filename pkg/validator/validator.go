package validator

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// passwordSymbols are the special characters a strong password must include one of
const passwordSymbols = "@$!%*?&"

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("digits10", validateDigits10)
	_ = v.RegisterValidation("strongpassword", validateStrongPassword)
	_ = v.RegisterValidation("isodate", validateISODate)
	_ = v.RegisterValidation("clock", validateClock)

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	messages := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				messages[field] = field + " is required"
			case "email":
				messages[field] = field + " must be a valid email address"
			case "min":
				messages[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				messages[field] = field + " must be at most " + e.Param() + " characters"
			case "len":
				messages[field] = field + " must have exactly " + e.Param() + " items"
			case "oneof":
				messages[field] = field + " must be one of: " + e.Param()
			case "digits10":
				messages[field] = field + " must be exactly 10 digits"
			case "strongpassword":
				messages[field] = field + " must have at least 8 characters, an uppercase letter, a digit and one of " + passwordSymbols
			case "isodate":
				messages[field] = field + " must be a date in YYYY-MM-DD format"
			case "clock":
				messages[field] = field + " must be a time in HH:MM format"
			default:
				messages[field] = field + " is invalid"
			}
		}
	}

	return messages
}

// IsStrongPassword applies the registration password policy
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	return hasUpper && hasDigit && hasSymbol
}

func validateDigits10(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	t, err := time.Parse("2006-01-02", s)
	return err == nil && t.Format("2006-01-02") == s
}

func validateClock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	t, err := time.Parse("15:04", s)
	return err == nil && t.Format("15:04") == s
}
