// Package validation provides small composable field validators shared by the
// account and analysis forms. A Validator returns an empty string when the
// value is acceptable and a user-facing message otherwise.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DateLayout is the wire and input format for birth dates.
const DateLayout = "2006-01-02"

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// Required validates that a field is not empty and does not exceed maxLen characters.
// Uses rune count for proper Unicode support.
func Required(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required."
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
		}
		return ""
	}
}

// MinLen validates that a non-empty field has at least minLen characters.
func MinLen(fieldName string, minLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v != "" && utf8.RuneCountInString(v) < minLen {
			return fmt.Sprintf("%s must be at least %d characters.", fieldName, minLen)
		}
		return ""
	}
}

// IntRange validates that a field is a valid integer between minVal and maxVal.
func IntRange(fieldName string, minVal, maxVal int) Validator {
	return func(v string) string {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fieldName + " must be a number."
		}
		if i < minVal || i > maxVal {
			return fmt.Sprintf("%s must be between %d and %d.", fieldName, minVal, maxVal)
		}
		return ""
	}
}

// Pattern validates that a field matches the provided regular expression.
func Pattern(fieldName string, re *regexp.Regexp) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if !re.MatchString(v) {
			return fieldName + " has an invalid format."
		}
		return ""
	}
}

// Optional validates that an optional field does not exceed maxLen characters if provided.
// Uses rune count for proper Unicode support.
func Optional(fieldName string, maxLen int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(strings.TrimSpace(v)) > maxLen {
			return fmt.Sprintf("%s cannot exceed %d characters.", fieldName, maxLen)
		}
		return ""
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email validates a loose RFC-ish address shape.
func Email(fieldName string) Validator {
	return func(v string) string {
		if !emailRe.MatchString(strings.TrimSpace(v)) {
			return fieldName + " format is invalid."
		}
		return ""
	}
}

// Password requires at least minLen characters including a letter and a digit.
func Password(fieldName string, minLen int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(v) < minLen {
			return fmt.Sprintf("%s must be at least %d characters.", fieldName, minLen)
		}
		var letter, digit bool
		for _, r := range v {
			switch {
			case r <= unicode.MaxASCII && unicode.IsLetter(r):
				letter = true
			case r >= '0' && r <= '9':
				digit = true
			}
		}
		if !letter || !digit {
			return fieldName + " must include letters and numbers."
		}
		return ""
	}
}

// ASCIIPrintable accepts only half-width printable characters 0x21-0x7E.
// Spaces and full-width characters are rejected.
func ASCIIPrintable(fieldName string) Validator {
	return func(v string) string {
		for _, r := range v {
			if r < 0x21 || r > 0x7E {
				return fieldName + " may only contain half-width letters, digits and symbols."
			}
		}
		return ""
	}
}

// NotFutureDate validates a DateLayout date that is not later than now().
// The date is interpreted at midnight in now's location.
func NotFutureDate(fieldName string, now func() time.Time) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required."
		}
		ref := now()
		d, err := time.ParseInLocation(DateLayout, v, ref.Location())
		if err != nil {
			return fieldName + " must be a valid date (YYYY-MM-DD)."
		}
		if d.After(ref) {
			return fieldName + " cannot be in the future."
		}
		return ""
	}
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break // Stop at first error per field
		}
	}
	return fv
}

// Valid reports whether no field failed.
func (fv *FieldValidator) Valid() bool {
	return len(fv.errors) == 0
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}
