// Package validation holds the field predicates used by the registration
// form and exposes them as validator/v10 tags.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/go-registration-form/pkg/constants"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// Tags registered on the validator engine.
const (
	TagPersonName  = "person_name"
	TagSimpleEmail = "simple_email"
	TagPostalCode  = "postal_code"
	TagMinAge      = "min_age"
	TagNotBlank    = "not_blank"
)

// Clock returns the current time. Tests pin it to a fixed date.
type Clock func() time.Time

var (
	// Latin letters including the Latin-1 accented ranges, space, apostrophe, hyphen.
	nameRegex = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ '\-]+$`)
	// Minimal structural check: local@domain.tld with no whitespace and a single '@'.
	// \s alone is ASCII only in RE2, so vertical tab, BOM and the Unicode separators are listed.
	emailRegex      = regexp.MustCompile(`^[^\s\v\x{FEFF}\p{Z}@]+@[^\s\v\x{FEFF}\p{Z}@]+\.[^\s\v\x{FEFF}\p{Z}@]+$`)
	postalCodeRegex = regexp.MustCompile(`^[0-9]{5}$`)
)

func IsValidName(s string) bool {
	if s == "" {
		return false
	}
	return nameRegex.MatchString(norm.NFC.String(s))
}

func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsValidPostalCode accepts exactly five ASCII digits (French format).
func IsValidPostalCode(s string) bool {
	return postalCodeRegex.MatchString(s)
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ParseBirthDate parses an ISO calendar date such as "2000-03-15".
func ParseBirthDate(s string) (time.Time, error) {
	born, err := time.Parse(constants.ISODateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birth date %q: %w", s, err)
	}
	return born, nil
}

// ComputeAge returns the number of whole years between birthDate and the
// calendar date of now. The birthday itself counts as a completed year.
func ComputeAge(birthDate string, now time.Time) (int, error) {
	born, err := ParseBirthDate(birthDate)
	if err != nil {
		return 0, err
	}

	year, month, day := now.Date()
	age := year - born.Year()

	if month < born.Month() || (month == born.Month() && day < born.Day()) {
		age--
	}

	return age, nil
}

// IsAdult reports whether birthDate is present, parsable and at least minAge years before now.
func IsAdult(birthDate string, now time.Time, minAge int) bool {
	if IsBlank(birthDate) {
		return false
	}

	age, err := ComputeAge(birthDate, now)
	if err != nil {
		return false
	}

	return age >= minAge
}

// Validator wraps a validator/v10 engine with the registration tags installed.
type Validator struct {
	validate *validator.Validate
}

func New(clock Clock) (*Validator, error) {
	v := validator.New()

	if err := RegisterValidations(v, clock); err != nil {
		return nil, err
	}

	return &Validator{validate: v}, nil
}

// MustNew panics when tag registration fails, which only happens on programmer error.
func MustNew(clock Clock) *Validator {
	v, err := New(clock)
	if err != nil {
		panic(err)
	}
	return v
}

// Var validates a single string value against a tag expression, e.g. "min_age=18".
func (v *Validator) Var(value string, tag string) error {
	return v.validate.Var(value, tag)
}

func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// RegisterValidations installs the registration tags on an existing engine.
func RegisterValidations(v *validator.Validate, clock Clock) error {
	if clock == nil {
		clock = time.Now
	}

	stringFunc := func(pred func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool {
			field := fl.Field()
			if field.Kind() != reflect.String {
				return false
			}
			return pred(field.String())
		}
	}

	validations := map[string]validator.Func{
		TagPersonName:  stringFunc(IsValidName),
		TagSimpleEmail: stringFunc(IsValidEmail),
		TagPostalCode:  stringFunc(IsValidPostalCode),
		TagNotBlank:    stringFunc(func(s string) bool { return !IsBlank(s) }),
		TagMinAge: func(fl validator.FieldLevel) bool {
			field := fl.Field()
			if field.Kind() != reflect.String {
				return false
			}

			minAge := constants.DefaultMinimumAge
			if p := strings.TrimSpace(fl.Param()); p != "" {
				parsed, err := strconv.Atoi(p)
				if err != nil {
					return false
				}
				minAge = parsed
			}

			return IsAdult(field.String(), clock(), minAge)
		},
	}

	for tag, fn := range validations {
		// Run even on the zero value so an empty birth date is reported.
		if err := v.RegisterValidation(tag, fn, true); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}

	return nil
}
