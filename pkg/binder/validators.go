package binder

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	dateRE  = regexp.MustCompile(`^\d{4}-(0[0-9]|1[0-2])-(0[0-9]|1[0-9]|2[0-9]|3[0-1])$`)
	phoneRE = regexp.MustCompile(`^[+]?[0-9\s]+$`)
)

// dateValidator ensures the value matches the format YYYY-MM-DD or the empty
// string. Add `ne=` to the validate tag when the value is required.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return dateRE.MatchString(value)
}

// phoneValidator allows digits and whitespace with an optional leading plus.
// Empty values pass since a reader's phone number is optional.
func phoneValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return phoneRE.MatchString(value)
}
