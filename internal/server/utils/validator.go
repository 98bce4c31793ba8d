package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/vzahanych/weather-dashboard/internal/city"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("cityquery", validateCityQuery)
	validate.RegisterValidation("citykey", validateCityKey)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func GetValidator() *validator.Validate {
	return validate
}

// validateCityQuery accepts "name" or "name,CC" with a non-blank name and no
// control characters.
func validateCityQuery(fl validator.FieldLevel) bool {
	query := fl.Field().String()
	for _, r := range query {
		if unicode.IsControl(r) {
			return false
		}
	}
	name, _, _ := city.ParseQuery(query)
	return name != ""
}

// validateCityKey requires both parts of "name,CC".
func validateCityKey(fl validator.FieldLevel) bool {
	if !validateCityQuery(fl) {
		return false
	}
	_, countryCode, hasCountry := city.ParseQuery(fl.Field().String())
	return hasCountry && countryCode != ""
}

type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

func FormatValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fe.Field(),
				Value:   fe.Value(),
				Tag:     fe.Tag(),
				Message: getErrorMessage(fe),
			})
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "cityquery":
		return fmt.Sprintf("%s must be a city name, optionally followed by ,COUNTRY", err.Field())
	case "citykey":
		return fmt.Sprintf("%s must have the form name,COUNTRY", err.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}

func ValidateStruct(s interface{}) []ValidationError {
	if err := validate.Struct(s); err != nil {
		return FormatValidationErrors(err)
	}
	return nil
}

// JoinMessages flattens validation errors into a single details string.
func JoinMessages(errs []ValidationError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
