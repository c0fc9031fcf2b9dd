package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	templates = map[string]string{
		"required":        "{field} is required",
		"required_if":     "{field} is required",
		"gte":             "{field} must be greater than or equal to {param}",
		"lte":             "{field} must be less than or equal to {param}",
		"gtefield":        "{field} must not be less than {param}",
		"ltefield":        "{field} must not exceed {param}",
		"oneof":           "{field} must be one of {param}",
		"max":             "{field} must be at most {param}",
		"min":             "{field} must be at least {param}",
		"email":           "{field} must be a valid email address",
		"datetime":        "{field} must match the format {param}",
		"notpast":         "{field} must not be in the past",
		"clock":           "{field} must be a time in HH:MM format",
		"uuid":            "{field} must be a valid UUID",
		"excluded_unless": "{field} is not allowed here",
	}
)

func messages(err error) []string {
	var valErrors val.ValidationErrors

	if !errors.As(err, &valErrors) {
		return []string{err.Error()}
	}

	issues := make([]string, 0, len(valErrors))

	for _, valErr := range valErrors {
		field := valErr.Field()
		if field == "" {
			field = valErr.StructField()
		}

		msg, ok := templates[valErr.Tag()]
		if !ok {
			issues = append(issues, field+" is invalid")

			continue
		}

		msg = strings.ReplaceAll(msg, "{field}", field)
		msg = strings.ReplaceAll(msg, "{param}", valErr.Param())

		issues = append(issues, msg)
	}

	return issues
}
