package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/hivcare-api/internal/scheduling"
)

// FieldError is one failed constraint, named by its JSON field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"uuid":     "must be a UUID",
	"clock":    "must be a time formatted HH:mm",
	"weekday":  "must be a weekday between 0 (Sunday) and 6 (Saturday)",
	"datetime": "must be a date formatted YYYY-MM-DD",
	"oneof":    "must be one of",
	"min":      "is too small",
	"max":      "is too large",
}

// Register installs the custom tags and reports fields by their json name.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		return fmt.Errorf("failed to register clock validator: %w", err)
	}
	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		return fmt.Errorf("failed to register weekday validator: %w", err)
	}
	return nil
}

func validateClock(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := scheduling.ParseClock(s)
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		d := fl.Field().Int()
		return d >= 0 && d <= 6
	}
	return false
}

// Describe flattens validation errors into field messages. Errors of any
// other kind yield nil.
func Describe(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = "failed " + e.Tag() + " validation"
		}
		if e.Param() != "" && (e.Tag() == "oneof" || e.Tag() == "min" || e.Tag() == "max") {
			msg += " " + e.Param()
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}

// Summary joins Describe's output into one line.
func Summary(fields []FieldError) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + " " + f.Message
	}
	return strings.Join(parts, "; ")
}
