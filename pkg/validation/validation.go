package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	v *validator.Validate

	// Phone: optional leading +, then 7–20 digits, spaces, dashes or dots.
	rePhone = regexp.MustCompile(`^\+?[0-9][0-9 .\-]{6,19}$`)
	reHHMM  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

func init() {
	v = validator.New()

	// Use JSON tag as the field name in error output
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Custom: calendar date YYYY-MM-DD
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		val := strings.TrimSpace(fl.Field().String())
		if val == "" { // let omitempty/required handle empty
			return true
		}
		_, err := time.Parse("2006-01-02", val)
		return err == nil
	})

	// Custom: time of day HH:MM (24h)
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		val := strings.TrimSpace(fl.Field().String())
		if val == "" {
			return true
		}
		return reHHMM.MatchString(val)
	})

	// Custom: phone number
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		val := strings.TrimSpace(fl.Field().String())
		if val == "" {
			return true
		}
		return rePhone.MatchString(val)
	})
}

// Validate returns map[field][]messages (Laravel-like)
func Validate(s any) (map[string][]string, error) {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, err
		}
		out := make(map[string][]string)
		for _, e := range ve {
			field := e.Field() // already mapped from json tag
			if ns := e.Namespace(); strings.Count(ns, ".") > 1 {
				// nested: parties[0].name
				field = ns[strings.Index(ns, ".")+1:]
			}

			switch e.Tag() {
			case "required", "required_without":
				out[field] = append(out[field], "This field is required")

			case "email":
				out[field] = append(out[field], "Invalid email format")

			case "min":
				// Show a string-specific message when the field is a string
				if e.Kind() == reflect.String {
					out[field] = append(out[field], fmt.Sprintf("Must be at least %s characters", e.Param()))
				} else {
					out[field] = append(out[field], fmt.Sprintf("Must be at least %s", e.Param()))
				}

			case "max":
				if e.Kind() == reflect.String {
					out[field] = append(out[field], fmt.Sprintf("Must be at most %s characters", e.Param()))
				} else {
					out[field] = append(out[field], fmt.Sprintf("Must be at most %s", e.Param()))
				}

			case "oneof":
				out[field] = append(out[field], "Value is not allowed")

			case "uuid", "uuid4":
				out[field] = append(out[field], "Invalid UUID format")

			case "gte":
				out[field] = append(out[field], fmt.Sprintf("Must be greater than or equal to %s", e.Param()))

			case "lte":
				out[field] = append(out[field], fmt.Sprintf("Must be less than or equal to %s", e.Param()))

			case "isodate":
				out[field] = append(out[field], "Invalid date (use YYYY-MM-DD)")

			case "hhmm":
				out[field] = append(out[field], "Invalid time (use HH:MM)")

			case "phone":
				out[field] = append(out[field], "Invalid phone number")

			default:
				// Fallback to original error text if we missed a tag
				out[field] = append(out[field], e.Error())
			}
		}
		return out, nil
	}
	return nil, nil
}
