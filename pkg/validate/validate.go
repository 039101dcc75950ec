// Package validate runs go-playground/validator struct-tag rules and turns
// the failures into a field → message map keyed by JSON field names.
//
//	type Input struct {
//	    Email  string `json:"email"  validate:"required,email"`
//	    Status string `json:"status" validate:"max=64"`
//	}
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return v
}

// Struct validates v. The returned map is empty when v is valid.
func Struct(s interface{}) map[string]string {
	errs := make(map[string]string)

	err := engine().Struct(s)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Not a struct: nothing to validate.
		return errs
	}
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; !seen {
			errs[fe.Field()] = message(fe)
		}
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
		return fmt.Sprintf("The %s must be at least %s characters.", field, param)
	case "max":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("The %s may not be greater than %s.", field, param)
		}
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, param)
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", field, strings.Join(strings.Fields(param), ", "))
	case "hexadecimal":
		return fmt.Sprintf("The %s must be hexadecimal.", field)
	}
	if param != "" {
		return fmt.Sprintf("The %s field failed the %s=%s rule.", field, fe.Tag(), param)
	}
	return fmt.Sprintf("The %s field failed the %s rule.", field, fe.Tag())
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
