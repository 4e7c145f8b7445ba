package portal

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("mobile10", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("simplemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// messages maps "field.tag" to the text shown next to the field. A missing
// entry falls back to "field.*" and then to a generic message.
type messages map[string]string

func (m messages) lookup(field, tag string) string {
	if s, ok := m[field+"."+tag]; ok {
		return s
	}
	if s, ok := m[field+".*"]; ok {
		return s
	}
	return field + " is invalid"
}

// checkForm is check with a form-level message on failure.
func checkForm(s any, m messages, msg string) error {
	err := check(s, m)
	var v *ValidationError
	if errors.As(err, &v) {
		v.Message = msg
	}
	return err
}

// check validates s and converts failures into a *ValidationError, keeping
// the first failure per field.
func check(s any, m messages) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := map[string]string{}
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = m.lookup(fe.Field(), fe.Tag())
	}
	return &ValidationError{Fields: fields}
}
