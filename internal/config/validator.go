package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator builds a validator with the project's custom rules. Field names in
// errors are the environment variable names when the field has an env tag.
func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})

	_ = validate.RegisterValidation("alertaddr", func(fl validator.FieldLevel) bool {
		return IsValidAlertAddress(fl.Field().String())
	})

	_ = validate.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsFetchableURL(fl.Field().String())
	})

	_ = validate.RegisterValidation("storagelocation", func(fl validator.FieldLevel) bool {
		_, err := ParseStorageLocation(fl.Field().String())
		return err == nil
	})

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	return validate
}

// IsValidAlertAddress reports whether v is a bare local-part@domain address.
func IsValidAlertAddress(v string) bool {
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Name != "" || addr.Address != v {
		return false
	}
	local, domain, ok := strings.Cut(addr.Address, "@")
	return ok && local != "" && domain != ""
}

// IsFetchableURL reports whether v is an absolute http or https URL with a host.
func IsFetchableURL(v string) bool {
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// validateStruct runs the validator and converts the first failure into a ConfigError.
func validateStruct(v interface{}) error {
	err := newValidator().Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return newConfigError("config", "validation failed", err)
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' rule (value: %v)", e.Field(), e.Tag(), redactValue(e)))
	}
	return newConfigError(errs[0].Field(), strings.Join(messages, "; "), nil)
}

func redactValue(e validator.FieldError) interface{} {
	if redactedVariables[e.Field()] {
		return "<redacted>"
	}
	return e.Value()
}
