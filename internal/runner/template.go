package runner

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/infracollect/whichworkspace/internal/engine"
)

// BuildVariables returns the variables available to ${VAR} templates: the built-in ORG,
// RUN_DATE_ISO8601 and RUN_DATE_RFC3339, plus every environment variable named in allowedEnv.
// A listed variable that is not set is an error.
func BuildVariables(org string, date time.Time, allowedEnv []string) (map[string]string, error) {
	date = date.UTC()
	variables := map[string]string{
		"ORG":              org,
		"RUN_DATE_ISO8601": date.Format(engine.ISO8601Basic),
		"RUN_DATE_RFC3339": date.Format(time.RFC3339),
	}

	var errs error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}

// ExpandTemplates expands, in place, every string field tagged `template` in the struct
// pointed to by in. Nested structs and non-nil struct pointers are explored whether tagged or
// not. `template:"-"` skips a field. Unexported fields are skipped.
func ExpandTemplates[T any](in *T, variables map[string]string) error {
	if in == nil {
		return nil
	}

	v := reflect.ValueOf(in).Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("ExpandTemplates expects *struct; got *%s", v.Type())
	}

	return expandStruct(v, variables)
}

func expandStruct(v reflect.Value, variables map[string]string) error {
	var errs error

	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag, hasTemplate := sf.Tag.Lookup("template")
		if tag == "-" {
			continue
		}

		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			if !hasTemplate {
				continue
			}
			expanded, err := Expand(field.String(), variables)
			if err != nil {
				errs = errors.Join(errs, fmt.Errorf("%s: %w", sf.Name, err))
				continue
			}
			field.SetString(expanded)

		case reflect.Struct:
			errs = errors.Join(errs, expandStruct(field, variables))

		case reflect.Ptr:
			if field.IsNil() || field.Elem().Kind() != reflect.Struct {
				continue
			}
			errs = errors.Join(errs, expandStruct(field.Elem(), variables))
		}
	}

	return errs
}

// Expand replaces ${VAR} references in value using variables. Every reference to a variable
// that is not in variables is reported.
func Expand(value string, variables map[string]string) (string, error) {
	var errs error

	result := os.Expand(value, func(key string) string {
		if val, ok := variables[key]; ok {
			return val
		}
		errs = errors.Join(errs, fmt.Errorf("environment variable %q is not in the allowed list", key))
		return ""
	})

	if errs != nil {
		return "", errs
	}

	return result, nil
}
