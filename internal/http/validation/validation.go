package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldErrors map[string]string

// FromBindError turns a bind/validation error into field -> message, keyed
// by the struct's form tags. dst is the bound struct pointer.
func FromBindError(err error, dst any) FieldErrors {
	out := FieldErrors{}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			key := fieldKey(dst, fe.StructField())
			out[key] = messageForTag(fe.Tag(), fe.Param(), fe.Kind())
		}
		return out
	}

	// type mismatches and malformed bodies
	out["__all__"] = "Invalid form data."
	return out
}

// Lists wraps every message in a slice, the shape the checkout script expects.
func (fe FieldErrors) Lists() map[string][]string {
	out := make(map[string][]string, len(fe))
	for k, v := range fe {
		out[k] = []string{v}
	}
	return out
}

func fieldKey(dst any, structField string) string {
	t := reflect.TypeOf(dst)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return strings.ToLower(structField)
	}

	f, ok := t.FieldByName(structField)
	if !ok {
		return strings.ToLower(structField)
	}
	tag := f.Tag.Get("form")
	if tag == "" {
		return strings.ToLower(structField)
	}
	// form:"email,omitempty"
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" || tag == "-" {
		return strings.ToLower(structField)
	}
	return tag
}

func messageForTag(tag, param string, kind reflect.Kind) string {
	numeric := kind >= reflect.Int && kind <= reflect.Float64
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min", "gte":
		if numeric {
			return "Ensure this value is greater than or equal to " + param + "."
		}
		return "Ensure this value has at least " + param + " characters."
	case "max", "lte":
		if numeric {
			return "Ensure this value is less than or equal to " + param + "."
		}
		return "Ensure this value has at most " + param + " characters."
	case "len":
		return "Ensure this value has exactly " + param + " characters."
	case "oneof":
		return "Select one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	default:
		return "Enter a valid value."
	}
}
