package utils

import (
	"reflect"

	"github.com/pkg/errors"
)

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError[ExpectedT any](actual interface{}) error {
	return errors.Errorf("expected %s but got %T", typeName[ExpectedT](), actual)
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return "<unknown (empty interface)>"
	}
	return t.String()
}
