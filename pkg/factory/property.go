// Typed property handles and typed accessors over factories and objects
package factory

import (
	"context"
	"fmt"
	"regexp"

	"github.com/andrewh/botest/pkg/bo"
)

var memberName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Property names a property together with the Go type of its values, so
// pinned values and generated values can be checked at compile time.
type Property[V any] struct {
	name string
}

// PropertyOf returns a handle for the named property. The name must be a
// simple identifier; dotted paths and expressions are rejected.
func PropertyOf[V any](name string) (Property[V], error) {
	if !memberName.MatchString(name) {
		return Property[V]{}, bo.NewDeveloperError(ErrInvalidMember,
			fmt.Sprintf("%q is not a simple property name", name),
			"Name a property declared directly on the class, for example \"Surname\".")
	}
	return Property[V]{name: name}, nil
}

// MustProperty is PropertyOf for package level handles; it panics on an
// invalid name.
func MustProperty[V any](name string) Property[V] {
	p, err := PropertyOf[V](name)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the property name.
func (p Property[V]) Name() string {
	return p.name
}

// WithValue pins v for the property on f and returns f.
func WithValue[V any](f *Factory, p Property[V], v V) *Factory {
	return f.SetValueFor(p.name, v)
}

// ValueFor generates a valid value for the property and returns it as V.
func ValueFor[V any](ctx context.Context, f *Factory, p Property[V]) (V, error) {
	var zero V
	v, err := f.GetValidPropValue(ctx, p.name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(V)
	if !ok {
		return zero, typeMismatchError(p.name, zero, v)
	}
	return typed, nil
}

// Get reads the property from obj as V. An unset property yields the zero
// value.
func Get[V any](obj *bo.Object, p Property[V]) (V, error) {
	var zero V
	v, err := obj.Get(p.name)
	if err != nil || v == nil {
		return zero, err
	}
	typed, ok := v.(V)
	if !ok {
		return zero, typeMismatchError(p.name, zero, v)
	}
	return typed, nil
}
