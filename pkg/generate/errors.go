// Errors raised while registering, resolving and running value generators
package generate

import (
	"errors"
	"fmt"

	"github.com/andrewh/botest/pkg/bo"
)

var (
	// ErrNilArgument is returned when a required argument is nil.
	ErrNilArgument = errors.New("nil argument")
	// ErrInvalidRegistration is returned for registrations that can never work.
	ErrInvalidRegistration = errors.New("invalid generator registration")
	// ErrUnsupportedType is returned when no generator handles a property type.
	ErrUnsupportedType = errors.New("unsupported property type")
	// ErrExternalResource is returned when a file or program a generator
	// depends on is missing or unusable.
	ErrExternalResource = errors.New("external resource unavailable")
	// ErrNoValidValue is returned when a generator cannot draw a value that
	// passes the property's rules.
	ErrNoValidValue = errors.New("no valid value")
	// ErrBoundType is returned when a bound does not match the property type.
	ErrBoundType = errors.New("bound has the wrong type")
)

func nilArgumentError(name string) error {
	return bo.NewDeveloperError(ErrNilArgument,
		fmt.Sprintf("%s must not be nil", name),
		fmt.Sprintf("The %s argument was nil. Pass the definition obtained from the loaded class definitions.", name))
}

func registrationError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return bo.NewDeveloperError(ErrInvalidRegistration, msg,
		"Register a non-nil constructor for a property definition from the loaded class definitions.")
}

func boundTypeError(def *bo.PropDef, bound any) error {
	return fmt.Errorf("%w: %s is %s but the bound is %T", ErrBoundType, def.Key(), def.Type, bound)
}
