// Errors raised while building business objects
package factory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/generate"
)

var (
	// ErrRelationshipCycle is returned when building a class requires an
	// object of a class that is already being built further up the chain.
	ErrRelationshipCycle = errors.New("relationship cycle")
	// ErrTypeMismatch is returned by typed accessors when a value has a
	// different Go type than requested.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvalidMember is returned for property names that are not simple
	// identifiers.
	ErrInvalidMember = errors.New("invalid member name")
)

func cycleError(path []string, class string) error {
	chain := strings.Join(append(append([]string{}, path...), class), " -> ")
	return bo.NewDeveloperError(ErrRelationshipCycle,
		fmt.Sprintf("compulsory relationships form a cycle: %s", chain),
		"A class cannot require, directly or indirectly, a saved object of its own class. "+
			"Make one relationship in the cycle non-compulsory, or pin it with SetValueFor.")
}

func nilArgumentError(name string) error {
	return bo.NewDeveloperError(generate.ErrNilArgument,
		fmt.Sprintf("%s must not be nil or empty", name),
		fmt.Sprintf("The %s argument was not supplied.", name))
}

func registrationError(format string, args ...any) error {
	return bo.NewDeveloperError(generate.ErrInvalidRegistration, fmt.Sprintf(format, args...),
		"Register a non-nil factory constructor for a class in the loaded class definitions.")
}

func typeMismatchError(name string, want, got any) error {
	return fmt.Errorf("%w: %s holds %T, requested %T", ErrTypeMismatch, name, got, want)
}
