// Developer-facing errors raised by the business-object metadata layer
// Every error carries a short user message and a longer diagnostic message
package bo

import (
	"errors"
	"fmt"
)

// Sentinel errors for metadata lookups. Match them with errors.Is.
var (
	ErrUnknownClass        = errors.New("unknown class")
	ErrUnknownProperty     = errors.New("unknown property")
	ErrUnknownRelationship = errors.New("unknown relationship")
)

// metadataHint is appended to every metadata error. The most common cause of
// a missing definition is a test that never loaded its class definitions.
const metadataHint = "The class definitions for this test may not be loaded. " +
	"Check that the ClassDefs used by the test contain the definition."

// DeveloperError is an error aimed at the developer writing the test rather
// than at an end user. Message is short; DeveloperMessage explains the likely
// cause and how to fix it.
type DeveloperError struct {
	Message          string
	DeveloperMessage string
	Err              error
}

func (e *DeveloperError) Error() string {
	if e.DeveloperMessage == "" {
		return e.Message
	}
	return e.Message + ": " + e.DeveloperMessage
}

func (e *DeveloperError) Unwrap() error {
	return e.Err
}

// NewDeveloperError builds a DeveloperError wrapping err.
func NewDeveloperError(err error, message, developerMessage string) *DeveloperError {
	return &DeveloperError{Message: message, DeveloperMessage: developerMessage, Err: err}
}

func unknownClassError(name string) error {
	return NewDeveloperError(ErrUnknownClass,
		fmt.Sprintf("the class definition for %q could not be found", name),
		metadataHint)
}

func unknownPropertyError(class, name string) error {
	return NewDeveloperError(ErrUnknownProperty,
		fmt.Sprintf("the property %q does not exist on class %q", name, class),
		metadataHint)
}

func unknownRelationshipError(class, name string) error {
	return NewDeveloperError(ErrUnknownRelationship,
		fmt.Sprintf("the relationship %q does not exist on class %q", name, class),
		metadataHint)
}
