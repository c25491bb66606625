package attribute

import (
	"errors"
	"fmt"
)

// Common attribute-model errors. Mutators wrap these with context; test with
// errors.Is.
var (
	// ErrDuplicateType is returned when a definition type already exists
	ErrDuplicateType = errors.New("definition type already exists")

	// ErrDuplicateName is returned when an attribute or item name is taken
	ErrDuplicateName = errors.New("name already in use")

	// ErrNotFound is returned when a definition, attribute or item is missing
	ErrNotFound = errors.New("not found")

	// ErrAbstract is returned when instantiating an abstract definition
	ErrAbstract = errors.New("definition is abstract")

	// ErrForeignDefinition is returned when definitions from different
	// resources are related to each other
	ErrForeignDefinition = errors.New("definition belongs to another resource")

	// ErrOutOfRange is returned for an element index outside [0, n)
	ErrOutOfRange = errors.New("element index out of range")

	// ErrValueRejected is returned when a validity predicate rejects a value
	ErrValueRejected = errors.New("value rejected")

	// ErrNotExtensible is returned when resizing a fixed-count item
	ErrNotExtensible = errors.New("item is not extensible")

	// ErrMaxValues is returned when growing past the maximum count
	ErrMaxValues = errors.New("maximum number of values reached")

	// ErrMinValues is returned when shrinking below the required count
	ErrMinValues = errors.New("minimum number of values reached")

	// ErrExcluded is returned when associating would violate an exclusion
	ErrExcluded = errors.New("excluded by an associated attribute")

	// ErrPrerequisiteMissing is returned when a prerequisite attribute is
	// not associated with the object
	ErrPrerequisiteMissing = errors.New("prerequisite not satisfied")

	// ErrPrerequisiteCycle is returned when a prerequisite edge would close
	// a cycle
	ErrPrerequisiteCycle = errors.New("prerequisite cycle")

	// ErrNotUnique is returned when a unique definition already has an
	// attribute associated with the object
	ErrNotUnique = errors.New("unique definition already associated")

	// ErrNoAssociationRule is returned when associating an attribute whose
	// definition has no association rule
	ErrNoAssociationRule = errors.New("definition has no association rule")
)

func enrich(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}
