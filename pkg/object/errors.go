package object

import (
	"errors"
	"fmt"
)

var (
	// ErrAccumulatorRedeclared is returned when construction data tries to
	// declare concatProperties or mergedProperties.
	ErrAccumulatorRedeclared = errors.New("concatProperties and mergedProperties must be defined in Extend")

	// ErrInvalidDeclaration is returned for a concatProperties or
	// mergedProperties value that is not a list of names.
	ErrInvalidDeclaration = errors.New("invalid property declaration")

	// ErrNotMergeable is returned when a merged property value is not map-like.
	ErrNotMergeable = errors.New("value cannot be merged")

	ErrNoSuchMethod   = errors.New("no such method")
	ErrNoSuchProperty = errors.New("no such property")
	ErrNotCallable    = errors.New("property is not callable")

	// ErrInvalidSource is returned when a value passed to Extend or Create is
	// neither a bundle nor a mixin.
	ErrInvalidSource = errors.New("invalid mixin source")

	// ErrInvalidInitData is returned when construction data is not a bundle.
	ErrInvalidInitData = errors.New("init data must be a property bundle")

	// ErrSealed is returned for writes to a type or its prototype after the
	// type was created.
	ErrSealed = errors.New("type is sealed")

	ErrNativeCall = errors.New("native method call failed")
)

// ImmutableError is returned when writing to a constant, not or readonly
// computed property.
type ImmutableError struct {
	Property string
	Kind     string // constant, not, readonly
}

func (e *ImmutableError) Error() string {
	switch e.Kind {
	case "not":
		return fmt.Sprintf("%s is a constant not property that cannot be changed", e.Property)
	case "readonly":
		return fmt.Sprintf("%s is a readonly property that cannot be changed", e.Property)
	default:
		return fmt.Sprintf("%s is a constant property and cannot be changed", e.Property)
	}
}
