package layout

import (
	"fmt"
	"strings"

	"swell/internal/types"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursive indicates a type that contains itself by value.
	LayoutErrRecursive LayoutErrorKind = iota + 1
	// LayoutErrUnsized is reported for parameters and placeholders that
	// have no layout until instantiated.
	LayoutErrUnsized
	LayoutErrLengthConversion
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.TypeID
	Label string
	Cycle []string // for LayoutErrRecursive
	Err   error    // for LayoutErrLengthConversion
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursive:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive type `%s` has infinite size", e.Label)
		}
		return fmt.Sprintf("recursive type `%s` has infinite size (cycle: %s)", e.Label, strings.Join(e.Cycle, " -> "))
	case LayoutErrUnsized:
		return fmt.Sprintf("type `%s` has no fixed layout", e.Label)
	case LayoutErrLengthConversion:
		return fmt.Sprintf("length of `%s` does not fit the target: %v", e.Label, e.Err)
	default:
		return fmt.Sprintf("layout error kind=%d type `%s`", e.Kind, e.Label)
	}
}

func (e *LayoutError) Unwrap() error { return e.Err }
