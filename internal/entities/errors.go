package entities

import (
	"errors"
	"fmt"
)

// ErrValidation matches every ValidationError via errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError reports a required field that is missing or empty.
// Path is the dotted/indexed location inside the input, e.g.
// "attacks[1].targetsMetadata.trajectories[0].endPoint".
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func missing(path string) error {
	return &ValidationError{Path: path, Reason: "required field is missing"}
}

func join(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}

func index(prefix string, i int) string {
	return fmt.Sprintf("%s[%d]", prefix, i)
}
