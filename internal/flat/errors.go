package flat

import (
	"errors"
	"fmt"

	"github.com/bishiboosh/properties-serializer/internal/proptext"
)

var (
	// ErrInvalidUnicodeEscape is returned by the text reader for a malformed \u escape.
	ErrInvalidUnicodeEscape = proptext.ErrInvalidUnicodeEscape
	ErrMissingRequiredKey   = errors.New("missing required key")
	ErrUnknownEnumConstant  = errors.New("unknown enum constant")
	ErrUnknownDiscriminator = errors.New("unknown discriminator")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrUnresolvedVariant    = errors.New("unresolved variant")
)

// PathError is a codec failure at a tag.
type PathError struct {
	Tag   string
	Err   error // an Err* sentinel or a shape error
	Cause error // underlying failure, may be nil
}

func (e *PathError) Error() string {
	tag := e.Tag
	if tag == "" {
		tag = "<root>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", tag, e.Err, e.Cause)
	}
	return fmt.Sprintf("%s: %v", tag, e.Err)
}

func (e *PathError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func pathErr(tag string, err, cause error) error {
	return &PathError{Tag: tag, Err: err, Cause: cause}
}

// wrapShapeErr attaches tag to a descriptor failure unless it already carries one.
func wrapShapeErr(tag string, err error) error {
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}
	return &PathError{Tag: tag, Err: err}
}
