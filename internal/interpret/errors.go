package interpret

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// the language or speech capability failed or returned unusable output
	ErrExtraction = errors.New("interpret: extraction failed")

	// the extracted fields cannot form a cue
	ErrValidation = errors.New("interpret: validation failed")
)

// Error reports which stage of interpretation stopped the pipeline.
type Error struct {
	kind    error
	Stage   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Err}
}

func newExtractionError(stage string, err error, format string, args ...interface{}) error {
	return &Error{
		kind:    ErrExtraction,
		Stage:   stage,
		Message: message(format, args...),
		Err:     err,
	}
}

func newValidationError(format string, args ...interface{}) error {
	return &Error{
		kind:    ErrValidation,
		Stage:   stageValidate,
		Message: message(format, args...),
	}
}

func message(format string, args ...interface{}) string {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	if msg == "" {
		msg = "invalid input"
	}
	return msg
}

// IsExtractionError reports whether err came from a failed capability call.
func IsExtractionError(err error) bool {
	return err != nil && errors.Is(err, ErrExtraction)
}

// IsValidationError reports whether err means the prompt could not form a cue.
func IsValidationError(err error) bool {
	return err != nil && errors.Is(err, ErrValidation)
}
