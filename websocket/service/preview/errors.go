package preview

import (
	"errors"
	"fmt"
)

const (
	CodeMissingParameter          = 3001
	CodeContextParametersNotFound = 3002
	CodeInvalidParameter          = 3003
)

type MissingParameterError struct {
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter %q", e.Parameter)
}

func (e *MissingParameterError) Code() int { return CodeMissingParameter }

// ContextParametersNotFoundError is returned when a command needs a started
// session on the connection.
type ContextParametersNotFoundError struct{}

func (e *ContextParametersNotFoundError) Error() string {
	return "context parameters not found"
}

func (e *ContextParametersNotFoundError) Code() int { return CodeContextParametersNotFound }

type InvalidParameterError struct {
	Parameter string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("parameter %q must be a string or a number", e.Parameter)
}

func (e *InvalidParameterError) Code() int { return CodeInvalidParameter }

// errorCode is the code sent in a fail frame, 0 for errors without one.
func errorCode(err error) int {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		return coder.Code()
	}
	return 0
}
