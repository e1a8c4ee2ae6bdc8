package core

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to operators. Callers match them with errors.Is.
var (
	ErrUnsupportedFormat   = errors.New("unsupported file format")
	ErrEmptyFile           = errors.New("file contains no data rows")
	ErrImportRequestFailed = errors.New("import request failed")
	ErrNothingToExport     = errors.New("no new accounts to export")
	ErrSessionNotFound     = errors.New("import session not found")
	ErrInvalidState        = errors.New("operation not allowed in current session state")
	ErrSubmitInProgress    = errors.New("an import is already being submitted")
	ErrUnknownKind         = errors.New("unknown import kind")
	ErrInvalidMapping      = errors.New("invalid column mapping")
	ErrTooManyImports      = errors.New("too many imports in progress, please try again later")
)

// GenericImportFailure is shown when the portal rejects a batch without a message.
const GenericImportFailure = "Import gagal"

// RequestError is a rejected or failed bulk-create call.
// Status is zero when the request never got a response.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("import request failed (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("import request failed: %s", e.Message)
}

// Is makes errors.Is(err, ErrImportRequestFailed) hold for every RequestError.
func (e *RequestError) Is(target error) bool {
	return target == ErrImportRequestFailed
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError builds a RequestError, substituting the generic message
// when the server gave none.
func NewRequestError(status int, message string, err error) *RequestError {
	if message == "" {
		message = GenericImportFailure
	}
	return &RequestError{Status: status, Message: message, Err: err}
}

// StateError reports an operation attempted from the wrong session state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while session is %s", e.Op, e.State)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}
