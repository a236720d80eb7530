// Package dserr defines the closed error taxonomy shared across datashuttle-go.
//
// Every exported error type carries a stable Code() string so callers (and
// log lines) can match on the taxonomy in spec.md §7 without string
// comparison against the human message. Propagation never swallows an
// error: call sites wrap with pkg/errors.Wrap to keep a causal chain while
// leaving Code() untouched.
package dserr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is a stable identifier for an error kind, independent of its
// human-readable message.
type Code string

const (
	// Name / validator codes (spec.md §3, §4.2, §7).
	CodeMissingPrefix     Code = "MISSING_PREFIX"
	CodeBadValue          Code = "BAD_VALUE"
	CodeSpecialChar       Code = "SPECIAL_CHAR"
	CodeDuplicateKey      Code = "DUPLICATE_KEY"
	CodeBadName           Code = "BAD_NAME"
	CodeDatatype          Code = "DATATYPE"
	CodeDuplicateName     Code = "DUPLICATE_NAME"
	CodeValueLength       Code = "VALUE_LENGTH"
	CodeTemplate          Code = "TEMPLATE"
	CodeProjectName       Code = "PROJECT_NAME"
	CodeTopLevelFolder    Code = "TOP_LEVEL_FOLDER"
	CodeSelectorConflict  Code = "SELECTOR_CONFLICT"

	// Config codes.
	CodeConfigMissing      Code = "ConfigMissing"
	CodeConfigDuplicate    Code = "ConfigDuplicate"
	CodeBadConfigField     Code = "BadConfigField"
	CodeConfigIncompatible Code = "ConfigIncompatible"

	// Connection codes.
	CodeAuthFailed     Code = "AuthFailed"
	CodeHostKeyReject  Code = "HostKeyRejected"
	CodeNetworkError   Code = "NetworkError"

	// Backend / transfer codes.
	CodeNotFound        Code = "NotFound"
	CodePartialTransfer Code = "PartialTransfer"
	CodeBackendError    Code = "BackendError"
	CodeFatal           Code = "Fatal"
)

// Error is the concrete type satisfying the `error` interface for every
// code in the taxonomy. Path is optional and included in the message
// when non-empty, per spec.md §7 ("every error message contains the
// code, a one-line human explanation, and — where applicable — the
// offending path").
type Error struct {
	code    Code
	message string
	path    string
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func NewWithPath(code Code, message, path string) *Error {
	return &Error{code: code, message: message, path: path}
}

func (e *Error) Code() string { return string(e.code) }

func (e *Error) Error() string {
	if e.path == "" {
		return fmt.Sprintf("[%s] %s", e.code, e.message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.code, e.message, e.path)
}

// Wrap attaches a causal chain via pkg/errors while preserving the code and
// message surfaced to users; %+v on the result prints the chain.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(&Error{code: code, message: message}, err.Error())
}

// As extracts the taxonomy Error from err, unwrapping any pkg/errors chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the stable code string for err, or "" if err is not part
// of the taxonomy.
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code()
	}
	return ""
}
