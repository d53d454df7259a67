package board

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes a rejected mutation.
type ErrorCode string

const (
	// CodeUnauthorized means the actor does not own the root board.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeValidation means a name or id failed the schema re-check.
	CodeValidation ErrorCode = "VALIDATION"

	// CodeInvariant means the action disagrees with stored positions, usually
	// because the client was stale.
	CodeInvariant ErrorCode = "INVARIANT_VIOLATION"

	// CodeNotFound means a referenced entity no longer exists.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeStore means the transaction itself failed.
	CodeStore ErrorCode = "STORE"
)

// MutationError is the typed failure returned for a rejected action or batch.
type MutationError struct {
	Code    ErrorCode
	Message string

	// Action is the position of the failing action within a batch, or -1.
	Action int

	Err error
}

func (e *MutationError) Error() string {
	if e.Action >= 0 {
		return fmt.Sprintf("%s: %s (action %d)", e.Code, e.Message, e.Action)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *MutationError) Unwrap() error { return e.Err }

// Failf builds a MutationError with a formatted message.
func Failf(code ErrorCode, format string, args ...any) *MutationError {
	return &MutationError{Code: code, Message: fmt.Sprintf(format, args...), Action: -1}
}

// Fail wraps err under code, using err's text as the message.
func Fail(code ErrorCode, err error) *MutationError {
	return &MutationError{Code: code, Message: err.Error(), Action: -1, Err: err}
}

// CodeOf returns the code of the MutationError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var me *MutationError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

func IsUnauthorized(err error) bool { return CodeOf(err) == CodeUnauthorized }
func IsValidation(err error) bool   { return CodeOf(err) == CodeValidation }
func IsInvariant(err error) bool    { return CodeOf(err) == CodeInvariant }
func IsNotFound(err error) bool     { return CodeOf(err) == CodeNotFound }
