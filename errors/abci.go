package errors

import (
	"errors"
	"fmt"
	"reflect"
)

const (
	// SuccessABCICode is the code of a transaction that executed without
	// an error.
	SuccessABCICode = 0

	// internalABCICode is reported for errors that do not resolve to a
	// registered code. Their message is replaced with internalABCILog
	// unless the node runs in debug mode.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the code and log reported for a failed transaction or
// query.
//
// The code is the one registered for the root cause of err, or 1 when the
// root cause has none. Outside of debug mode the log is the error message
// only for errors that are safe to expose (see Redact). In debug mode the
// log is always the full message followed by the stack trace recorded
// when the error was first wrapped.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case exposed(code):
		return code, err.Error()
	default:
		return code, internalABCILog
	}
}

// Redact returns err unchanged when its message may leave the node and a
// generic internal error otherwise. Errors without a registered code and
// recovered panics are redacted, since their messages describe the host
// rather than the transaction.
//
// Nothing is redacted in debug mode.
func Redact(err error, debug bool) error {
	if debug || errIsNil(err) || exposed(abciCode(err)) {
		return err
	}
	return errors.New(internalABCILog)
}

// exposed reports whether the message of an error with the given code may
// be returned to a client.
func exposed(code uint32) bool {
	return code != internalABCICode && code != ErrPanic.code
}

type coder interface {
	ABCICode() uint32
}

// abciCode walks the cause chain of err and returns the first code found,
// or internalABCICode when no layer carries one.
func abciCode(err error) uint32 {
	for !errIsNil(err) {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return internalABCICode
}

// errIsNil returns true if value represented by the given error is nil.
// A typed nil pointer, such as (*Error)(nil), counts as nil.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}
