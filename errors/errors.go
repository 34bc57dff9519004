// Package errors provides errors that carry key/value context alongside the
// message, for example
//
//	errors.Wrap(errGo).With("file", fp).With("stack", stack.Trace().TrimRuntime())
//
// Wrapped errors keep their cause reachable through Unwrap so the standard
// library errors.Is and errors.As continue to work.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error is an error annotated with key/value pairs.
type Error interface {
	error

	// With returns a copy of the error with the key/value pairs appended.
	// Pairs are supplied as alternating keys and values.
	With(keyvals ...interface{}) Error

	// Unwrap returns the wrapped cause, nil for errors made with New.
	Unwrap() error
}

type kvError struct {
	msg     string
	cause   error
	keyvals []interface{}
}

// New returns an error with the given message.
func New(msg string) Error {
	return &kvError{msg: msg}
}

// Wrap annotates err. The optional message is prefixed to the cause text.
// Wrapping nil returns nil.
func Wrap(err error, msg ...string) Error {
	if err == nil {
		return nil
	}
	return &kvError{
		msg:   strings.Join(msg, " "),
		cause: err,
	}
}

func (e *kvError) With(keyvals ...interface{}) Error {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "MISSING")
	}
	cpy := &kvError{
		msg:     e.msg,
		cause:   e.cause,
		keyvals: make([]interface{}, 0, len(e.keyvals)+len(keyvals)),
	}
	cpy.keyvals = append(cpy.keyvals, e.keyvals...)
	cpy.keyvals = append(cpy.keyvals, keyvals...)
	return cpy
}

func (e *kvError) Unwrap() error {
	return e.cause
}

// Value returns the value stored for key, the most recent one when a key was
// supplied more than once.
func (e *kvError) Value(key string) (value interface{}, ok bool) {
	for i := len(e.keyvals) - 2; i >= 0; i -= 2 {
		if k, isStr := e.keyvals[i].(string); isStr && k == key {
			return e.keyvals[i+1], true
		}
	}
	return nil, false
}

func (e *kvError) Error() string {
	b := strings.Builder{}
	b.WriteString(e.msg)
	if e.cause != nil {
		if b.Len() != 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.cause.Error())
	}
	for i := 0; i < len(e.keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", e.keyvals[i], e.keyvals[i+1])
	}
	return b.String()
}

// Value extracts a value attached with With anywhere in the chain of err.
func Value(err error, key string) (value interface{}, ok bool) {
	for err != nil {
		if kv, isKV := err.(*kvError); isKV {
			if value, ok = kv.Value(key); ok {
				return value, ok
			}
		}
		u, canUnwrap := err.(interface{ Unwrap() error })
		if !canUnwrap {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// Is reports whether any error in the chain of err matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in the chain of err that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
