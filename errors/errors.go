// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package errors implements a kinded, chainable error type used
// throughout ubitlog. Error kinds are semantically meaningful: callers
// of the public API can use Is to decide whether an operation is
// retryable without parsing error strings.
package errors

import (
	"bytes"
	"fmt"
	"strings"
)

// Separator defines the separation string inserted between chained
// errors in error messages.
var Separator = ":\n\t"

// Kind defines the type of error returned by ubitlog operations.
type Kind int

const (
	// Other indicates an unknown error.
	Other Kind = iota
	// Invalid indicates the caller used the API in a way the current
	// state does not allow.
	Invalid
	// Unavailable indicates the log cannot currently accept the
	// requested append: it is FULL, or the specific append would not
	// fit.
	Unavailable
	// Integrity indicates an unrecoverable fault from the underlying
	// NVM adapter (read/write/erase failure) that the core cannot
	// repair; kept as a distinct internal Kind so logs and tests can
	// tell it apart from an ordinary capacity Unavailable.
	Integrity
)

var kinds = map[Kind]string{
	Other:       "unknown error",
	Invalid:     "invalid state",
	Unavailable: "no resources",
	Integrity:   "integrity fault",
}

// String returns a human-readable explanation of the error kind k.
func (k Kind) String() string {
	return kinds[k]
}

// Error is ubitlog's standard error type, carrying a Kind, an optional
// message, and an optional underlying error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// E constructs an error from the provided arguments, interpreted by
// type: a Kind sets the Error's kind, a string is appended to the
// message (space-separated), and an error sets the cause. Passing no
// Kind leaves it Other unless the wrapped error is itself an *Error,
// in which case its Kind is inherited.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E: no args")
	}
	e := new(Error)
	var msg strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case string:
			if msg.Len() > 0 {
				msg.WriteString(" ")
			}
			msg.WriteString(arg)
		case *Error:
			cp := *arg
			e.Err = &cp
		case error:
			e.Err = arg
		default:
			return &Error{Kind: Invalid, Message: fmt.Sprintf("errors.E: unknown arg type %T", arg)}
		}
	}
	e.Message = msg.String()
	if e.Kind == Other {
		if prev, ok := e.Err.(*Error); ok {
			e.Kind = prev.Kind
		}
	}
	return e
}

// Error implements error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	e.writeError(&b)
	return b.String()
}

func (e *Error) writeError(b *bytes.Buffer) {
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Kind != Other {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Kind.String())
	}
	if e.Err == nil {
		return
	}
	if b.Len() > 0 {
		b.WriteString(Separator)
	}
	b.WriteString(e.Err.Error())
}

// Unwrap supports errors.Unwrap/errors.As from the standard library.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is tells whether err (or any error in its chain) has the given Kind.
// Other matches any *Error in the chain that carries no Kind; the scan
// stops at the first error in the chain that is not an *Error.
func Is(kind Kind, err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		break
	}
	return false
}
