// Package errs defines the closed error-kind taxonomy used across the
// edge bridge. Every terminal failure the dispatcher, transport, or
// accessor can produce is one of these kinds, so callers can branch on
// errors.As instead of parsing strings.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotConnected means an operation was attempted before the transport
// was ready. It is never retried.
var ErrNotConnected = errors.New("transport: not connected")

// ErrQueueFull means Submit rejected a command because the pending
// sequence is already at its configured limit.
var ErrQueueFull = errors.New("queue: full")

// ErrCancelled means a command was cancelled by the caller or a broadcast
// clear before it reached a terminal state.
var ErrCancelled = errors.New("command: cancelled")

// TransportError wraps an on-wire I/O failure or Modbus exception
// response that survived every retry attempt.
type TransportError struct {
	Detail string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s", e.Detail)
}

// UnknownRegisterError means the catalog has no entry for the given name.
type UnknownRegisterError struct {
	Name string
}

func (e *UnknownRegisterError) Error() string {
	return fmt.Sprintf("unknown register: %q", e.Name)
}

// NotWritableError means a write was attempted against a read-only
// register.
type NotWritableError struct {
	Name string
}

func (e *NotWritableError) Error() string {
	return fmt.Sprintf("register %q is not writable", e.Name)
}

// EncodingUnsupportedError means a write was attempted against a
// register whose data type has no defined encoder (anything wider than
// 16 bits).
type EncodingUnsupportedError struct {
	DataType string
}

func (e *EncodingUnsupportedError) Error() string {
	return fmt.Sprintf("encoding unsupported for data type %s", e.DataType)
}

// UnknownCommandError means the dispatcher was asked to run a command
// kind outside the closed set. This can only happen at the externally
// sourced payload boundary; the Kind type is closed for everything
// built in-process.
type UnknownCommandError struct {
	Kind string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command kind: %q", e.Kind)
}

// TimeoutError means a command exceeded its per-command timeout before
// its handler returned.
type TimeoutError struct {
	Seconds int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %d seconds", e.Seconds)
}
