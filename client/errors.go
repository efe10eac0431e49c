package client

import (
	"errors"
	"fmt"
)

// ErrNotConnected indicates that a command was attempted without an open
// connection.
var ErrNotConnected = errors.New("not connected")

// ErrTimeout indicates that a command was sent but no response arrived
// within the deadline. The connection stays open; retrying is the caller's
// decision.
var ErrTimeout = errors.New("command timeout")

// ErrInvalidArgument indicates an out-of-range or malformed argument,
// detected before anything was sent to the receiver.
var ErrInvalidArgument = errors.New("invalid argument")

// ConnectionError indicates that a connection to a receiver could not be
// established. It carries the target address and the underlying cause.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
