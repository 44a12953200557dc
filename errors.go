// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package questal

import (
	"fmt"

	"github.com/gogama/questal/transport"
)

// A ConfigError reports a request that cannot be opened because its
// configuration is invalid. The transport is never touched when a
// ConfigError is returned.
type ConfigError struct {
	// Field names the offending setting: "method", "url", "data" or
	// "body".
	Field string
	// Value is the offending value, if it is printable.
	Value string
	// Err is the underlying error, if any.
	Err error
}

func (e *ConfigError) Error() string {
	msg := "questal: invalid request " + e.Field
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	} else if e.Err == nil {
		msg += ": empty"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// A StateError reports an operation attempted in the wrong ready state,
// for example Send before Open.
type StateError struct {
	// Op is the attempted operation.
	Op string
	// State is the ready state the request was in.
	State transport.ReadyState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("questal: cannot %s request with a ready state of %q", e.Op, e.State)
}

// Is reports whether target is transport.ErrInvalidState, so callers
// may test for either.
func (e *StateError) Is(target error) bool {
	return target == transport.ErrInvalidState
}
