// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"net"
)

// A Category is the failure category of a particular error, as
// reported by function Categorize.
type Category int

const (
	// Not indicates a nil error, or an error that fits no other
	// category (for example a malformed response).
	Not Category = iota
	// Timeout indicates a client-side timeout. Categorize returns
	// Timeout if the error or any of its wrapped causes has a Timeout
	// method that reports true, or is context.DeadlineExceeded.
	Timeout
	// Canceled indicates the exchange was cancelled by the caller
	// before it completed, which a transport reports as an abort.
	Canceled
	// Network indicates a failure to reach or keep talking to the
	// remote host: a refused or reset connection, a DNS failure, or any
	// other net.Error that is not a timeout.
	Network
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"Canceled",
	"Network",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Categorize returns the failure category of the given error, looking
// at wrapped cause errors as well as err itself. Timeouts take
// precedence over cancellation, which takes precedence over network
// errors.
//
// Note that syscall.Errno values satisfy net.Error, so a bare
// ECONNRESET or ECONNREFUSED is categorized as Network.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &hasTimeout) && hasTimeout.Timeout()) {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Network
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
