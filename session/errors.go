// Copyright (c) 2024-present RTCSync, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyJoined is returned by JoinChannel when a join is in progress
	// or has completed.
	ErrAlreadyJoined = errors.New("already joined or join in progress")
	// ErrNotJoined is returned by LeaveChannel when there is no joined
	// session to leave.
	ErrNotJoined = errors.New("not joined")
	// ErrSessionClosed is returned once Close has been called.
	ErrSessionClosed = errors.New("session is closed")
	// ErrSubscriptionNotFound is returned by Unsubscribe for unknown ids.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// AdapterError wraps a negative result code returned by a transport command.
// No session state is left mutated when one is returned.
type AdapterError struct {
	Op   string
	Code int
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter command %q failed with code %d", e.Op, e.Code)
}

func newAdapterError(op string, code int) *AdapterError {
	return &AdapterError{Op: op, Code: code}
}
