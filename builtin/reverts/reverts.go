// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the rejections a protocol call can end with.
// A revert aborts the whole call, every change it made is rolled back.
package reverts

import (
	"errors"
	"fmt"
)

// Kinds of reverts. Match them with errors.Is.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAlreadyInitialized  = errors.New("already initialized")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrExceedsLimit        = errors.New("exceeds limit")
	ErrInsufficientValue   = errors.New("insufficient value")
	ErrNotDue              = errors.New("not due")
	ErrAlreadyActive       = errors.New("already active")
	ErrNotActive           = errors.New("not active")
	ErrOutOfBounds         = errors.New("out of bounds")
	ErrInvalidArgument     = errors.New("invalid argument")
)

// ErrRevert is a protocol rejection with a descriptive message.
type ErrRevert struct {
	kind    error
	message string
}

// New creates a revert of the given kind.
func New(kind error, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

// Newf creates a revert of the given kind with a formatted message.
func Newf(kind error, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Unwrap returns the kind, so errors.Is(err, ErrExceedsLimit) holds.
func (e *ErrRevert) Unwrap() error {
	return e.kind
}

// Kind returns the kind of the revert.
func (e *ErrRevert) Kind() error {
	return e.kind
}

// IsRevertErr tells a protocol rejection apart from an infrastructure failure.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of a revert, nil for other errors.
func KindOf(err error) error {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return nil
}
