// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submission

import (
	"errors"

	"github.com/danielhkuo/onlyfringe/models"
)

// Validation failure kinds. Match with errors.Is.
var (
	ErrMissingField          = errors.New("missing field")
	ErrInsufficientSources   = errors.New("insufficient sources")
	ErrLengthOutOfRange      = errors.New("length out of range")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidSourceURL      = errors.New("invalid source url")
	ErrArgumentNotFound      = errors.New("argument not found")
	ErrArgumentNotRebuttable = errors.New("argument not rebuttable")
)

var codes = map[error]string{
	ErrMissingField:          "MissingField",
	ErrInsufficientSources:   "InsufficientSources",
	ErrLengthOutOfRange:      "LengthOutOfRange",
	ErrUserNotFound:          "UserNotFound",
	ErrInvalidSourceURL:      "InvalidSourceURL",
	ErrArgumentNotFound:      "NotFound",
	ErrArgumentNotRebuttable: "ArgumentNotRebuttable",
}

// ValidationError is a rejected submission. Message is meant for the
// submitter; InvalidSources is set for ErrInvalidSourceURL.
type ValidationError struct {
	Kind           error
	Message        string
	InvalidSources []models.SourceCheck
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Kind }

// Code is the stable name of the failure kind
func (e *ValidationError) Code() string {
	return codes[e.Kind]
}

func invalid(kind error, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}
