// Copyright (c) 2025 The bdk-go developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tx

import "fmt"

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific CodecError.
const (
	// ErrMalformed indicates that the transaction bytes could not be
	// decoded as a consensus-serialized transaction.  This includes
	// truncated input.  When this error code is set, the Err field of the
	// CodecError will be set to the underlying error returned from the
	// wire decoder.
	ErrMalformed ErrorCode = iota

	// ErrTrailingBytes indicates that the transaction decoded correctly
	// but was followed by extra bytes inconsistent with the declared
	// structure.
	ErrTrailingBytes

	// ErrSerialize indicates that a decoded transaction failed to encode
	// back to its wire form.
	ErrSerialize
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrMalformed:     "ErrMalformed",
	ErrTrailingBytes: "ErrTrailingBytes",
	ErrSerialize:     "ErrSerialize",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// CodecError provides a single type for errors that can happen while
// decoding or encoding a raw transaction.  A failed decode never produces a
// partial transaction.
type CodecError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error
}

// Error satisfies the error interface and prints human-readable errors.
func (e CodecError) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e CodecError) Unwrap() error {
	return e.Err
}

// codecError creates a CodecError given a set of arguments.
func codecError(c ErrorCode, desc string, err error) CodecError {
	return CodecError{ErrorCode: c, Description: desc, Err: err}
}
