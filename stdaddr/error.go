// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stdaddr

// ErrorKind identifies a kind of error.
//
// The set of kinds is closed.  Callers that need to present a failure to
// users map each kind to a fixed message of their own.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrInvalidFormat indicates a string is not shaped like any supported
	// address encoding, or is shaped like one but its checksum does not
	// match either bech32 variant or the base58check hash.
	ErrInvalidFormat = ErrorKind("ErrInvalidFormat")

	// ErrInvalidBech32Prefix indicates a bech32 string carries a
	// human-readable part that does not belong to the network.
	ErrInvalidBech32Prefix = ErrorKind("ErrInvalidBech32Prefix")

	// ErrInvalidBase58Prefix indicates a base58check string decoded
	// successfully but its version byte is not a recognized address type on
	// the network.
	ErrInvalidBase58Prefix = ErrorKind("ErrInvalidBase58Prefix")

	// ErrInvalidBech32DataSize indicates the witness program of a version 1
	// or later segwit address is shorter than 2 bytes or longer than 40.
	ErrInvalidBech32DataSize = ErrorKind("ErrInvalidBech32DataSize")

	// ErrInvalidBech32V0DataSize indicates the witness program of a version 0
	// segwit address is neither 20 nor 32 bytes.
	ErrInvalidBech32V0DataSize = ErrorKind("ErrInvalidBech32V0DataSize")

	// ErrInvalidWitnessVersion indicates a segwit address carries a witness
	// version above 16.
	ErrInvalidWitnessVersion = ErrorKind("ErrInvalidWitnessVersion")

	// ErrV0RequiresBech32 indicates a version 0 segwit address is protected
	// by a bech32m checksum.
	ErrV0RequiresBech32 = ErrorKind("ErrV0RequiresBech32")

	// ErrV1PlusRequiresBech32m indicates a version 1 or later segwit address
	// is protected by a bech32 checksum.
	ErrV1PlusRequiresBech32m = ErrorKind("ErrV1PlusRequiresBech32m")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an address-related error.
//
// It has full support for errors.Is and errors.As, so the caller can ascertain
// the specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
