// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"errors"

	"github.com/bitgesell/bgladdr/stdaddr"
)

// addrErrorMessages maps each address decoding error kind to the message
// reported to RPC clients.  Clients match on these strings, so they must not
// change.
var addrErrorMessages = map[stdaddr.ErrorKind]string{
	stdaddr.ErrInvalidFormat:           "Invalid address format",
	stdaddr.ErrInvalidBech32Prefix:     "Invalid prefix for Bech32 address",
	stdaddr.ErrInvalidBase58Prefix:     "Invalid prefix for Base58-encoded address",
	stdaddr.ErrInvalidBech32DataSize:   "Invalid Bech32 address data size",
	stdaddr.ErrInvalidBech32V0DataSize: "Invalid Bech32 v0 address data size",
	stdaddr.ErrInvalidWitnessVersion:   "Invalid Bech32 address witness version",
	stdaddr.ErrV0RequiresBech32:        "Version 0 witness address must use Bech32 checksum",
	stdaddr.ErrV1PlusRequiresBech32m:   "Version 1+ witness address must use Bech32m checksum",
}

// addrErrorMessage returns the client facing message for an error returned
// when decoding an address.  Errors of an unknown kind are reported as an
// invalid format.
func addrErrorMessage(err error) string {
	var kind stdaddr.ErrorKind
	if errors.As(err, &kind) {
		if msg, ok := addrErrorMessages[kind]; ok {
			return msg
		}
	}
	return addrErrorMessages[stdaddr.ErrInvalidFormat]
}
