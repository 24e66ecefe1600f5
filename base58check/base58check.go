// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package base58check

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// ChecksumLen is the number of checksum bytes appended to the data before it
// is base58 encoded.
const ChecksumLen = 4

// alphabet is the base58 alphabet.  It omits 0, O, I and l.
const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// IsAlphabet returns whether every character of s belongs to the base58
// alphabet.  The empty string is not considered base58.
func IsAlphabet(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAlphabetChar(s[i]) {
			return false
		}
	}
	return true
}

// isAlphabetChar returns whether c is a base58 alphabet character.
func isAlphabetChar(c byte) bool {
	switch {
	case c >= '1' && c <= '9':
		return true
	case c >= 'A' && c <= 'Z':
		return c != 'I' && c != 'O'
	case c >= 'a' && c <= 'z':
		return c != 'l'
	}
	return false
}

// Encode prepends the version byte to the payload, appends the checksum and
// returns the base58 encoding of the result.
func Encode(version byte, payload []byte) string {
	return base58.CheckEncode(payload, version)
}

// Decode decodes a base58check string into its version byte and payload.
//
// ErrInvalidFormat is returned when the string contains characters outside
// of the alphabet or decodes to fewer than a version byte and checksum.
// ErrChecksum is returned when the checksum does not match.
func Decode(s string) (byte, []byte, error) {
	if !IsAlphabet(s) {
		str := fmt.Sprintf("%q is not a base58 string", s)
		return 0, nil, makeError(ErrInvalidFormat, str)
	}

	payload, version, err := base58.CheckDecode(s)
	switch {
	case errors.Is(err, base58.ErrChecksum):
		str := fmt.Sprintf("checksum mismatch for %q", s)
		return 0, nil, makeError(ErrChecksum, str)

	case err != nil:
		str := fmt.Sprintf("%q decodes to less than %d bytes", s,
			ChecksumLen+1)
		return 0, nil, makeError(ErrInvalidFormat, str)
	}

	return version, payload, nil
}
