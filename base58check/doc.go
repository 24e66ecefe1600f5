// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package base58check implements the base58check encoding used by legacy
Bitgesell addresses.

A base58check string is the base58 encoding of a version byte, a payload and
a four byte checksum.  The checksum is the first four bytes of the double
SHA-256 hash of the version byte and payload.  Each leading '1' character in
the string stands for one leading zero byte of the decoded data.

Errors

Errors returned by this package are of type base58check.Error and carry one
of the ErrorKind values so callers can use errors.Is to tell a malformed
string apart from one whose checksum does not match.
*/
package base58check
