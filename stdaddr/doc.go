// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package stdaddr decodes and validates Bitgesell payment addresses.

Two encodings are supported.  Legacy pay-to-pubkey-hash and
pay-to-script-hash addresses use base58check with a single network specific
version byte.  Segwit addresses use bech32 for witness version 0 and bech32m
for witness versions 1 through 16.

DecodeAddress accepts an arbitrary string together with the prefix parameters
of the network it must belong to and either returns a DecodedAddress or an
error carrying exactly one ErrorKind.  When a string is wrong in more than one
way, the reported kind follows a fixed precedence: a wrong network prefix is
reported before a wrong checksum variant, which is reported before a bad
program size, which is reported before an out of range witness version.

The package holds no mutable state, so DecodeAddress is safe for concurrent
use as long as the supplied parameters are not modified.

Errors

Errors returned by this package are of type stdaddr.Error and wrap an
ErrorKind, so callers can use errors.Is to test for a kind or errors.As to
extract it:

	_, err := stdaddr.DecodeAddress(s, params)
	var kind stdaddr.ErrorKind
	if errors.As(err, &kind) {
		// handle kind
	}
*/
package stdaddr
