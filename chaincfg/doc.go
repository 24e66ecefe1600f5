// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the address prefix parameters of the Bitgesell
// networks.
//
// Each network (main, test and regression test) is described by a Params
// value carrying the human-readable part used by segwit bech32 addresses and
// the version bytes used by base58check pay-to-pubkey-hash and
// pay-to-script-hash addresses.  The values are immutable once returned and
// are meant to be passed explicitly to the address decoding functions:
//
//	params := chaincfg.RegNetParams()
//	addr, err := stdaddr.DecodeAddress("rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x", params)
//
// Addresses for one network are rejected when decoded with the parameters of
// another network.
package chaincfg
