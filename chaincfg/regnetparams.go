// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

// RegNetParams returns the network parameters for the regression test network.
// This should not be confused with the public test network.  The purpose of
// this network is primarily for unit tests and RPC server tests.
func RegNetParams() *Params {
	return &Params{
		Name:           "regtest",
		DefaultRPCPort: "18560",

		// Address encoding magics
		Bech32HRP:        "rbgl",
		PubKeyHashAddrID: 0x22, // starts with E or F
		ScriptHashAddrID: 0x32, // starts with M
	}
}
