// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

// TestNetParams returns the network parameters for the public test network.
// Test network addresses share their base58check version bytes with the
// regression test network and are told apart from it only by the bech32
// human-readable part.
func TestNetParams() *Params {
	return &Params{
		Name:           "testnet",
		DefaultRPCPort: "18460",

		// Address encoding magics
		Bech32HRP:        "tbgl",
		PubKeyHashAddrID: 0x22, // starts with E or F
		ScriptHashAddrID: 0x32, // starts with M
	}
}
