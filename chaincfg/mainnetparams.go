// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

// MainNetParams returns the network parameters for the main Bitgesell network.
func MainNetParams() *Params {
	return &Params{
		Name:           "mainnet",
		DefaultRPCPort: "8460",

		// Address encoding magics
		Bech32HRP:        "bgl",
		PubKeyHashAddrID: 0x0a, // starts with 5
		ScriptHashAddrID: 0x19, // starts with B
	}
}
