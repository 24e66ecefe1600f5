// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"fmt"
	"strings"
)

// Params defines the address encoding parameters of a Bitgesell network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// DefaultRPCPort defines the default port the address validation RPC
	// server listens on for the network.
	DefaultRPCPort string

	// Bech32HRP is the human-readable part of segwit addresses.
	Bech32HRP string

	// Address encoding magics.
	PubKeyHashAddrID byte // Version byte of a P2PKH address
	ScriptHashAddrID byte // Version byte of a P2SH address
}

// Bech32HRPSegwit returns the human-readable part for segwit addresses on the
// network.
//
// This is part of the stdaddr.AddressParams interface.
func (p *Params) Bech32HRPSegwit() string {
	return p.Bech32HRP
}

// AddrIDPubKeyHash returns the base58check version byte for
// pay-to-pubkey-hash addresses on the network.
//
// This is part of the stdaddr.AddressParams interface.
func (p *Params) AddrIDPubKeyHash() byte {
	return p.PubKeyHashAddrID
}

// AddrIDScriptHash returns the base58check version byte for
// pay-to-script-hash addresses on the network.
//
// This is part of the stdaddr.AddressParams interface.
func (p *Params) AddrIDScriptHash() byte {
	return p.ScriptHashAddrID
}

// ParamsByName returns the parameters of the network with the given name.
// The aliases "testnet3" and "regnet" are accepted as well.
func ParamsByName(name string) (*Params, error) {
	switch strings.ToLower(name) {
	case "mainnet":
		return MainNetParams(), nil
	case "testnet", "testnet3":
		return TestNetParams(), nil
	case "regtest", "regnet":
		return RegNetParams(), nil
	}
	return nil, fmt.Errorf("unknown network %q", name)
}
