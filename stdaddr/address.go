// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stdaddr

import (
	"fmt"
	"strings"

	"github.com/bitgesell/bgladdr/base58check"
)

// AddressParams defines an interface that is used to provide the parameters
// required when encoding and decoding addresses.  These values are typically
// well-defined and unique per network.
type AddressParams interface {
	// Bech32HRPSegwit returns the human-readable part for segwit addresses.
	Bech32HRPSegwit() string

	// AddrIDPubKeyHash returns the base58check version byte for
	// pay-to-pubkey-hash addresses.
	AddrIDPubKeyHash() byte

	// AddrIDScriptHash returns the base58check version byte for
	// pay-to-script-hash addresses.
	AddrIDScriptHash() byte
}

// Encoding identifies the text encoding of an address.
type Encoding uint8

// These constants define the supported address encodings.
const (
	EncodingBase58Check Encoding = iota
	EncodingBech32
	EncodingBech32m
)

// String returns the encoding as a human-readable name.
func (e Encoding) String() string {
	switch e {
	case EncodingBase58Check:
		return "base58check"
	case EncodingBech32:
		return "bech32"
	case EncodingBech32m:
		return "bech32m"
	}
	return fmt.Sprintf("unknown(%d)", uint8(e))
}

// AddressType identifies the payment script an address commits to.
type AddressType string

// These constants define the address types.
const (
	AddrTypePubKeyHash          = AddressType("pubkeyhash")
	AddrTypeScriptHash          = AddressType("scripthash")
	AddrTypeWitnessV0KeyHash    = AddressType("witness_v0_keyhash")
	AddrTypeWitnessV0ScriptHash = AddressType("witness_v0_scripthash")
	AddrTypeWitnessV1Taproot    = AddressType("witness_v1_taproot")
	AddrTypeWitnessUnknown      = AddressType("witness_unknown")
)

// MaxAddressLen is the longest string accepted as an address.  It is the
// bech32 length limit and exceeds every base58check address.
const MaxAddressLen = 90

const (
	// hash160Size is the size of the hash committed to by base58check
	// addresses.
	hash160Size = 20

	// maxWitnessVersion is the highest witness version a segwit address may
	// carry.
	maxWitnessVersion = 16

	// minWitnessProgramLen and maxWitnessProgramLen bound the program of
	// witness version 1 and later.
	minWitnessProgramLen = 2
	maxWitnessProgramLen = 40

	// witnessV0KeyHashLen and witnessV0ScriptHashLen are the only program
	// sizes allowed for witness version 0.
	witnessV0KeyHashLen    = 20
	witnessV0ScriptHashLen = 32

	// taprootProgramLen is the program size of a witness version 1 taproot
	// output.
	taprootProgramLen = 32
)

// DecodedAddress is a successfully decoded and validated address.  Its
// payload is always within the bounds allowed for its encoding and version.
type DecodedAddress struct {
	encoding Encoding
	version  byte
	payload  []byte
	isScript bool
	encoded  string
}

// Encoding returns the text encoding of the address.
func (a *DecodedAddress) Encoding() Encoding {
	return a.encoding
}

// Version returns the base58check version byte for legacy addresses or the
// witness version for segwit addresses.
func (a *DecodedAddress) Version() byte {
	return a.version
}

// Payload returns a copy of the hash or witness program committed to by the
// address.
func (a *DecodedAddress) Payload() []byte {
	payload := make([]byte, len(a.payload))
	copy(payload, a.payload)
	return payload
}

// Address returns the canonical string encoding of the address.  Segwit
// addresses are always rendered in lowercase.
func (a *DecodedAddress) Address() string {
	return a.encoded
}

// String returns the canonical string encoding of the address.
//
// This is equivalent to calling Address.
func (a *DecodedAddress) String() string {
	return a.encoded
}

// IsWitness returns whether the address is a segwit address.
func (a *DecodedAddress) IsWitness() bool {
	return a.encoding != EncodingBase58Check
}

// IsScript returns whether the address commits to a script rather than a
// public key.
func (a *DecodedAddress) IsScript() bool {
	return a.isScript
}

// Type returns the payment script type the address commits to.
func (a *DecodedAddress) Type() AddressType {
	switch {
	case a.encoding == EncodingBase58Check && a.isScript:
		return AddrTypeScriptHash
	case a.encoding == EncodingBase58Check:
		return AddrTypePubKeyHash
	case a.version == 0 && len(a.payload) == witnessV0KeyHashLen:
		return AddrTypeWitnessV0KeyHash
	case a.version == 0:
		return AddrTypeWitnessV0ScriptHash
	case a.version == 1 && len(a.payload) == taprootProgramLen:
		return AddrTypeWitnessV1Taproot
	}
	return AddrTypeWitnessUnknown
}

// NewAddressPubKeyHash returns a base58check pay-to-pubkey-hash address for
// the provided 20-byte hash on the network described by params.
func NewAddressPubKeyHash(hash []byte, params AddressParams) (*DecodedAddress, error) {
	return newBase58Address(params.AddrIDPubKeyHash(), hash, params)
}

// NewAddressScriptHash returns a base58check pay-to-script-hash address for
// the provided 20-byte hash on the network described by params.
func NewAddressScriptHash(hash []byte, params AddressParams) (*DecodedAddress, error) {
	return newBase58Address(params.AddrIDScriptHash(), hash, params)
}

// newBase58Address validates a version byte and hash against the network
// parameters and returns the resulting address.
func newBase58Address(version byte, hash []byte, params AddressParams) (*DecodedAddress, error) {
	var isScript bool
	switch version {
	case params.AddrIDPubKeyHash():
	case params.AddrIDScriptHash():
		isScript = true
	default:
		str := fmt.Sprintf("version byte %d is not a recognized address "+
			"type", version)
		return nil, makeError(ErrInvalidBase58Prefix, str)
	}
	if len(hash) != hash160Size {
		str := fmt.Sprintf("version byte %d requires a %d-byte hash instead "+
			"of %d bytes", version, hash160Size, len(hash))
		return nil, makeError(ErrInvalidBase58Prefix, str)
	}

	payload := make([]byte, hash160Size)
	copy(payload, hash)
	return &DecodedAddress{
		encoding: EncodingBase58Check,
		version:  version,
		payload:  payload,
		isScript: isScript,
		encoded:  base58check.Encode(version, payload),
	}, nil
}

// hasNetworkHRP returns whether addr begins with the human-readable part hrp,
// compared without regard to case, and has a bech32 separator after it.
func hasNetworkHRP(addr, hrp string) bool {
	if hrp == "" || len(addr) <= len(hrp) {
		return false
	}
	return strings.EqualFold(addr[:len(hrp)], hrp) &&
		strings.LastIndexByte(addr, '1') >= len(hrp)
}

// DecodeAddress decodes the string encoding of an address and returns it as
// a DecodedAddress provided it is valid for the network described by params.
//
// Strings longer than 90 characters are ErrInvalidFormat without further
// decoding.  Strings led by the network's human-readable part are decoded as
// bech32.  Otherwise base58check is tried: a string that decodes with a valid
// checksum is accepted when its version byte is one of the network address
// types and rejected with ErrInvalidBase58Prefix otherwise.  Anything left is
// decoded as bech32, which reports another network's prefix, the checksum,
// the checksum variant required by the witness version, the program size and
// finally the witness version range, in that order.  Everything else is
// ErrInvalidFormat.
func DecodeAddress(addr string, params AddressParams) (*DecodedAddress, error) {
	if len(addr) > MaxAddressLen {
		str := fmt.Sprintf("address is %d characters long, exceeding the "+
			"maximum of %d", len(addr), MaxAddressLen)
		return nil, makeError(ErrInvalidFormat, str)
	}
	if hasNetworkHRP(addr, params.Bech32HRPSegwit()) {
		return decodeSegWitAddress(addr, params)
	}

	version, payload, err := base58check.Decode(addr)
	if err == nil && len(payload) <= hash160Size {
		return newBase58Address(version, payload, params)
	}

	return decodeSegWitAddress(addr, params)
}
