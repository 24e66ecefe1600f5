// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stdaddr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// checkWitnessProgram returns an error when the program size is not allowed
// for the witness version or the witness version is out of range.  Size is
// checked first.
func checkWitnessProgram(witnessVersion byte, program []byte) error {
	switch {
	case witnessVersion == 0 && len(program) != witnessV0KeyHashLen &&
		len(program) != witnessV0ScriptHashLen:
		str := fmt.Sprintf("witness version 0 program must be %d or %d bytes "+
			"instead of %d", witnessV0KeyHashLen, witnessV0ScriptHashLen,
			len(program))
		return makeError(ErrInvalidBech32V0DataSize, str)

	case witnessVersion != 0 && (len(program) < minWitnessProgramLen ||
		len(program) > maxWitnessProgramLen):
		str := fmt.Sprintf("witness version %d program must be between %d and "+
			"%d bytes instead of %d", witnessVersion, minWitnessProgramLen,
			maxWitnessProgramLen, len(program))
		return makeError(ErrInvalidBech32DataSize, str)

	case witnessVersion > maxWitnessVersion:
		str := fmt.Sprintf("witness version %d exceeds the maximum of %d",
			witnessVersion, maxWitnessVersion)
		return makeError(ErrInvalidWitnessVersion, str)
	}
	return nil
}

// checksumVariant returns the checksum variant a segwit address with the
// given witness version must be encoded with.
func checksumVariant(witnessVersion byte) bech32.Version {
	if witnessVersion == 0 {
		return bech32.Version0
	}
	return bech32.VersionM
}

// encodeSegWit encodes a witness version and program as a segwit address with
// the given human-readable part.  Version 0 uses bech32 and all later
// versions use bech32m.
func encodeSegWit(hrp string, witnessVersion byte, program []byte) (string, error) {
	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}
	data := make([]byte, 0, len(converted)+1)
	data = append(data, witnessVersion)
	data = append(data, converted...)

	if checksumVariant(witnessVersion) == bech32.Version0 {
		return bech32.Encode(hrp, data)
	}
	return bech32.EncodeM(hrp, data)
}

// NewAddressWitness returns a segwit address for the provided witness version
// and program on the network described by params.  The program size must be
// valid for the witness version.
func NewAddressWitness(witnessVersion byte, program []byte, params AddressParams) (*DecodedAddress, error) {
	if err := checkWitnessProgram(witnessVersion, program); err != nil {
		return nil, err
	}

	encoded, err := encodeSegWit(params.Bech32HRPSegwit(), witnessVersion,
		program)
	if err != nil {
		str := fmt.Sprintf("unable to encode witness program: %v", err)
		return nil, makeError(ErrInvalidFormat, str)
	}
	return newSegWitAddress(witnessVersion, program, encoded), nil
}

// newSegWitAddress returns a segwit address from an already validated witness
// version and program along with its canonical encoding.
func newSegWitAddress(witnessVersion byte, program []byte, encoded string) *DecodedAddress {
	encoding := EncodingBech32
	if checksumVariant(witnessVersion) == bech32.VersionM {
		encoding = EncodingBech32m
	}
	payload := make([]byte, len(program))
	copy(payload, program)
	isScript := (witnessVersion == 0 && len(payload) == witnessV0ScriptHashLen) ||
		(witnessVersion == 1 && len(payload) == taprootProgramLen)
	return &DecodedAddress{
		encoding: encoding,
		version:  witnessVersion,
		payload:  payload,
		isScript: isScript,
		encoded:  strings.ToLower(encoded),
	}
}

// decodeSegWitAddress decodes a string that is expected to be a segwit
// address.
//
// Strings that are not structurally bech32 are ErrInvalidFormat.  A string
// that is structurally bech32 but carries the human-readable part of another
// network is ErrInvalidBech32Prefix even when its checksum is also invalid.
func decodeSegWitAddress(addr string, params AddressParams) (*DecodedAddress, error) {
	wantHRP := params.Bech32HRPSegwit()
	hrp, data, variant, err := bech32.DecodeGeneric(addr)
	if err != nil {
		var csErr bech32.ErrInvalidChecksum
		if !errors.As(err, &csErr) {
			str := fmt.Sprintf("%q is not a base58check or bech32 string: %v",
				addr, err)
			return nil, makeError(ErrInvalidFormat, str)
		}

		// The checksum is only verified once the structure is known to be
		// valid, so the separator is present here.
		hrp = addr[:strings.LastIndexByte(addr, '1')]
		if !strings.EqualFold(hrp, wantHRP) {
			str := fmt.Sprintf("human-readable part %q does not match the "+
				"network prefix %q", strings.ToLower(hrp), wantHRP)
			return nil, makeError(ErrInvalidBech32Prefix, str)
		}
		str := fmt.Sprintf("checksum of %q matches neither bech32 nor "+
			"bech32m: %v", addr, err)
		return nil, makeError(ErrInvalidFormat, str)
	}
	if !strings.EqualFold(hrp, wantHRP) {
		str := fmt.Sprintf("human-readable part %q does not match the network "+
			"prefix %q", hrp, wantHRP)
		return nil, makeError(ErrInvalidBech32Prefix, str)
	}
	if len(data) == 0 {
		str := fmt.Sprintf("%q is missing the witness version", addr)
		return nil, makeError(ErrInvalidFormat, str)
	}

	witnessVersion := data[0]
	if variant != checksumVariant(witnessVersion) {
		if witnessVersion == 0 {
			str := "witness version 0 address is encoded with bech32m"
			return nil, makeError(ErrV0RequiresBech32, str)
		}
		str := fmt.Sprintf("witness version %d address is encoded with bech32",
			witnessVersion)
		return nil, makeError(ErrV1PlusRequiresBech32m, str)
	}

	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		str := fmt.Sprintf("invalid padding in witness program of %q: %v",
			addr, err)
		return nil, makeError(ErrInvalidFormat, str)
	}
	if err := checkWitnessProgram(witnessVersion, program); err != nil {
		return nil, err
	}

	return newSegWitAddress(witnessVersion, program, addr), nil
}
