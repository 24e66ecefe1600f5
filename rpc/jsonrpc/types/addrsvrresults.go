// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

// ValidateAddressResult models the data returned by the validateaddress
// command.  Only IsValid and Error are set for an invalid address, and Error
// is never set for a valid one.
type ValidateAddressResult struct {
	IsValid        bool   `json:"isvalid"`
	Address        string `json:"address,omitempty"`
	ScriptPubKey   string `json:"scriptPubKey,omitempty"`
	IsScript       *bool  `json:"isscript,omitempty"`
	IsWitness      *bool  `json:"iswitness,omitempty"`
	WitnessVersion *int   `json:"witness_version,omitempty"`
	WitnessProgram string `json:"witness_program,omitempty"`
	Error          string `json:"error,omitempty"`
}

// GetAddressInfoResult models the data returned by the getaddressinfo
// command.
type GetAddressInfoResult struct {
	Address        string `json:"address"`
	ScriptPubKey   string `json:"scriptPubKey"`
	Asm            string `json:"asm"`
	Type           string `json:"type"`
	Encoding       string `json:"encoding"`
	Version        int    `json:"version"`
	IsScript       bool   `json:"isscript"`
	IsWitness      bool   `json:"iswitness"`
	WitnessVersion *int   `json:"witness_version,omitempty"`
	WitnessProgram string `json:"witness_program,omitempty"`
}

// GetAddressParamsResult models the data returned by the getaddressparams
// command.
type GetAddressParamsResult struct {
	Network          string `json:"network"`
	Bech32HRP        string `json:"bech32_hrp"`
	PubKeyHashAddrID int    `json:"pubkeyhash_addrid"`
	ScriptHashAddrID int    `json:"scripthash_addrid"`
}

// VersionResult models objects included in the version response.  In the
// actual result, these objects are keyed by the program or API name.
type VersionResult struct {
	VersionString string `json:"versionstring"`
	Major         uint32 `json:"major"`
	Minor         uint32 `json:"minor"`
	Patch         uint32 `json:"patch"`
	Prerelease    string `json:"prerelease"`
	BuildMetadata string `json:"buildmetadata"`
}
