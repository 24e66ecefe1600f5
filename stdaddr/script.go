// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stdaddr

import (
	"github.com/decred/dcrd/txscript/v4"
)

const (
	// p2pkhPaymentScriptLen is the length of a standard pay-to-pubkey-hash
	// script.
	p2pkhPaymentScriptLen = 25

	// p2shPaymentScriptLen is the length of a standard pay-to-script-hash
	// script.
	p2shPaymentScriptLen = 23
)

// witnessVersionOpcode returns the small integer opcode that pushes the
// provided witness version.
func witnessVersionOpcode(witnessVersion byte) byte {
	if witnessVersion == 0 {
		return txscript.OP_0
	}
	return txscript.OP_1 - 1 + witnessVersion
}

// PaymentScript returns the output script that pays to the address.
func (a *DecodedAddress) PaymentScript() []byte {
	switch {
	case a.encoding == EncodingBase58Check && a.isScript:
		// A pay-to-script-hash script is of the form:
		//  HASH160 <20-byte hash> EQUAL
		script := make([]byte, p2shPaymentScriptLen)
		script[0] = txscript.OP_HASH160
		script[1] = txscript.OP_DATA_20
		copy(script[2:22], a.payload)
		script[22] = txscript.OP_EQUAL
		return script

	case a.encoding == EncodingBase58Check:
		// A pay-to-pubkey-hash script is of the form:
		//  DUP HASH160 <20-byte hash> EQUALVERIFY CHECKSIG
		script := make([]byte, p2pkhPaymentScriptLen)
		script[0] = txscript.OP_DUP
		script[1] = txscript.OP_HASH160
		script[2] = txscript.OP_DATA_20
		copy(script[3:23], a.payload)
		script[23] = txscript.OP_EQUALVERIFY
		script[24] = txscript.OP_CHECKSIG
		return script
	}

	// A witness program script is of the form:
	//  <witness version> <2 to 40 byte program>
	script := make([]byte, len(a.payload)+2)
	script[0] = witnessVersionOpcode(a.version)
	script[1] = txscript.OP_DATA_1 - 1 + byte(len(a.payload))
	copy(script[2:], a.payload)
	return script
}

// DisasmScript returns the one line disassembly of the payment script of the
// address.
func (a *DecodedAddress) DisasmScript() string {
	// The payment script is always well formed so there is never an error.
	disasm, _ := txscript.DisasmString(a.PaymentScript())
	return disasm
}
