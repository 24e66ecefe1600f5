// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/decred/dcrd/dcrjson/v4"
)

// TestAddrSvrCmds tests all of the address server commands marshal and
// unmarshal into valid results including handling of optional fields being
// omitted in the marshalled command.
func TestAddrSvrCmds(t *testing.T) {
	t.Parallel()

	testID := int(1)
	tests := []struct {
		name         string
		newCmd       func() (interface{}, error)
		staticCmd    func() interface{}
		marshalled   string
		unmarshalled interface{}
	}{{
		name: "validateaddress",
		newCmd: func() (interface{}, error) {
			return dcrjson.NewCmd(Method("validateaddress"), "rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x")
		},
		staticCmd: func() interface{} {
			return NewValidateAddressCmd("rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x")
		},
		marshalled:   `{"jsonrpc":"1.0","method":"validateaddress","params":["rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x"],"id":1}`,
		unmarshalled: &ValidateAddressCmd{Address: "rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x"},
	}, {
		name: "getaddressinfo",
		newCmd: func() (interface{}, error) {
			return dcrjson.NewCmd(Method("getaddressinfo"), "MAMYWDWqd46sYwL7h9ExCpzaPba53HhMh8")
		},
		staticCmd: func() interface{} {
			return NewGetAddressInfoCmd("MAMYWDWqd46sYwL7h9ExCpzaPba53HhMh8")
		},
		marshalled:   `{"jsonrpc":"1.0","method":"getaddressinfo","params":["MAMYWDWqd46sYwL7h9ExCpzaPba53HhMh8"],"id":1}`,
		unmarshalled: &GetAddressInfoCmd{Address: "MAMYWDWqd46sYwL7h9ExCpzaPba53HhMh8"},
	}, {
		name: "getaddressparams",
		newCmd: func() (interface{}, error) {
			return dcrjson.NewCmd(Method("getaddressparams"))
		},
		staticCmd: func() interface{} {
			return NewGetAddressParamsCmd()
		},
		marshalled:   `{"jsonrpc":"1.0","method":"getaddressparams","params":[],"id":1}`,
		unmarshalled: &GetAddressParamsCmd{},
	}, {
		name: "help",
		newCmd: func() (interface{}, error) {
			return dcrjson.NewCmd(Method("help"))
		},
		staticCmd: func() interface{} {
			return NewHelpCmd(nil)
		},
		marshalled:   `{"jsonrpc":"1.0","method":"help","params":[],"id":1}`,
		unmarshalled: &HelpCmd{Command: nil},
	}, {
		name: "help optional",
		newCmd: func() (interface{}, error) {
			return dcrjson.NewCmd(Method("help"), "validateaddress")
		},
		staticCmd: func() interface{} {
			return NewHelpCmd(dcrjson.String("validateaddress"))
		},
		marshalled:   `{"jsonrpc":"1.0","method":"help","params":["validateaddress"],"id":1}`,
		unmarshalled: &HelpCmd{Command: dcrjson.String("validateaddress")},
	}, {
		name: "stop",
		newCmd: func() (interface{}, error) {
			return dcrjson.NewCmd(Method("stop"))
		},
		staticCmd: func() interface{} {
			return NewStopCmd()
		},
		marshalled:   `{"jsonrpc":"1.0","method":"stop","params":[],"id":1}`,
		unmarshalled: &StopCmd{},
	}, {
		name: "version",
		newCmd: func() (interface{}, error) {
			return dcrjson.NewCmd(Method("version"))
		},
		staticCmd: func() interface{} {
			return NewVersionCmd()
		},
		marshalled:   `{"jsonrpc":"1.0","method":"version","params":[],"id":1}`,
		unmarshalled: &VersionCmd{},
	}, {
		name: "authenticate",
		newCmd: func() (interface{}, error) {
			return dcrjson.NewCmd(Method("authenticate"), "user", "pass")
		},
		staticCmd: func() interface{} {
			return NewAuthenticateCmd("user", "pass")
		},
		marshalled:   `{"jsonrpc":"1.0","method":"authenticate","params":["user","pass"],"id":1}`,
		unmarshalled: &AuthenticateCmd{Username: "user", Passphrase: "pass"},
	}}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		// Marshal the command as created by the new static command
		// creation function.
		marshalled, err := dcrjson.MarshalCmd("1.0", testID, test.staticCmd())
		if err != nil {
			t.Errorf("MarshalCmd #%d (%s) unexpected error: %v", i,
				test.name, err)
			continue
		}

		if !bytes.Equal(marshalled, []byte(test.marshalled)) {
			t.Errorf("Test #%d (%s) unexpected marshalled data - "+
				"got %s, want %s", i, test.name, marshalled,
				test.marshalled)
			continue
		}

		// Ensure the command is created without error via the generic
		// new command creation function.
		cmd, err := test.newCmd()
		if err != nil {
			t.Errorf("Test #%d (%s) unexpected dcrjson.NewCmd error: %v",
				i, test.name, err)
			continue
		}

		// Marshal the command as created by the generic new command
		// creation function.
		marshalled, err = dcrjson.MarshalCmd("1.0", testID, cmd)
		if err != nil {
			t.Errorf("MarshalCmd #%d (%s) unexpected error: %v", i,
				test.name, err)
			continue
		}

		if !bytes.Equal(marshalled, []byte(test.marshalled)) {
			t.Errorf("Test #%d (%s) unexpected marshalled data - "+
				"got %s, want %s", i, test.name, marshalled,
				test.marshalled)
			continue
		}

		var request dcrjson.Request
		if err := json.Unmarshal(marshalled, &request); err != nil {
			t.Errorf("Test #%d (%s) unexpected error while "+
				"unmarshalling JSON-RPC request: %v", i,
				test.name, err)
			continue
		}

		cmd, err = dcrjson.ParseParams(Method(request.Method), request.Params)
		if err != nil {
			t.Errorf("ParseParams #%d (%s) unexpected error: %v", i,
				test.name, err)
			continue
		}

		if !reflect.DeepEqual(cmd, test.unmarshalled) {
			t.Errorf("Test #%d (%s) unexpected unmarshalled command "+
				"- got %s, want %s", i, test.name,
				fmt.Sprintf("(%T) %+[1]v", cmd),
				fmt.Sprintf("(%T) %+[1]v\n", test.unmarshalled))
			continue
		}
	}
}

// TestValidateAddressResultWire ensures the validateaddress result only
// carries the error key for invalid addresses and omits the decoded fields
// for them.
func TestValidateAddressResultWire(t *testing.T) {
	t.Parallel()

	isScript, isWitness, witnessVersion := false, true, 0
	tests := []struct {
		name   string
		result ValidateAddressResult
		want   string
	}{{
		name: "invalid",
		result: ValidateAddressResult{
			IsValid: false,
			Error:   "Invalid address format",
		},
		want: `{"isvalid":false,"error":"Invalid address format"}`,
	}, {
		name: "valid witness",
		result: ValidateAddressResult{
			IsValid:        true,
			Address:        "rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x",
			ScriptPubKey:   "00145ec3eaf488f0555e43f85c20c96dfa0503715483",
			IsScript:       &isScript,
			IsWitness:      &isWitness,
			WitnessVersion: &witnessVersion,
			WitnessProgram: "5ec3eaf488f0555e43f85c20c96dfa0503715483",
		},
		want: `{"isvalid":true,` +
			`"address":"rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x",` +
			`"scriptPubKey":"00145ec3eaf488f0555e43f85c20c96dfa0503715483",` +
			`"isscript":false,"iswitness":true,"witness_version":0,` +
			`"witness_program":"5ec3eaf488f0555e43f85c20c96dfa0503715483"}`,
	}}

	for _, test := range tests {
		marshalled, err := json.Marshal(test.result)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if string(marshalled) != test.want {
			t.Errorf("%s: unexpected marshalled data -- got %s, want %s",
				test.name, marshalled, test.want)
		}
	}
}
