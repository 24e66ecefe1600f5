// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/dcrjson/v4"

	"github.com/bitgesell/bgladdr/chaincfg"
	"github.com/bitgesell/bgladdr/rpc/jsonrpc/types"
	"github.com/bitgesell/bgladdr/stdaddr"
)

// rpcTest describes a single handler test.
type rpcTest struct {
	name            string
	handler         commandHandler
	cmd             interface{}
	mockChainParams *chaincfg.Params
	result          interface{}
	wantErr         bool
	errCode         dcrjson.RPCErrorCode
	errMsg          string
}

// defaultChainParams is the network used by handler tests that do not
// override it.
var defaultChainParams = chaincfg.RegNetParams()

// Pointer helpers for expected results.
func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

// testRPCServerHandler runs the provided handler tests against a server
// configured for each test.
func testRPCServerHandler(t *testing.T, tests []rpcTest) {
	t.Helper()

	for _, test := range tests {
		test := test // capture range variable
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			chainParams := defaultChainParams
			if test.mockChainParams != nil {
				chainParams = test.mockChainParams
			}
			testServer := &Server{
				cfg:           Config{ChainParams: chainParams},
				helpCacher:    newHelpCacher(),
				validateCache: newValidateCache(16),
			}
			result, err := test.handler(context.Background(), testServer,
				test.cmd)
			if test.wantErr {
				var rpcErr *dcrjson.RPCError
				if !errors.As(err, &rpcErr) || rpcErr.Code != test.errCode {
					if rpcErr != nil {
						t.Errorf("%s\nwant: %+v\n got: %+v\n", test.name,
							test.errCode, rpcErr.Code)
					} else {
						t.Errorf("%s\nwant: %+v\n got: nil\n", test.name,
							test.errCode)
					}
					return
				}
				if test.errMsg != "" && rpcErr.Message != test.errMsg {
					t.Errorf("%s\nwant message: %q\n got message: %q\n",
						test.name, test.errMsg, rpcErr.Message)
				}
				return
			}
			if err != nil {
				t.Errorf("%s\nunexpected error: %+v\n", test.name, err)
				return
			}
			if !reflect.DeepEqual(result, test.result) {
				t.Errorf("%s\nwant: %s\n got: %s\n", test.name,
					spew.Sdump(test.result), spew.Sdump(result))
			}
		})
	}
}

func TestHandleValidateAddress(t *testing.T) {
	t.Parallel()

	testRPCServerHandler(t, []rpcTest{{
		name:    "handleValidateAddress: p2pkh",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "EgVXgiiRUUoG8hoVtx3G5guAVqVb5zFPJi"},
		result: types.ValidateAddressResult{
			IsValid:      true,
			Address:      "EgVXgiiRUUoG8hoVtx3G5guAVqVb5zFPJi",
			ScriptPubKey: "76a914000102030405060708090a0b0c0d0e0f1011121388ac",
			IsScript:     boolPtr(false),
			IsWitness:    boolPtr(false),
		},
	}, {
		name:    "handleValidateAddress: p2sh",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "MAMYWDWqd46sYwL7h9ExCpzaPba53HhMh8"},
		result: types.ValidateAddressResult{
			IsValid:      true,
			Address:      "MAMYWDWqd46sYwL7h9ExCpzaPba53HhMh8",
			ScriptPubKey: "a9141aeda890606f3e9bd6085dadef98ce304beecd9f87",
			IsScript:     boolPtr(true),
			IsWitness:    boolPtr(false),
		},
	}, {
		name:    "handleValidateAddress: witness v0 key hash",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x"},
		result: types.ValidateAddressResult{
			IsValid:        true,
			Address:        "rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x",
			ScriptPubKey:   "00145ec3eaf488f0555e43f85c20c96dfa0503715483",
			IsScript:       boolPtr(false),
			IsWitness:      boolPtr(true),
			WitnessVersion: intPtr(0),
			WitnessProgram: "5ec3eaf488f0555e43f85c20c96dfa0503715483",
		},
	}, {
		name:    "handleValidateAddress: uppercase witness v0 is canonicalized",
		handler: handleValidateAddress,
		cmd: &types.ValidateAddressCmd{
			Address: strings.ToUpper("rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x"),
		},
		result: types.ValidateAddressResult{
			IsValid:        true,
			Address:        "rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x",
			ScriptPubKey:   "00145ec3eaf488f0555e43f85c20c96dfa0503715483",
			IsScript:       boolPtr(false),
			IsWitness:      boolPtr(true),
			WitnessVersion: intPtr(0),
			WitnessProgram: "5ec3eaf488f0555e43f85c20c96dfa0503715483",
		},
	}, {
		name:    "handleValidateAddress: witness v16",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "rbgl1s40xs29twsu"},
		result: types.ValidateAddressResult{
			IsValid:        true,
			Address:        "rbgl1s40xs29twsu",
			ScriptPubKey:   "6002abcd",
			IsScript:       boolPtr(false),
			IsWitness:      boolPtr(true),
			WitnessVersion: intPtr(16),
			WitnessProgram: "abcd",
		},
	}, {
		name:    "handleValidateAddress: v1 with bech32 checksum",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "rbgl1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqsjdr7p"},
		result: types.ValidateAddressResult{
			Error: "Version 1+ witness address must use Bech32m checksum",
		},
	}, {
		name:    "handleValidateAddress: v0 with bech32m checksum",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "rbgl1qw508d6qejxtdg4y5r3zarvary0c5xw7kgtktm8"},
		result: types.ValidateAddressResult{
			Error: "Version 0 witness address must use Bech32 checksum",
		},
	}, {
		name:    "handleValidateAddress: witness version 17",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "rbgl130xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqe68dw0"},
		result: types.ValidateAddressResult{
			Error: "Invalid Bech32 address witness version",
		},
	}, {
		name:    "handleValidateAddress: v16 program too long",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "rbgl1s0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7v8n0nx0muaewav253wkc50"},
		result: types.ValidateAddressResult{
			Error: "Invalid Bech32 address data size",
		},
	}, {
		name:    "handleValidateAddress: v0 program 21 bytes",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "rbgl1qw508d6qejxtdg4y5r3zarvary0c5xw7kqqdx75yt"},
		result: types.ValidateAddressResult{
			Error: "Invalid Bech32 v0 address data size",
		},
	}, {
		name:    "handleValidateAddress: testnet hrp",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "tbgl1pw508d6qejxtdg4y5r3zarvary0c5xw7kw508d6qejxtdg4y5r3zarvary0c5xw7khvqghp"},
		result: types.ValidateAddressResult{
			Error: "Invalid prefix for Bech32 address",
		},
	}, {
		name:    "handleValidateAddress: base58 version 0",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "17VZNX1SN5NtKa8UQFxwQbFeFc3iqRYhem"},
		result: types.ValidateAddressResult{
			Error: "Invalid prefix for Base58-encoded address",
		},
	}, {
		name:    "handleValidateAddress: garbage",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: "asfah14i8fajz0123f"},
		result: types.ValidateAddressResult{
			Error: "Invalid address format",
		},
	}, {
		name:    "handleValidateAddress: empty",
		handler: handleValidateAddress,
		cmd:     &types.ValidateAddressCmd{Address: ""},
		result: types.ValidateAddressResult{
			Error: "Invalid address format",
		},
	}, {
		name:            "handleValidateAddress: mainnet p2pkh",
		handler:         handleValidateAddress,
		cmd:             &types.ValidateAddressCmd{Address: "52P447ZWS9gEWJTRJt3cSgNHPjJx3Ebenr"},
		mockChainParams: chaincfg.MainNetParams(),
		result: types.ValidateAddressResult{
			IsValid:      true,
			Address:      "52P447ZWS9gEWJTRJt3cSgNHPjJx3Ebenr",
			ScriptPubKey: "76a914000102030405060708090a0b0c0d0e0f1011121388ac",
			IsScript:     boolPtr(false),
			IsWitness:    boolPtr(false),
		},
	}})
}

func TestHandleGetAddressInfo(t *testing.T) {
	t.Parallel()

	testRPCServerHandler(t, []rpcTest{{
		name:    "handleGetAddressInfo: p2pkh",
		handler: handleGetAddressInfo,
		cmd:     &types.GetAddressInfoCmd{Address: "EgVXgiiRUUoG8hoVtx3G5guAVqVb5zFPJi"},
		result: types.GetAddressInfoResult{
			Address:      "EgVXgiiRUUoG8hoVtx3G5guAVqVb5zFPJi",
			ScriptPubKey: "76a914000102030405060708090a0b0c0d0e0f1011121388ac",
			Asm: "OP_DUP OP_HASH160 000102030405060708090a0b0c0d0e0f10111213 " +
				"OP_EQUALVERIFY OP_CHECKSIG",
			Type:     "pubkeyhash",
			Encoding: "base58check",
			Version:  34,
		},
	}, {
		name:    "handleGetAddressInfo: p2sh",
		handler: handleGetAddressInfo,
		cmd:     &types.GetAddressInfoCmd{Address: "MAMYWDWqd46sYwL7h9ExCpzaPba53HhMh8"},
		result: types.GetAddressInfoResult{
			Address:      "MAMYWDWqd46sYwL7h9ExCpzaPba53HhMh8",
			ScriptPubKey: "a9141aeda890606f3e9bd6085dadef98ce304beecd9f87",
			Asm:          "OP_HASH160 1aeda890606f3e9bd6085dadef98ce304beecd9f OP_EQUAL",
			Type:         "scripthash",
			Encoding:     "base58check",
			Version:      50,
			IsScript:     true,
		},
	}, {
		name:    "handleGetAddressInfo: witness v0 key hash",
		handler: handleGetAddressInfo,
		cmd:     &types.GetAddressInfoCmd{Address: "rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x"},
		result: types.GetAddressInfoResult{
			Address:        "rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x",
			ScriptPubKey:   "00145ec3eaf488f0555e43f85c20c96dfa0503715483",
			Asm:            "0 5ec3eaf488f0555e43f85c20c96dfa0503715483",
			Type:           "witness_v0_keyhash",
			Encoding:       "bech32",
			Version:        0,
			IsWitness:      true,
			WitnessVersion: intPtr(0),
			WitnessProgram: "5ec3eaf488f0555e43f85c20c96dfa0503715483",
		},
	}, {
		name:    "handleGetAddressInfo: bad checksum",
		handler: handleGetAddressInfo,
		cmd:     &types.GetAddressInfoCmd{Address: "rbgl1qqqqsyqcyq5rqwzqfpg9scrgwpugpzysnyuq8qq"},
		wantErr: true,
		errCode: dcrjson.ErrRPCInvalidAddressOrKey,
		errMsg:  "Invalid address format",
	}, {
		name:    "handleGetAddressInfo: wrong network prefix",
		handler: handleGetAddressInfo,
		cmd:     &types.GetAddressInfoCmd{Address: "bgl1qqqqsyqcyq5rqwzqfpg9scrgwpugpzysnkzz5rs"},
		wantErr: true,
		errCode: dcrjson.ErrRPCInvalidAddressOrKey,
		errMsg:  "Invalid prefix for Bech32 address",
	}, {
		name:    "handleGetAddressInfo: v1 program too short",
		handler: handleGetAddressInfo,
		cmd:     &types.GetAddressInfoCmd{Address: "rbgl1pqu2kf8lk"},
		wantErr: true,
		errCode: dcrjson.ErrRPCInvalidAddressOrKey,
		errMsg:  "Invalid Bech32 address data size",
	}})
}

func TestHandleGetAddressParams(t *testing.T) {
	t.Parallel()

	testRPCServerHandler(t, []rpcTest{{
		name:    "handleGetAddressParams: regnet",
		handler: handleGetAddressParams,
		cmd:     &types.GetAddressParamsCmd{},
		result: types.GetAddressParamsResult{
			Network:          "regtest",
			Bech32HRP:        "rbgl",
			PubKeyHashAddrID: 34,
			ScriptHashAddrID: 50,
		},
	}, {
		name:            "handleGetAddressParams: mainnet",
		handler:         handleGetAddressParams,
		cmd:             &types.GetAddressParamsCmd{},
		mockChainParams: chaincfg.MainNetParams(),
		result: types.GetAddressParamsResult{
			Network:          "mainnet",
			Bech32HRP:        "bgl",
			PubKeyHashAddrID: 10,
			ScriptHashAddrID: 25,
		},
	}})
}

func TestHandleHelp(t *testing.T) {
	t.Parallel()

	testRPCServerHandler(t, []rpcTest{{
		name:    "handleHelp: unknown method",
		handler: handleHelp,
		cmd:     &types.HelpCmd{Command: dcrjson.String("getblock")},
		wantErr: true,
		errCode: dcrjson.ErrRPCInvalidParameter,
	}, {
		name:    "handleHelp: websocket only method",
		handler: handleHelp,
		cmd:     &types.HelpCmd{Command: dcrjson.String("authenticate")},
		wantErr: true,
		errCode: dcrjson.ErrRPCInvalidParameter,
	}})
}

func TestHandleStop(t *testing.T) {
	t.Parallel()

	testRPCServerHandler(t, []rpcTest{{
		name:    "handleStop: ok",
		handler: handleStop,
		cmd:     &types.StopCmd{},
		result:  "bgladdrd stopping.",
	}})
}

// TestHelpText ensures help produces usage for every command and detailed
// help for a single command.
func TestHelpText(t *testing.T) {
	t.Parallel()

	s := &Server{cfg: Config{ChainParams: defaultChainParams},
		helpCacher: newHelpCacher()}
	result, err := handleHelp(context.Background(), s, &types.HelpCmd{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	usage, ok := result.(string)
	if !ok {
		t.Fatalf("unexpected result type %T", result)
	}
	for method := range rpcHandlers {
		if !strings.Contains(usage, string(method)) {
			t.Errorf("usage does not mention %q:\n%s", method, usage)
		}
	}
	if strings.Contains(usage, "authenticate") {
		t.Errorf("usage mentions websocket only command:\n%s", usage)
	}

	result, err = handleHelp(context.Background(), s,
		&types.HelpCmd{Command: dcrjson.String("validateaddress")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	help := result.(string)
	if !strings.HasPrefix(help, "validateaddress") ||
		!strings.Contains(help, helpSynopses["validateaddress"]) {

		t.Errorf("unexpected validateaddress help:\n%s", help)
	}

	// Every served command must have a synopsis.
	for method := range rpcHandlers {
		if _, ok := helpSynopses[method]; !ok {
			t.Errorf("no help synopsis for %q", method)
		}
	}
}

// TestHandleVersion ensures the version command reports both the server and
// API versions.
func TestHandleVersion(t *testing.T) {
	t.Parallel()

	result, err := handleVersion(context.Background(), nil, &types.VersionCmd{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	versions := result.(map[string]types.VersionResult)
	api, ok := versions["bgladdrdjsonrpcapi"]
	if !ok {
		t.Fatalf("missing api version in %v", versions)
	}
	if api.VersionString != jsonrpcSemverString || api.Major != jsonrpcSemverMajor {
		t.Errorf("unexpected api version %+v", api)
	}
	if _, ok := versions["bgladdrd"]; !ok {
		t.Fatalf("missing server version in %v", versions)
	}
}

// TestAddrErrorMessage ensures every error kind has a client facing message
// and unknown errors are reported as an invalid format.
func TestAddrErrorMessage(t *testing.T) {
	t.Parallel()

	kinds := []stdaddr.ErrorKind{
		stdaddr.ErrInvalidFormat,
		stdaddr.ErrInvalidBech32Prefix,
		stdaddr.ErrInvalidBase58Prefix,
		stdaddr.ErrInvalidBech32DataSize,
		stdaddr.ErrInvalidBech32V0DataSize,
		stdaddr.ErrInvalidWitnessVersion,
		stdaddr.ErrV0RequiresBech32,
		stdaddr.ErrV1PlusRequiresBech32m,
	}
	seen := make(map[string]stdaddr.ErrorKind)
	for _, kind := range kinds {
		msg, ok := addrErrorMessages[kind]
		if !ok {
			t.Errorf("no message for %v", kind)
			continue
		}
		if other, ok := seen[msg]; ok {
			t.Errorf("%v and %v share message %q", kind, other, msg)
		}
		seen[msg] = kind

		wrapped := stdaddr.Error{Err: kind, Description: "detail"}
		if got := addrErrorMessage(wrapped); got != msg {
			t.Errorf("%v: got %q, want %q", kind, got, msg)
		}
	}

	if got := addrErrorMessage(errors.New("other")); got != "Invalid address format" {
		t.Errorf("unknown error: got %q", got)
	}
}

// TestValidateCache ensures validateaddress results are cached per network.
func TestValidateCache(t *testing.T) {
	t.Parallel()

	s := &Server{
		cfg:           Config{ChainParams: defaultChainParams},
		validateCache: newValidateCache(2),
	}
	addrs := []string{
		"EgVXgiiRUUoG8hoVtx3G5guAVqVb5zFPJi",
		"MAMYWDWqd46sYwL7h9ExCpzaPba53HhMh8",
		"rbgl1s40xs29twsu",
	}
	for _, addr := range addrs {
		cmd := &types.ValidateAddressCmd{Address: addr}
		if _, err := handleValidateAddress(context.Background(), s, cmd); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := s.validateCache.len(); got != 2 {
		t.Fatalf("unexpected cache size %d", got)
	}
	if _, ok := s.validateCache.get(defaultChainParams.Name, addrs[0]); ok {
		t.Fatalf("least recently used result was not evicted")
	}
	cached, ok := s.validateCache.get(defaultChainParams.Name, addrs[2])
	if !ok || !cached.IsValid {
		t.Fatalf("unexpected cached result %+v (found %v)", cached, ok)
	}
	if _, ok := s.validateCache.get("mainnet", addrs[2]); ok {
		t.Fatalf("result cached across networks")
	}

	// A disabled cache never holds results.
	var disabled *validateCache
	disabled.put("regtest", addrs[0], cached)
	if _, ok := disabled.get("regtest", addrs[0]); ok || disabled.len() != 0 {
		t.Fatalf("disabled cache holds results")
	}
}

// TestValidateAddressOverLong ensures strings longer than any valid address
// are reported as malformed without being cached.
func TestValidateAddressOverLong(t *testing.T) {
	t.Parallel()

	s := &Server{
		cfg:           Config{ChainParams: defaultChainParams},
		validateCache: newValidateCache(10),
	}
	addr := strings.Repeat("2", 1<<20)
	cmd := &types.ValidateAddressCmd{Address: addr}
	result, err := handleValidateAddress(context.Background(), s, cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := types.ValidateAddressResult{Error: "Invalid address format"}
	if !reflect.DeepEqual(result, want) {
		t.Fatalf("unexpected result -- got %s, want %s", spew.Sdump(result),
			spew.Sdump(want))
	}
	if got := s.validateCache.len(); got != 0 {
		t.Fatalf("over-long address cached (%d entries)", got)
	}

	if got := logAddr(addr); len(got) != stdaddr.MaxAddressLen+3 {
		t.Fatalf("log form of address is %d bytes", len(got))
	}
	const valid = "rbgl1qtmp74ayg7p24uslctssvjm06q5phz4yrlr4q2x"
	if got := logAddr(valid); got != valid {
		t.Fatalf("log form of %q altered to %q", valid, got)
	}
}
