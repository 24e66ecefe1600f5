// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package rpcserver implements the JSON-RPC server that exposes address
validation.

Overview

The server accepts JSON-RPC 1.0 and 2.0 requests, including batches, over
HTTP POST at the root path and over a websocket at /ws.  Clients authenticate
with HTTP basic access authentication, or for websockets, optionally with the
authenticate command as the first message.  Credentials configured as the
limited user may call every command except stop.

Commands

	validateaddress  reports whether an address is valid and why not
	getaddressinfo   decodes an address or fails with code -5
	getaddressparams reports the active network prefixes
	help             returns usage for one or all commands
	version          returns the server and API versions
	stop             requests the process to shut down
	authenticate     authenticates a websocket client

A failed address decode is reported to clients with a fixed message per error
kind, for example "Invalid prefix for Bech32 address".
*/
package rpcserver
