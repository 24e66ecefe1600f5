// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package types implements concrete types for marshalling to and from the
bgladdrd JSON-RPC commands and return values.

The commands are registered with dcrjson under the Method type of this
package, so they can be created and parsed with the generic dcrjson functions:

	cmd, err := dcrjson.NewCmd(types.Method("validateaddress"), addr)
	marshalled, err := dcrjson.MarshalCmd("1.0", 1, cmd)

and on the receiving side

	var request dcrjson.Request
	err := json.Unmarshal(marshalled, &request)
	cmd, err := dcrjson.ParseParams(types.Method(request.Method), request.Params)

The preferred way to create a command is one of the New<Foo>Cmd functions,
since they give compile-time checking of the parameters.

Results are plain structs with JSON tags.  Optional fields are pointers or
carry omitempty so they are absent from the wire when unset.
*/
package types
