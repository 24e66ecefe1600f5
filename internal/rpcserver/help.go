// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/decred/dcrd/dcrjson/v4"

	"github.com/bitgesell/bgladdr/rpc/jsonrpc/types"
)

// helpSynopses houses the one paragraph description of every command served.
var helpSynopses = map[types.Method]string{
	"authenticate": "Authenticate the websocket with the RPC server.  This is " +
		"only required if the credentials were not already supplied via " +
		"HTTP auth headers.  It must be the first command sent or the " +
		"connection is closed.",
	"getaddressinfo": "Decodes an address and returns its encoding, version, " +
		"payment script and witness program.  An invalid address fails " +
		"with error code -5 and a message describing why.",
	"getaddressparams": "Returns the address prefixes of the network the " +
		"server is configured for.",
	"help": "Returns a list of all commands or help for a specified " +
		"command.",
	"stop":    "Shutdown the server.",
	"version": "Returns the server and JSON-RPC API versions.",
	"validateaddress": "Verifies the given address is valid for the " +
		"network.  An invalid address is reported with isvalid set to " +
		"false along with the reason in the error field.",
}

// helpCacher provides a concurrent safe type that provides help and usage for
// the RPC server commands and caches the results for future calls.
type helpCacher struct {
	sync.Mutex
	usage      string
	wsUsage    string
	methodHelp map[types.Method]string
}

// rpcMethodHelp returns an RPC help string for the provided method.
//
// This function is safe for concurrent access.
func (c *helpCacher) rpcMethodHelp(method types.Method) (string, error) {
	c.Lock()
	defer c.Unlock()

	if help, ok := c.methodHelp[method]; ok {
		return help, nil
	}

	synopsis, ok := helpSynopses[method]
	if !ok {
		return "", errors.New("no help available for method " + string(method))
	}
	usage, err := dcrjson.MethodUsageText(method)
	if err != nil {
		return "", err
	}
	help := usage + "\n\n" + synopsis
	c.methodHelp[method] = help
	return help, nil
}

// rpcUsage returns one-line usage for all supported RPC commands.  The
// websocket only commands are included when includeWebsockets is set.
//
// This function is safe for concurrent access.
func (c *helpCacher) rpcUsage(includeWebsockets bool) (string, error) {
	c.Lock()
	defer c.Unlock()

	if includeWebsockets && c.wsUsage != "" {
		return c.wsUsage, nil
	}
	if !includeWebsockets && c.usage != "" {
		return c.usage, nil
	}

	methods := make([]string, 0, len(rpcHandlers)+len(wsHandlers))
	for method := range rpcHandlers {
		methods = append(methods, string(method))
	}
	if includeWebsockets {
		for method := range wsHandlers {
			if _, ok := rpcHandlers[method]; !ok {
				methods = append(methods, string(method))
			}
		}
		methods = append(methods, "authenticate")
	}
	sort.Strings(methods)

	usageTexts := make([]string, 0, len(methods))
	for _, method := range methods {
		usage, err := dcrjson.MethodUsageText(types.Method(method))
		if err != nil {
			return "", err
		}
		usageTexts = append(usageTexts, usage)
	}

	usage := strings.Join(usageTexts, "\n")
	if includeWebsockets {
		c.wsUsage = usage
	} else {
		c.usage = usage
	}
	return usage, nil
}

// newHelpCacher returns a new instance of a help cacher which provides help
// and usage for the RPC server commands and caches the results for future
// calls.
func newHelpCacher() *helpCacher {
	return &helpCacher{
		methodHelp: make(map[types.Method]string),
	}
}
