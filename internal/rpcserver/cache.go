// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"github.com/decred/dcrd/container/lru"

	"github.com/bitgesell/bgladdr/rpc/jsonrpc/types"
	"github.com/bitgesell/bgladdr/stdaddr"
)

// validateCache memoizes validateaddress results.  Decoding is a pure function
// of the address and the network, so entries never go stale and are only
// evicted to respect the size limit.
//
// A nil cache is valid and never holds anything.
type validateCache struct {
	results *lru.Map[string, types.ValidateAddressResult]
}

// newValidateCache returns a cache that holds up to limit results or nil when
// the limit is zero.
func newValidateCache(limit uint32) *validateCache {
	if limit == 0 {
		return nil
	}
	return &validateCache{
		results: lru.NewMap[string, types.ValidateAddressResult](limit),
	}
}

// cacheKey returns the key used for an address on the named network.
func cacheKey(network, addr string) string {
	return network + "|" + addr
}

// get returns the cached result for the address on the named network.
func (c *validateCache) get(network, addr string) (types.ValidateAddressResult, bool) {
	if c == nil {
		return types.ValidateAddressResult{}, false
	}
	return c.results.Get(cacheKey(network, addr))
}

// put adds the result for the address on the named network.  Addresses longer
// than any valid address are not cached.
func (c *validateCache) put(network, addr string, result types.ValidateAddressResult) {
	if c == nil || len(addr) > stdaddr.MaxAddressLen {
		return
	}
	if evicted := c.results.Put(cacheKey(network, addr), result); evicted > 0 {
		log.Tracef("Evicted %d validateaddress results", evicted)
	}
}

// len returns the number of cached results.
func (c *validateCache) len() uint32 {
	if c == nil {
		return 0
	}
	return c.results.Len()
}
