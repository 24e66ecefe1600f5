// Copyright (c) 2017-2022 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sampleconfig provides the commented example configuration files
// written by bgladdrd and bgladdrctl when no config file exists yet.
package sampleconfig

import (
	_ "embed"
)

// sampleBgladdrdConf is a string containing the commented example config for
// bgladdrd.
//
//go:embed sample-bgladdrd.conf
var sampleBgladdrdConf string

// sampleBgladdrctlConf is a string containing the commented example config
// for bgladdrctl.
//
//go:embed sample-bgladdrctl.conf
var sampleBgladdrctlConf string

// Bgladdrd returns a string containing the commented example config for
// bgladdrd.
func Bgladdrd() string {
	return sampleBgladdrdConf
}

// Bgladdrctl returns a string containing the commented example config for
// bgladdrctl.
func Bgladdrctl() string {
	return sampleBgladdrctlConf
}
