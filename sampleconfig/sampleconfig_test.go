// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sampleconfig

import (
	"strings"
	"testing"
)

// TestSampleConfigs ensures the embedded sample configs are present and only
// contain commented out options.
func TestSampleConfigs(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		options  []string
	}{{
		name:     "bgladdrd",
		contents: Bgladdrd(),
		options:  []string{"rpcuser", "rpcmaxclients", "testnet", "addrcachesize"},
	}, {
		name:     "bgladdrctl",
		contents: Bgladdrctl(),
		options:  []string{"rpcuser", "rpcserver", "rpccert", "proxy"},
	}}

	for _, test := range tests {
		if !strings.HasPrefix(test.contents, "[Application Options]") {
			t.Errorf("%s: missing application options section", test.name)
			continue
		}
		for _, line := range strings.Split(test.contents, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || line == "[Application Options]" {
				continue
			}
			if !strings.HasPrefix(line, ";") {
				t.Errorf("%s: uncommented line %q", test.name, line)
			}
		}
		for _, opt := range test.options {
			if !strings.Contains(test.contents, "; "+opt+"=") {
				t.Errorf("%s: missing option %q", test.name, opt)
			}
		}
	}
}
