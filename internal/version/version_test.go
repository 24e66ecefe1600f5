// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package version

import (
	"reflect"
	"testing"
)

// TestParseSemVer ensures parsing semantic version strings works as expected.
func TestParseSemVer(t *testing.T) {
	tests := []struct {
		ver     string
		want    *semVer
		invalid bool
	}{{
		ver:  "0.1.0",
		want: &semVer{minor: 1},
	}, {
		ver:  "10.20.30",
		want: &semVer{major: 10, minor: 20, patch: 30},
	}, {
		ver:  "1.1.2-prerelease+meta",
		want: &semVer{1, 1, 2, "prerelease", "meta"},
	}, {
		ver:  "1.0.0-alpha.beta.1",
		want: &semVer{1, 0, 0, "alpha.beta.1", ""},
	}, {
		ver:  "1.0.0+0.build.1-rc.10000aaa-kk-0.1",
		want: &semVer{1, 0, 0, "", "0.build.1-rc.10000aaa-kk-0.1"},
	}, {
		ver:  "2.0.0-rc.1+build.123",
		want: &semVer{2, 0, 0, "rc.1", "build.123"},
	}, {
		ver:     "1",
		invalid: true,
	}, {
		ver:     "1.2",
		invalid: true,
	}, {
		ver:     "01.1.1",
		invalid: true,
	}, {
		ver:     "1.2.3-0123",
		invalid: true,
	}, {
		ver:     "1.2.3+meta+meta",
		invalid: true,
	}, {
		ver:     "4294967296.0.0",
		invalid: true,
	}, {
		ver:     "",
		invalid: true,
	}}

	for _, test := range tests {
		got, err := parseSemVer(test.ver)
		if test.invalid {
			if err == nil {
				t.Errorf("%q: did not receive expected error", test.ver)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.ver, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%q: mismatched result -- got %+v, want %+v", test.ver,
				got, test.want)
		}
	}
}

// TestNormalizeString ensures characters outside the semantic alphabet are
// stripped.
func TestNormalizeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"go1-22-1", "go1-22-1"},
		{"go1.22.1", "go1.22.1"},
		{"a+b c_d!", "abcd"},
		{"", ""},
	}

	for _, test := range tests {
		if got := NormalizeString(test.in); got != test.want {
			t.Errorf("NormalizeString(%q): got %q, want %q", test.in, got,
				test.want)
		}
	}
}

// TestPackageVersion ensures the package level version parses.
func TestPackageVersion(t *testing.T) {
	v, err := parseSemVer(String())
	if err != nil {
		t.Fatalf("package version %q does not parse: %v", String(), err)
	}
	if v.major != Major || v.minor != Minor || v.patch != Patch {
		t.Fatalf("mismatched components: %+v vs %d.%d.%d", v, Major, Minor,
			Patch)
	}
}
