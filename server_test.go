// Copyright (c) 2018 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"crypto/elliptic"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/bitgesell/bgladdr/chaincfg"
)

// TestParseListeners ensures listen addresses are expanded into the expected
// TCP networks.
func TestParseListeners(t *testing.T) {
	tests := []struct {
		name    string
		addrs   []string
		want    []net.Addr
		wantErr bool
	}{{
		name:  "all interfaces",
		addrs: []string{":8460"},
		want: []net.Addr{
			simpleAddr{net: "tcp4", addr: ":8460"},
			simpleAddr{net: "tcp6", addr: ":8460"},
		},
	}, {
		name:  "ipv4 and ipv6 loopback",
		addrs: []string{"127.0.0.1:8460", "[::1]:8460"},
		want: []net.Addr{
			simpleAddr{net: "tcp4", addr: "127.0.0.1:8460"},
			simpleAddr{net: "tcp6", addr: "[::1]:8460"},
		},
	}, {
		name:  "ipv6 zone",
		addrs: []string{"[fe80::1%eth0]:8460"},
		want: []net.Addr{
			simpleAddr{net: "tcp6", addr: "[fe80::1%eth0]:8460"},
		},
	}, {
		name:  "localhost",
		addrs: []string{"localhost:8460"},
		want: []net.Addr{
			simpleAddr{net: "tcp", addr: "localhost:8460"},
		},
	}, {
		name:    "hostname",
		addrs:   []string{"example.com:8460"},
		wantErr: true,
	}, {
		name:    "missing port",
		addrs:   []string{"127.0.0.1"},
		wantErr: true,
	}}

	for _, test := range tests {
		got, err := parseListeners(test.addrs)
		if (err != nil) != test.wantErr {
			t.Errorf("%s: unexpected error state: %v", test.name, err)
			continue
		}
		if test.wantErr {
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}
}

// TestCertCreation creates certificate pairs with and without extra hosts
// on each supported curve and ensures the extra hosts are present in the
// generated files.
func TestCertCreation(t *testing.T) {
	tests := []struct {
		name      string
		curve     elliptic.Curve
		hostnames []string
	}{{
		name:      "P-521 with hosts",
		curve:     elliptic.P521(),
		hostnames: []string{"hostname1", "hostname2"},
	}, {
		name:  "P-256 without hosts",
		curve: elliptic.P256(),
	}}

	for _, test := range tests {
		dir := t.TempDir()
		certFile := filepath.Join(dir, "rpc.cert")
		keyFile := filepath.Join(dir, "rpc.key")
		err := genCertPair(certFile, keyFile, test.hostnames, test.curve)
		if err != nil {
			t.Fatalf("%s: certificate was not created correctly: %v",
				test.name, err)
		}

		certBytes, err := os.ReadFile(certFile)
		if err != nil {
			t.Fatalf("%s: unable to read the certfile: %v", test.name, err)
		}
		pemCert, _ := pem.Decode(certBytes)
		if pemCert == nil {
			t.Fatalf("%s: cert file is not PEM encoded", test.name)
		}
		x509Cert, err := x509.ParseCertificate(pemCert.Bytes)
		if err != nil {
			t.Fatalf("%s: unable to parse the certificate: %v", test.name,
				err)
		}
		for _, host := range test.hostnames {
			if err := x509Cert.VerifyHostname(host); err != nil {
				t.Fatalf("%s: failed to verify extra host %q", test.name,
					host)
			}
		}

		if _, err := tls.LoadX509KeyPair(certFile, keyFile); err != nil {
			t.Fatalf("%s: generated pair does not load: %v", test.name, err)
		}
		info, err := os.Stat(keyFile)
		if err != nil {
			t.Fatalf("%s: unable to stat key file: %v", test.name, err)
		}
		if perm := info.Mode().Perm(); perm&0077 != 0 {
			t.Fatalf("%s: key file is accessible by others: %v", test.name,
				perm)
		}
	}
}

// testDaemonConfig returns a daemon config listening on an ephemeral loopback
// port.
func testDaemonConfig(t *testing.T, disableTLS bool) *config {
	dir := t.TempDir()
	return &config{
		RPCUser:              "user",
		RPCPass:              "pass",
		RPCListeners:         []string{"127.0.0.1:0"},
		RPCCert:              filepath.Join(dir, defaultRPCCertFilename),
		RPCKey:               filepath.Join(dir, defaultRPCKeyFilename),
		TLSCurve:             "P-256",
		DisableTLS:           disableTLS,
		RPCMaxClients:        defaultMaxRPCClients,
		RPCMaxWebsockets:     defaultMaxRPCWebsockets,
		RPCMaxConcurrentReqs: defaultMaxRPCConcurrentReqs,
		AddrCacheSize:        defaultAddrCacheSize,
		params:               chaincfg.RegNetParams(),
	}
}

// TestSetupRPCListeners ensures listeners are created with and without TLS and
// that a missing certificate pair is generated.
func TestSetupRPCListeners(t *testing.T) {
	for _, disableTLS := range []bool{true, false} {
		cfg := testDaemonConfig(t, disableTLS)
		listeners, err := setupRPCListeners(cfg)
		if err != nil {
			t.Fatalf("notls=%v: unexpected error: %v", disableTLS, err)
		}
		if len(listeners) != 1 {
			t.Fatalf("notls=%v: got %d listeners, want 1", disableTLS,
				len(listeners))
		}
		listeners[0].Close()

		certExists := fileExists(cfg.RPCCert) && fileExists(cfg.RPCKey)
		if certExists == disableTLS {
			t.Fatalf("notls=%v: unexpected certificate presence %v",
				disableTLS, certExists)
		}
	}
}

// TestRPCServerRun ensures a server created from the daemon config runs until
// its context is canceled without requesting a process shutdown.
func TestRPCServerRun(t *testing.T) {
	cfg := testDaemonConfig(t, true)
	server, err := newRPCServer(cfg)
	if err != nil {
		t.Fatalf("unable to create rpc server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		server.Run(ctx)
		close(done)
	}()

	select {
	case <-server.RequestedProcessShutdown():
		t.Fatal("shutdown requested before stop")
	default:
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rpc server did not shut down after context cancel")
	}
}

// TestShutdownListener ensures a shutdown request cancels the context returned
// by listenForShutdown and repeated requests do not block.  Each run uses its
// own request channel.
func TestShutdownListener(t *testing.T) {
	for run := 0; run < 3; run++ {
		testShutdownListener(t, make(chan struct{}))
	}
}

func testShutdownListener(t *testing.T, requests chan struct{}) {
	t.Helper()

	ctx := listenForShutdown(requests)
	if shutdownRequested(ctx) {
		t.Fatal("shutdown requested before any signal")
	}

	for i := 0; i < 2; i++ {
		select {
		case requests <- struct{}{}:
		case <-time.After(5 * time.Second):
			t.Fatalf("shutdown request %d blocked", i)
		}
	}

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not canceled by shutdown request")
	}
	if !shutdownRequested(ctx) {
		t.Fatal("shutdownRequested did not report cancellation")
	}
}

// TestProfileAddr ensures profile addresses are normalized and their ports
// range checked.
func TestProfileAddr(t *testing.T) {
	tests := []struct {
		addr    string
		want    string
		wantErr bool
	}{
		{addr: "6060", want: "127.0.0.1:6060"},
		{addr: "[::1]:6060", want: "[::1]:6060"},
		{addr: "0.0.0.0:6060", want: "0.0.0.0:6060"},
		{addr: "80", wantErr: true},
		{addr: "127.0.0.1:70000", wantErr: true},
		{addr: "127.0.0.1", wantErr: true},
	}

	for _, test := range tests {
		got, err := profileAddr(test.addr)
		if (err != nil) != test.wantErr {
			t.Errorf("profileAddr(%q): unexpected error state: %v",
				test.addr, err)
			continue
		}
		if got != test.want {
			t.Errorf("profileAddr(%q): got %q, want %q", test.addr, got,
				test.want)
		}
	}
}
