// Copyright (c) 2020-2025 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
	"unicode"

	"github.com/decred/dcrd/crypto/rand"
	"github.com/decred/dcrd/dcrutil/v4"
	flags "github.com/jessevdk/go-flags"
	"golang.org/x/net/idna"
)

// End of ASN.1 time.
var endOfTime = time.Date(2049, 12, 31, 23, 59, 59, 0, time.UTC)

var bgladdrdHomeDir = dcrutil.AppDataDir("bgladdrd", false)

type config struct {
	CA    string   `short:"C" description:"sign generated certificate using CA cert (requires -K)"`
	CAKey string   `short:"K" description:"key of CA certificate"`
	Hosts []string `short:"H" description:"hostname or IP certificate is valid for; may be specified multiple times"`
	Local bool     `short:"L" description:"append localhost, 127.0.0.1, and ::1 to hosts if not already specified"`
	Signs bool     `short:"S" description:"allow certificate to sign leaf certificates"`
	Org   string   `short:"o" description:"organization"`
	Curve string   `short:"a" description:"key curve (one of: P-256, P-384, P-521)"`
	Years int      `short:"y" description:"years certificate is valid for"`
	Force bool     `short:"f" description:"overwrite existing certs/keys"`
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

// curveByName returns the elliptic curve for a NIST curve name.
func curveByName(name string) (elliptic.Curve, error) {
	switch name {
	case "P-256":
		return elliptic.P256(), nil
	case "P-384":
		return elliptic.P384(), nil
	case "P-521":
		return elliptic.P521(), nil
	}
	return nil, fmt.Errorf("unknown curve %q", name)
}

// withLocalHosts appends the loopback names to hosts when missing.
func withLocalHosts(hosts []string) []string {
	seen := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		seen[h] = true
	}
	for _, h := range []string{"localhost", "127.0.0.1", "::1"} {
		if !seen[h] {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func isASCII(s string) bool {
	for _, c := range s {
		if c > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// toASCII converts internationalized host names to their punycode form.
func toASCII(host string) (string, error) {
	if isASCII(host) {
		return host, nil
	}
	return idna.ToASCII(host)
}

// newTemplate returns a certificate template valid for the passed hosts until
// validUntil, clamped to the end of ASN.1 time.
func newTemplate(hosts []string, org string, validUntil time.Time) (*x509.Certificate, error) {
	now := time.Now()
	if validUntil.After(endOfTime) {
		validUntil = endOfTime
	}
	if validUntil.Before(now) {
		return nil, fmt.Errorf("valid until date %v already elapsed", validUntil)
	}

	cn := org
	if len(hosts) > 0 {
		cn = hosts[0]
	}
	cn, err := toASCII(cn)
	if err != nil {
		return nil, err
	}

	var dnsNames []string
	var ips []net.IP
	for _, h := range hosts {
		h, err := toASCII(h)
		if err != nil {
			return nil, err
		}
		if ip := net.ParseIP(h); ip != nil {
			ips = append(ips, ip)
			continue
		}
		dnsNames = append(dnsNames, h)
	}

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	return &x509.Certificate{
		SerialNumber: rand.BigInt(serialNumberLimit),
		Subject: pkix.Name{
			CommonName:   cn,
			Organization: []string{org},
		},
		NotBefore:             now.Add(-time.Hour * 24),
		NotAfter:              validUntil,
		DNSNames:              dnsNames,
		IPAddresses:           ips,
		BasicConstraintsValid: true,
	}, nil
}

// issueCert signs template with signer under parent and returns the PEM
// encoded certificate.  A nil parent creates a self-signed authority.
func issueCert(template, parent *x509.Certificate, pub, signer any) ([]byte, error) {
	if parent == nil {
		parent = template
		template.IsCA = true
	} else if parent.KeyUsage&x509.KeyUsageCertSign == 0 {
		return nil, errors.New("parent certificate cannot sign other " +
			"certificates")
	}

	der, err := x509.CreateCertificate(rand.Reader(), template, parent, pub,
		signer)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), nil
}

// marshalPrivateKey returns the PEM encoded PKCS #8 form of key.
func marshalPrivateKey(key any) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// loadAuthority reads a CA certificate and its private key.
func loadAuthority(certFile, keyFile string) (*x509.Certificate, any, error) {
	pair, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, nil, err
	}
	ca, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return nil, nil, err
	}
	return ca, pair.PrivateKey, nil
}

func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// writePair writes the certificate and key files, refusing to replace
// existing files unless force is set.
func writePair(certFile, keyFile string, certPEM, keyPEM []byte, force bool) error {
	if !force && fileExists(certFile) {
		return fmt.Errorf("certificate file %q already exists", certFile)
	}
	if !force && fileExists(keyFile) {
		return fmt.Errorf("key file %q already exists", keyFile)
	}
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		return fmt.Errorf("cannot write cert: %w", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		os.Remove(certFile)
		return fmt.Errorf("cannot write key: %w", err)
	}
	return nil
}

// generate creates a new key on curve along with a certificate for it that
// is either self-signed or issued by ca.
func generate(cfg *config, curve elliptic.Curve, ca *x509.Certificate, caKey any) (certPEM, keyPEM []byte, err error) {
	key, err := ecdsa.GenerateKey(curve, rand.Reader())
	if err != nil {
		return nil, nil, fmt.Errorf("generate random EC key: %w", err)
	}
	keyPEM, err = marshalPrivateKey(key)
	if err != nil {
		return nil, nil, err
	}

	validUntil := time.Now().AddDate(cfg.Years, 0, 0)
	if ca != nil && validUntil.After(ca.NotAfter) {
		validUntil = ca.NotAfter
	}
	template, err := newTemplate(cfg.Hosts, cfg.Org, validUntil)
	if err != nil {
		return nil, nil, err
	}
	template.KeyUsage = x509.KeyUsageDigitalSignature
	if cfg.Signs {
		template.KeyUsage |= x509.KeyUsageCertSign
		template.IsCA = true
	}

	signer := any(key)
	if ca != nil {
		signer = caKey
	}
	certPEM, err = issueCert(template, ca, key.Public(), signer)
	if err != nil {
		return nil, nil, err
	}
	return certPEM, keyPEM, nil
}

func main() {
	cfg := config{
		Curve: "P-521",
		Years: 10,
		Org:   "bgladdrd",
	}
	parser := flags.NewParser(&cfg, flags.Default)
	parser.Usage = "[OPTIONS] [cert key]"
	args, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Default to the pair the daemon loads.
	var certFile, keyFile string
	switch len(args) {
	case 0:
		certFile = filepath.Join(bgladdrdHomeDir, "rpc.cert")
		keyFile = filepath.Join(bgladdrdHomeDir, "rpc.key")
		if err := os.MkdirAll(bgladdrdHomeDir, 0700); err != nil {
			fatalf("%v\n", err)
		}
	case 2:
		certFile, keyFile = args[0], args[1]
	default:
		parser.WriteHelp(os.Stderr)
		os.Exit(2)
	}

	curve, err := curveByName(cfg.Curve)
	if err != nil {
		fatalf("%v\n", err)
	}
	if cfg.CA == "" != (cfg.CAKey == "") {
		fatalf("-C and -K must be used together\n")
	}
	if cfg.Local {
		cfg.Hosts = withLocalHosts(cfg.Hosts)
	}

	var ca *x509.Certificate
	var caKey any
	if cfg.CA != "" {
		ca, caKey, err = loadAuthority(cfg.CA, cfg.CAKey)
		if err != nil {
			fatalf("open CA keypair: %v\n", err)
		}
	}

	certPEM, keyPEM, err := generate(&cfg, curve, ca, caKey)
	if err != nil {
		fatalf("%v\n", err)
	}
	if err := writePair(certFile, keyFile, certPEM, keyPEM, cfg.Force); err != nil {
		fatalf("%v\n", err)
	}
}
