// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/elliptic"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/bitgesell/bgladdr/chaincfg"
	"github.com/bitgesell/bgladdr/internal/version"
	"github.com/bitgesell/bgladdr/sampleconfig"
	"github.com/decred/dcrd/crypto/rand"
	"github.com/decred/dcrd/dcrutil/v4"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename       = "bgladdrd.conf"
	defaultLogLevel             = "info"
	defaultLogDirname           = "logs"
	defaultLogFilename          = "bgladdrd.log"
	defaultRPCCertFilename      = "rpc.cert"
	defaultRPCKeyFilename       = "rpc.key"
	defaultMaxRPCClients        = 10
	defaultMaxRPCWebsockets     = 25
	defaultMaxRPCConcurrentReqs = 20
	defaultAddrCacheSize        = 10000
	defaultTLSCurve             = "P-521"
)

var (
	defaultHomeDir    = dcrutil.AppDataDir("bgladdrd", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
	defaultRPCKeyFile = filepath.Join(defaultHomeDir, defaultRPCKeyFilename)
	defaultRPCCert    = filepath.Join(defaultHomeDir, defaultRPCCertFilename)
)

// config defines the configuration options for bgladdrd.
//
// See loadConfig for details on the configuration load process.
type config struct {
	// General application behavior.
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	HomeDir     string `short:"A" long:"appdata" description:"Path to application home directory"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`

	// Network selection.
	TestNet bool `long:"testnet" description:"Validate addresses for the test network"`
	RegNet  bool `long:"regtest" description:"Validate addresses for the regression test network"`

	// Logging and debug options.
	LogDir        string `long:"logdir" description:"Directory to log output"`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	Profile       string `long:"profile" description:"Enable HTTP profiling on given [addr:]port -- NOTE port must be between 1024 and 65535"`

	// RPC server options.
	RPCUser              string   `short:"u" long:"rpcuser" description:"Username for RPC connections"`
	RPCPass              string   `short:"P" long:"rpcpass" default-mask:"-" description:"Password for RPC connections"`
	RPCLimitUser         string   `long:"rpclimituser" description:"Username for limited RPC connections"`
	RPCLimitPass         string   `long:"rpclimitpass" default-mask:"-" description:"Password for limited RPC connections"`
	RPCListeners         []string `long:"rpclisten" description:"Add an interface/port to listen for RPC connections (default port: 8460, testnet: 18460, regtest: 18560)"`
	RPCCert              string   `long:"rpccert" description:"File containing the certificate file"`
	RPCKey               string   `long:"rpckey" description:"File containing the certificate key"`
	TLSCurve             string   `long:"tlscurve" description:"Curve to use when generating the TLS keypair {P-256, P-521}"`
	AltDNSNames          []string `long:"altdnsnames" env:"BGLADDRD_ALT_DNSNAMES" env-delim:"," description:"Specify additional DNS names to use when generating the RPC server certificate"`
	DisableTLS           bool     `long:"notls" description:"Disable TLS for the RPC server -- NOTE: This is only allowed if the RPC server is bound to localhost"`
	RPCMaxClients        int      `long:"rpcmaxclients" description:"Max number of RPC clients for standard connections"`
	RPCMaxWebsockets     int      `long:"rpcmaxwebsockets" description:"Max number of RPC websocket connections"`
	RPCMaxConcurrentReqs int      `long:"rpcmaxconcurrentreqs" description:"Max number of concurrent RPC requests that may be processed concurrently per websocket client"`
	AddrCacheSize        uint32   `long:"addrcachesize" description:"Number of validateaddress results to cache -- 0 disables the cache"`

	// params is the network parameters selected by the network flags.
	params *chaincfg.Params
}

// errSuppressUsage signifies that an error that happened during the initial
// configuration phase should suppress the usage output since it was not caused
// by the user.
type errSuppressUsage string

// Error implements the error interface.
func (e errSuppressUsage) Error() string {
	return string(e)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Nothing to do when no path is given.
	if path == "" {
		return path
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows cmd.exe-style
	// %VARIABLE%, but the variables can still be expanded via POSIX-style
	// $VARIABLE.
	path = os.ExpandEnv(path)

	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	// Expand initial ~ to the current user's home directory, or ~otheruser to
	// otheruser's home directory.  On Windows, both forward and backward
	// slashes can be used.
	path = path[1:]

	var pathSeparators string
	if runtime.GOOS == "windows" {
		pathSeparators = string(os.PathSeparator) + "/"
	} else {
		pathSeparators = string(os.PathSeparator)
	}

	userName := ""
	if i := strings.IndexAny(path, pathSeparators); i != -1 {
		userName = path[:i]
		path = path[i:]
	}

	homeDir := ""
	var u *user.User
	var err error
	if userName == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(userName)
	}
	if err == nil {
		homeDir = u.HomeDir
	}
	// Fallback to CWD if user lookup fails or user has no home directory.
	if homeDir == "" {
		homeDir = "."
	}

	return filepath.Join(homeDir, path)
}

// normalizeAddress returns addr with the passed default port appended if
// there is not already a port specified.
func normalizeAddress(addr, defaultPort string) string {
	_, _, err := net.SplitHostPort(addr)
	if err != nil {
		return net.JoinHostPort(addr, defaultPort)
	}
	return addr
}

// normalizeAddresses returns a new slice with all the passed listen addresses
// normalized with the given default port, and all duplicates removed.
func normalizeAddresses(addrs []string, defaultPort string) []string {
	result := make([]string, 0, len(addrs))
	seen := map[string]struct{}{}
	for _, addr := range addrs {
		addr = normalizeAddress(addr, defaultPort)
		if _, ok := seen[addr]; !ok {
			result = append(result, addr)
			seen[addr] = struct{}{}
		}
	}
	return result
}

// isLoopbackListener returns whether the passed normalized listen address only
// binds to the local machine.
func isLoopbackListener(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	if zoneIndex := strings.LastIndex(host, "%"); zoneIndex > 0 {
		host = host[:zoneIndex]
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// tlsCurve returns the elliptic curve named by the passed string.
func tlsCurve(name string) (elliptic.Curve, error) {
	switch name {
	case "P-256":
		return elliptic.P256(), nil
	case "P-521":
		return elliptic.P521(), nil
	}
	return nil, fmt.Errorf("unsupported TLS curve %q -- supported curves "+
		"are P-256 and P-521", name)
}

// splitAltDNSNames flattens comma separated and quoted alternate DNS names
// into a clean list.
func splitAltDNSNames(names []string) []string {
	var result []string
	for _, entry := range names {
		entry = strings.Trim(entry, "\"'")
		for _, name := range strings.Split(entry, ",") {
			name = strings.TrimSpace(strings.Trim(name, "\"'"))
			if name != "" {
				result = append(result, name)
			}
		}
	}
	return result
}

// newConfigParser returns a new command line flags parser.
func newConfigParser(cfg *config, options flags.Options) *flags.Parser {
	return flags.NewParser(cfg, options)
}

// generateRPCSecret returns a random base64 string suitable for use as an
// RPC username or password.
func generateRPCSecret(numBytes int) string {
	b := make([]byte, numBytes)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

var (
	rpcUserLineRE = regexp.MustCompile(`(?m)^;\s*rpcuser=[^\s]*$`)
	rpcPassLineRE = regexp.MustCompile(`(?m)^;\s*rpcpass=[^\s]*$`)
)

// createDefaultConfigFile writes the sample config to destPath with freshly
// generated RPC credentials so a new install is reachable by bgladdrctl out
// of the box.
func createDefaultConfigFile(destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0700); err != nil {
		return err
	}

	rpcUser := generateRPCSecret(18)
	rpcPass := generateRPCSecret(32)
	contents := sampleconfig.Bgladdrd()
	contents = rpcUserLineRE.ReplaceAllLiteralString(contents,
		"rpcuser="+rpcUser)
	contents = rpcPassLineRE.ReplaceAllLiteralString(contents,
		"rpcpass="+rpcPass)
	return os.WriteFile(destPath, []byte(contents), 0600)
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in bgladdrd functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig(appName string) (*config, []string, error) {
	// Default config.
	cfg := config{
		HomeDir:              defaultHomeDir,
		ConfigFile:           defaultConfigFile,
		LogDir:               defaultLogDir,
		DebugLevel:           defaultLogLevel,
		RPCCert:              defaultRPCCert,
		RPCKey:               defaultRPCKeyFile,
		TLSCurve:             defaultTLSCurve,
		RPCMaxClients:        defaultMaxRPCClients,
		RPCMaxWebsockets:     defaultMaxRPCWebsockets,
		RPCMaxConcurrentReqs: defaultMaxRPCConcurrentReqs,
		AddrCacheSize:        defaultAddrCacheSize,
	}

	// Pre-parse the command line options to see if an alternative config
	// file, home directory, or the version flag was specified.  Any errors
	// aside from the help message error can be ignored here since they will
	// be caught by the final parse below.
	preCfg := cfg
	preParser := newConfigParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
	}

	// Show the version and exit if the version flag was specified.
	if preCfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version.String(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	// Update the home directory if specified.  Since the home directory is
	// updated, other variables need to be updated to reflect the new
	// changes.
	if preCfg.HomeDir != "" {
		cfg.HomeDir = cleanAndExpandPath(preCfg.HomeDir)
		if preCfg.ConfigFile == defaultConfigFile {
			cfg.ConfigFile = filepath.Join(cfg.HomeDir, defaultConfigFilename)
		} else {
			cfg.ConfigFile = cleanAndExpandPath(preCfg.ConfigFile)
		}
		if preCfg.LogDir == defaultLogDir {
			cfg.LogDir = filepath.Join(cfg.HomeDir, defaultLogDirname)
		}
		if preCfg.RPCCert == defaultRPCCert {
			cfg.RPCCert = filepath.Join(cfg.HomeDir, defaultRPCCertFilename)
		}
		if preCfg.RPCKey == defaultRPCKeyFile {
			cfg.RPCKey = filepath.Join(cfg.HomeDir, defaultRPCKeyFilename)
		}
	} else if preCfg.ConfigFile != defaultConfigFile {
		cfg.ConfigFile = cleanAndExpandPath(preCfg.ConfigFile)
	}

	// Create a default config file when one does not exist and the user did
	// not specify an override.
	defaultCfgPath := filepath.Join(cfg.HomeDir, defaultConfigFilename)
	if cfg.ConfigFile == defaultCfgPath && !fileExists(cfg.ConfigFile) {
		if err := createDefaultConfigFile(cfg.ConfigFile); err != nil {
			str := fmt.Sprintf("failed to create default config file: %v",
				err)
			return nil, nil, errSuppressUsage(str)
		}
	}

	// Load additional config from file.
	var configFileError error
	parser := newConfigParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(cfg.ConfigFile)
	if err != nil {
		var e *os.PathError
		if !errors.As(err, &e) {
			err = fmt.Errorf("error parsing config file: %w", err)
			return nil, nil, err
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}
	if len(remainingArgs) > 0 {
		str := "%s: the command line does not accept non-flag arguments: %v"
		return nil, nil, fmt.Errorf(str, appName, remainingArgs)
	}

	// Create the home directory if it doesn't already exist.
	funcName := "loadConfig"
	err = os.MkdirAll(cfg.HomeDir, 0700)
	if err != nil {
		// Show a nicer error message if it's because a symlink is linked to
		// a directory that does not exist (probably because it's not
		// mounted).
		var e *os.PathError
		if errors.As(err, &e) && os.IsExist(err) {
			if link, lerr := os.Readlink(e.Path); lerr == nil {
				str := "is symlink %s -> %s mounted?"
				err = fmt.Errorf(str, e.Path, link)
			}
		}

		str := "%s: failed to create home directory: %v"
		err := fmt.Errorf(str, funcName, err)
		return nil, nil, errSuppressUsage(err.Error())
	}

	// Select the network.  Multiple networks can't be selected
	// simultaneously.
	cfg.params = chaincfg.MainNetParams()
	numNets := 0
	if cfg.TestNet {
		numNets++
		cfg.params = chaincfg.TestNetParams()
	}
	if cfg.RegNet {
		numNets++
		cfg.params = chaincfg.RegNetParams()
	}
	if numNets > 1 {
		str := "%s: the testnet and regtest params can't be used together " +
			"-- choose one of the two"
		return nil, nil, fmt.Errorf(str, funcName)
	}

	// Initialize log rotation.  After log rotation has been initialized, the
	// logger variables may be used.
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, cfg.params.Name)
	if !cfg.NoFileLogging {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return nil, nil, errSuppressUsage(err.Error())
		}
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", funcName, err)
	}

	// At least one set of credentials is required since the RPC server is
	// the only surface of the daemon.
	if cfg.RPCUser == "" && cfg.RPCLimitUser == "" {
		str := "%s: at least one of --rpcuser or --rpclimituser must be " +
			"specified"
		return nil, nil, fmt.Errorf(str, funcName)
	}
	if cfg.RPCUser != "" && cfg.RPCUser == cfg.RPCLimitUser {
		str := "%s: --rpcuser and --rpclimituser must not specify the same " +
			"username"
		return nil, nil, fmt.Errorf(str, funcName)
	}
	if cfg.RPCPass != "" && cfg.RPCPass == cfg.RPCLimitPass {
		str := "%s: --rpcpass and --rpclimitpass must not specify the same " +
			"password"
		return nil, nil, fmt.Errorf(str, funcName)
	}

	// Default RPC to listen on localhost only.
	if len(cfg.RPCListeners) == 0 {
		cfg.RPCListeners = []string{"127.0.0.1", "::1"}
	}
	cfg.RPCListeners = normalizeAddresses(cfg.RPCListeners,
		cfg.params.DefaultRPCPort)

	// Only allow TLS to be disabled if the RPC is bound to localhost
	// addresses.
	if cfg.DisableTLS {
		for _, addr := range cfg.RPCListeners {
			if !isLoopbackListener(addr) {
				str := "%s: the --notls option may not be used when binding " +
					"RPC to non localhost addresses: %s"
				return nil, nil, fmt.Errorf(str, funcName, addr)
			}
		}
	}

	if _, err := tlsCurve(cfg.TLSCurve); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", funcName, err)
	}

	if cfg.RPCMaxClients < 0 {
		str := "%s: the rpcmaxclients option may not be less than 0 -- " +
			"parsed [%d]"
		return nil, nil, fmt.Errorf(str, funcName, cfg.RPCMaxClients)
	}
	if cfg.RPCMaxWebsockets < 0 {
		str := "%s: the rpcmaxwebsockets option may not be less than 0 -- " +
			"parsed [%d]"
		return nil, nil, fmt.Errorf(str, funcName, cfg.RPCMaxWebsockets)
	}
	if cfg.RPCMaxConcurrentReqs < 1 {
		str := "%s: the rpcmaxconcurrentreqs option may not be less than " +
			"1 -- parsed [%d]"
		return nil, nil, fmt.Errorf(str, funcName, cfg.RPCMaxConcurrentReqs)
	}

	cfg.RPCCert = cleanAndExpandPath(cfg.RPCCert)
	cfg.RPCKey = cleanAndExpandPath(cfg.RPCKey)
	cfg.AltDNSNames = splitAltDNSNames(cfg.AltDNSNames)

	// Warn about missing config file only after all other configuration is
	// done.  This prevents the warning on help messages and invalid options.
	// Note this should go directly before the return.
	if configFileError != nil {
		bgldLog.Warnf("%v", configFileError)
	}

	return &cfg, remainingArgs, nil
}
