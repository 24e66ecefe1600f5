// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/bitgesell/bgladdr/chaincfg"
	"github.com/bitgesell/bgladdr/internal/version"
	"github.com/bitgesell/bgladdr/rpc/jsonrpc/types"
	"github.com/bitgesell/bgladdr/sampleconfig"
	"github.com/decred/dcrd/dcrjson/v4"
	"github.com/decred/dcrd/dcrutil/v4"
	flags "github.com/jessevdk/go-flags"
)

const (
	// unusableFlags are the command usage flags which this utility are not
	// able to use.  In particular it doesn't support websockets and
	// consequently notifications.
	unusableFlags = dcrjson.UFWebsocketOnly | dcrjson.UFNotification
)

var (
	bgladdrdHomeDir       = dcrutil.AppDataDir("bgladdrd", false)
	bgladdrctlHomeDir     = dcrutil.AppDataDir("bgladdrctl", false)
	defaultConfigFile     = filepath.Join(bgladdrctlHomeDir, "bgladdrctl.conf")
	defaultRPCServer      = "localhost"
	defaultRPCCertFile    = filepath.Join(bgladdrdHomeDir, "rpc.cert")
	bgladdrdConfigFile    = filepath.Join(bgladdrdHomeDir, "bgladdrd.conf")
	credentialLineRegexps = map[string]*regexp.Regexp{
		"rpcuser": regexp.MustCompile(`(?m)^\s*rpcuser=([^\s]+)`),
		"rpcpass": regexp.MustCompile(`(?m)^\s*rpcpass=([^\s]+)`),
	}
)

// listCommands categorizes and lists all of the usable commands along with
// their one-line usage.
func listCommands() {
	methods := dcrjson.RegisteredMethods(types.Method(""))
	fmt.Println("Address Server Commands:")
	for _, method := range methods {
		flags, err := dcrjson.MethodUsageFlags(types.Method(method))
		if err != nil {
			// This should never happen since the method was just returned
			// from the package, but be safe.
			continue
		}

		// Skip the commands that aren't usable from this utility.
		if flags&unusableFlags != 0 {
			continue
		}

		usage, err := dcrjson.MethodUsageText(types.Method(method))
		if err != nil {
			continue
		}
		fmt.Println(usage)
	}
}

// config defines the configuration options for bgladdrctl.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion  bool   `short:"V" long:"version" description:"Display version information and exit"`
	ListCommands bool   `short:"l" long:"listcommands" description:"List all of the supported commands and exit"`
	ConfigFile   string `short:"C" long:"configfile" description:"Path to configuration file"`
	RPCUser      string `short:"u" long:"rpcuser" description:"RPC username"`
	RPCPassword  string `short:"P" long:"rpcpass" default-mask:"-" description:"RPC password"`
	RPCServer    string `short:"s" long:"rpcserver" description:"RPC server to connect to"`
	RPCCert      string `short:"c" long:"rpccert" description:"RPC server certificate chain for validation"`
	NoTLS        bool   `long:"notls" description:"Disable TLS"`
	Proxy        string `long:"proxy" description:"Connect via SOCKS5 proxy (eg. 127.0.0.1:9050)"`
	ProxyUser    string `long:"proxyuser" description:"Username for proxy server"`
	ProxyPass    string `long:"proxypass" default-mask:"-" description:"Password for proxy server"`
	TestNet      bool   `long:"testnet" description:"Connect to testnet"`
	RegNet       bool   `long:"regtest" description:"Connect to regtest"`
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

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(bgladdrctlHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
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

// createDefaultConfigFile creates a bgladdrctl config file at destPath from
// the sample config, copying the RPC credentials from the bgladdrd config
// file at daemonConfigPath when they are present there.
func createDefaultConfigFile(destPath, daemonConfigPath string) error {
	contents := sampleconfig.Bgladdrctl()

	daemonConfig, err := os.ReadFile(daemonConfigPath)
	if err == nil {
		for opt, re := range credentialLineRegexps {
			match := re.FindSubmatch(daemonConfig)
			if match == nil {
				continue
			}
			commented := regexp.MustCompile(`(?m)^;\s*` + opt + `=[^\s]*$`)
			contents = commented.ReplaceAllLiteralString(contents,
				opt+"="+string(match[1]))
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0700); err != nil {
		return err
	}
	return os.WriteFile(destPath, []byte(contents), 0600)
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
// The above results in functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options.  Command line options always take precedence.
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		ConfigFile: defaultConfigFile,
		RPCServer:  defaultRPCServer,
		RPCCert:    defaultRPCCertFile,
	}

	// Pre-parse the command line options to see if an alternative config
	// file, the version flag, or the list commands flag was specified.  Any
	// errors aside from the help message error can be ignored here since
	// they will be caught by the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "The special parameter `-` "+
				"indicates that a parameter should be read "+
				"from the\nnext unread line from standard input.")
			os.Exit(0)
		}
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show options", appName)
	if preCfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version.String(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	// Show the available commands and exit if the associated flag was
	// specified.
	if preCfg.ListCommands {
		listCommands()
		os.Exit(0)
	}

	// Create the default config file from the daemon credentials when it
	// does not exist yet.
	if preCfg.ConfigFile == defaultConfigFile && !fileExists(defaultConfigFile) {
		err := createDefaultConfigFile(defaultConfigFile, bgladdrdConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating a default config "+
				"file: %v\n", err)
		}
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(cleanAndExpandPath(preCfg.ConfigFile))
	if err != nil {
		var e *os.PathError
		if !errors.As(err, &e) {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %v\n", err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, nil, err
	}

	// Multiple networks can't be selected simultaneously.
	params := chaincfg.MainNetParams()
	numNets := 0
	if cfg.TestNet {
		numNets++
		params = chaincfg.TestNetParams()
	}
	if cfg.RegNet {
		numNets++
		params = chaincfg.RegNetParams()
	}
	if numNets > 1 {
		str := "%s: the testnet and regtest params can't be used together " +
			"-- choose one of the two"
		err := fmt.Errorf(str, "loadConfig")
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	// Handle environment variable expansion in the RPC certificate path.
	cfg.RPCCert = cleanAndExpandPath(cfg.RPCCert)

	// Add default port to RPC server based on the selected network if
	// needed.
	cfg.RPCServer = normalizeAddress(cfg.RPCServer, params.DefaultRPCPort)

	return &cfg, remainingArgs, nil
}
