// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2022 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
bgladdrd is a Bitgesell address validation daemon written in Go.

It answers JSON-RPC requests over HTTP POST and websockets that classify and
validate base58check (P2PKH, P2SH) and bech32/bech32m segwit addresses for a
single configured network, reporting the exact reason an address is rejected.

The default options are sane for most users.  An interesting point to note is
that the long form of all of these options (except -C) can be specified in a
configuration file that is automatically parsed when bgladdrd starts up.  By
default, the configuration file is located at ~/.bgladdrd/bgladdrd.conf on
POSIX-style operating systems and %LOCALAPPDATA%\bgladdrd\bgladdrd.conf on
Windows.  The -C (--configfile) flag, as shown below, can be used to override
this location.  A commented configuration file with freshly generated RPC
credentials is written there the first time bgladdrd starts.

Usage:

	bgladdrd [OPTIONS]

Application Options:

	-V, --version                Display version information and exit
	-A, --appdata=               Path to application home directory
	-C, --configfile=            Path to configuration file
	    --testnet                Validate addresses for the test network
	    --regtest                Validate addresses for the regression test
	                             network
	    --logdir=                Directory to log output
	    --nofilelogging          Disable file logging
	-d, --debuglevel=            Logging level for all subsystems {trace, debug,
	                             info, warn, error, critical} -- You may also
	                             specify
	                             <subsystem>=<level>,<subsystem2>=<level>,... to
	                             set the log level for individual subsystems --
	                             Use show to list available subsystems (info)
	    --profile=               Enable HTTP profiling on given [addr:]port --
	                             NOTE port must be between 1024 and 65535
	-u, --rpcuser=               Username for RPC connections
	-P, --rpcpass=               Password for RPC connections
	    --rpclimituser=          Username for limited RPC connections
	    --rpclimitpass=          Password for limited RPC connections
	    --rpclisten=             Add an interface/port to listen for RPC
	                             connections (default port: 8460, testnet:
	                             18460, regtest: 18560)
	    --rpccert=               File containing the certificate file
	    --rpckey=                File containing the certificate key
	    --tlscurve=              Curve to use when generating the TLS keypair
	                             {P-256, P-521} (P-521)
	    --altdnsnames=           Specify additional DNS names to use when
	                             generating the RPC server certificate
	                             [$BGLADDRD_ALT_DNSNAMES]
	    --notls                  Disable TLS for the RPC server -- NOTE: This is
	                             only allowed if the RPC server is bound to
	                             localhost
	    --rpcmaxclients=         Max number of RPC clients for standard
	                             connections (10)
	    --rpcmaxwebsockets=      Max number of RPC websocket connections (25)
	    --rpcmaxconcurrentreqs=  Max number of concurrent RPC requests that may
	                             be processed concurrently per websocket client
	                             (20)
	    --addrcachesize=         Number of validateaddress results to cache -- 0
	                             disables the cache (10000)

Help Options:

	-h, --help           Show this help message
*/
package main
