// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bitgesell/bgladdr/rpc/jsonrpc/types"
	"github.com/decred/dcrd/dcrjson/v4"
	"github.com/decred/dcrd/rpcclient/v8"
	"golang.org/x/term"
)

const (
	showHelpMessage = "Specify -h to show available options"
	listCmdMessage  = "Specify -l to list available commands"
)

// commandUsage display the usage for a specific command.
func commandUsage(method string) {
	usage, err := dcrjson.MethodUsageText(types.Method(method))
	if err != nil {
		// This should never happen since the method was already checked
		// before calling this function, but be safe.
		fmt.Fprintln(os.Stderr, "Failed to obtain command usage:", err)
		return
	}

	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintf(os.Stderr, "  %s\n", usage)
}

// usage displays the general usage when the help flag is not displayed
// and an invalid command was specified.  The commandUsage function is used
// instead when a valid command was specified.
func usage(errorMessage string) {
	appName := "bgladdrctl"
	fmt.Fprintln(os.Stderr, errorMessage)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintf(os.Stderr, "  %s [OPTIONS] <command> <args...>\n\n",
		appName)
	fmt.Fprintln(os.Stderr, showHelpMessage)
	fmt.Fprintln(os.Stderr, listCmdMessage)
}

// readParams substitutes each parameter that is a single dash with the next
// unread line from r.
func readParams(args []string, r io.Reader) ([]interface{}, error) {
	var bio *bufio.Reader
	params := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if arg != "-" {
			params = append(params, arg)
			continue
		}

		if bio == nil {
			bio = bufio.NewReader(r)
		}
		param, err := bio.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read data from stdin: %w",
				err)
		}
		if errors.Is(err, io.EOF) && len(param) == 0 {
			return nil, errors.New("not enough lines provided on stdin")
		}
		params = append(params, strings.TrimRight(param, "\r\n"))
	}
	return params, nil
}

// marshalParams builds the registered command for method from the string
// arguments and returns its positional JSON parameters.
func marshalParams(method string, params []interface{}) ([]json.RawMessage, error) {
	cmd, err := dcrjson.NewCmd(types.Method(method), params...)
	if err != nil {
		return nil, err
	}
	marshalled, err := dcrjson.MarshalCmd("1.0", 1, cmd)
	if err != nil {
		return nil, err
	}
	var request dcrjson.Request
	if err := json.Unmarshal(marshalled, &request); err != nil {
		return nil, err
	}
	return request.Params, nil
}

// formatResult returns the text to print for a raw JSON-RPC result.  Strings
// are printed without quotes, null results print nothing and everything else
// is indented JSON.
func formatResult(result json.RawMessage) (string, error) {
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return "", nil
	}
	if result[0] == '"' {
		var str string
		if err := json.Unmarshal(result, &str); err != nil {
			return "", err
		}
		return str, nil
	}
	var dst bytes.Buffer
	if err := json.Indent(&dst, result, "", "  "); err != nil {
		return "", err
	}
	return dst.String(), nil
}

// promptPassword reads the RPC password from the terminal without echo.
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprint(os.Stderr, "RPC password: ")
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("unable to read password: %w", err)
	}
	return string(pass), nil
}

func main() {
	cfg, args, err := loadConfig()
	if err != nil {
		os.Exit(1)
	}
	if len(args) < 1 {
		usage("No command specified")
		os.Exit(1)
	}

	// Ensure the specified method identifies a valid registered command and
	// is one of the usable types.
	method := args[0]
	usageFlags, err := dcrjson.MethodUsageFlags(types.Method(method))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unrecognized command %q\n", method)
		fmt.Fprintln(os.Stderr, listCmdMessage)
		os.Exit(1)
	}
	if usageFlags&unusableFlags != 0 {
		fmt.Fprintf(os.Stderr, "The '%s' command can only be used via "+
			"websockets\n", method)
		fmt.Fprintln(os.Stderr, listCmdMessage)
		os.Exit(1)
	}

	params, err := readParams(args[1:], os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Attempt to create the appropriate command using the arguments provided
	// by the user.
	rawParams, err := marshalParams(method, params)
	if err != nil {
		// Show the error along with its error kind when it's a dcrjson.Error
		// as it realistically will always be since the NewCmd function is
		// only supposed to return errors of that type.
		var kind dcrjson.ErrorKind
		if errors.As(err, &kind) {
			fmt.Fprintf(os.Stderr, "%s command: %v (code: %s)\n",
				method, err, kind)
			commandUsage(method)
			os.Exit(1)
		}

		// The error is not a dcrjson.Error and this really should not
		// happen.  Nevertheless, fallback to just showing the error if it
		// should happen due to a bug in the package.
		fmt.Fprintf(os.Stderr, "%s command: %v\n", method, err)
		commandUsage(method)
		os.Exit(1)
	}

	if cfg.RPCPassword == "" && cfg.RPCUser != "" {
		cfg.RPCPassword, err = promptPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	connCfg := &rpcclient.ConnConfig{
		Host:         cfg.RPCServer,
		User:         cfg.RPCUser,
		Pass:         cfg.RPCPassword,
		DisableTLS:   cfg.NoTLS,
		Proxy:        cfg.Proxy,
		ProxyUser:    cfg.ProxyUser,
		ProxyPass:    cfg.ProxyPass,
		HTTPPostMode: true,
	}
	if !cfg.NoTLS {
		connCfg.Certificates, err = os.ReadFile(cfg.RPCCert)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unable to read rpc certificate: %v\n",
				err)
			os.Exit(1)
		}
	}
	client, err := rpcclient.New(connCfg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Shutdown()

	result, err := client.RawRequest(context.Background(), method, rawParams)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		client.Shutdown()
		os.Exit(1)
	}

	output, err := formatResult(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to format result: %v\n", err)
		client.Shutdown()
		os.Exit(1)
	}
	if output != "" {
		fmt.Println(output)
	}
}
