// Copyright (c) 2021-2023 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// entrypoint runs bgladdrd or bgladdrctl inside a container with their data
// rooted at $BGLADDR_DATA.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
)

// defaultApp is assumed when either no arguments are specified or the first
// argument starts with a -.
const defaultApp = "bgladdrd"

// convertsToFalse returns true if the provided string is "false", "f", or "0".
func convertsToFalse(val string) bool {
	return val == "false" || val == "f" || val == "0"
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

// invocation describes the process the entrypoint starts.
type invocation struct {
	app  string
	args []string

	// home overrides $HOME for the child when not empty.
	home string
}

// containerInvocation rewrites the container arguments into the application
// to run along with the extra flags that point it at the data directory.
// Caller supplied arguments always follow the injected flags so they take
// precedence.
func containerInvocation(args []string, dataDir string, getenv func(string) string) invocation {
	app := defaultApp
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		app, args = args[0], args[1:]
	}
	daemonAppData := filepath.Join(dataDir, ".bgladdrd")

	inv := invocation{app: app}
	switch app {
	case "bgladdrd":
		var extra []string
		if !convertsToFalse(getenv("BGLADDRD_NO_FILE_LOGGING")) {
			extra = append(extra, "--nofilelogging")
		}
		extra = append(extra, "--appdata="+daemonAppData, "--rpclisten=")
		inv.args = append(extra, args...)

	case "bgladdrctl":
		ctlAppData := filepath.Join(dataDir, ".bgladdrctl")
		ctlConfig := filepath.Join(ctlAppData, "bgladdrctl.conf")
		inv.args = append([]string{
			"--configfile=" + ctlConfig,
			"--rpccert=" + filepath.Join(daemonAppData, "rpc.cert"),
		}, args...)

		// bgladdrctl discovers the daemon credentials through the home
		// directory when it has no config of its own yet.
		if !fileExists(ctlConfig) {
			inv.home = dataDir
		}

	default:
		inv.args = args
	}
	return inv
}

func main() {
	exeName := filepath.Base(os.Args[0])
	if len(os.Args) < 2 || os.Args[1] == "" || os.Args[1][0] == '-' {
		fmt.Printf("%s: assuming arguments for %s\n", exeName, defaultApp)
	}

	inv := containerInvocation(os.Args[1:], os.Getenv("BGLADDR_DATA"),
		os.Getenv)
	if inv.home != "" {
		os.Setenv("HOME", inv.home)
	}

	// Run the command with the given arguments while redirecting stdin, stdout,
	// and stderr to the parent process.  Also, listen for SIGTERM and forward
	// it to ensure the child process has the opportunity to perform a graceful
	// shutdown.
	cmd := exec.Command(inv.app, inv.args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	go func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, syscall.SIGTERM)
		for sig := range interruptChannel {
			cmd.Process.Signal(sig)
		}
	}()
	if err := cmd.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmd.ProcessState.ExitCode())
	}
}
