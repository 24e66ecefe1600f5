// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bitgesell/bgladdr/internal/version"
)

// bgladdrdMain is the real main function for bgladdrd.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func bgladdrdMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	cfg, _, err := loadConfig(appName)
	if err != nil {
		usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
		fmt.Fprintln(os.Stderr, err)
		var e errSuppressUsage
		if !errors.As(err, &e) {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a context that will be canceled when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// the stop RPC.
	ctx := shutdownListener()
	defer bgldLog.Info("Shutdown complete")

	bgldLog.Infof("Version %s (Go version %s %s/%s)", version.String(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	bgldLog.Infof("Home dir: %s", cfg.HomeDir)
	bgldLog.Infof("Validating addresses for %s (segwit prefix %q)",
		cfg.params.Name, cfg.params.Bech32HRP)
	if cfg.NoFileLogging {
		bgldLog.Info("File logging disabled")
	}

	var profiler profileServer
	defer profiler.Stop()
	if cfg.Profile != "" {
		if err := profiler.Start(cfg.Profile); err != nil {
			bgldLog.Warnf("unable to start profile server: %v", err)
			return err
		}
	}

	if shutdownRequested(ctx) {
		return nil
	}

	server, err := newRPCServer(cfg)
	if err != nil {
		bgldLog.Errorf("Unable to start RPC server: %v", err)
		return err
	}

	// Route the stop RPC into the same shutdown path used for OS signals.
	go func() {
		select {
		case <-server.RequestedProcessShutdown():
			shutdownRequestChannel <- struct{}{}
		case <-ctx.Done():
		}
	}()

	// Run the server.  This will block until the context is cancelled.
	server.Run(ctx)
	rpcsLog.Infof("RPC server shutdown complete")
	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := bgladdrdMain(); err != nil {
		os.Exit(1)
	}
}
