// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

// shutdownRequestChannel is used to initiate shutdown from the stop RPC using
// the same code paths as when an interrupt signal is received.
var shutdownRequestChannel = make(chan struct{})

// interruptSignals defines the default signals to catch in order to do a proper
// shutdown.  This may be modified during init depending on the platform.
var interruptSignals = []os.Signal{os.Interrupt}

// awaitShutdown blocks until either an interrupt signal or a shutdown request
// arrives and describes which one it was.
func awaitShutdown(interruptChannel <-chan os.Signal, requests <-chan struct{}) string {
	select {
	case sig := <-interruptChannel:
		return fmt.Sprintf("Received signal (%s)", sig)
	case <-requests:
		return "Shutdown requested"
	}
}

// shutdownListener listens for OS Signals such as SIGINT (Ctrl+C) and shutdown
// requests from shutdownRequestChannel.  It returns a context that is canceled
// when either signal is received.
func shutdownListener() context.Context {
	return listenForShutdown(shutdownRequestChannel)
}

// listenForShutdown returns a context that is canceled on the first interrupt
// signal or request received from requests.
func listenForShutdown(requests <-chan struct{}) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	interruptChannel := make(chan os.Signal, 1)
	signal.Notify(interruptChannel, interruptSignals...)
	go func() {
		reason := awaitShutdown(interruptChannel, requests)
		bgldLog.Infof("%s.  Shutting down...", reason)
		cancel()

		// Drain repeated signals and stop requests for the life of the
		// process.
		for {
			reason := awaitShutdown(interruptChannel, requests)
			bgldLog.Infof("%s.  Already shutting down...", reason)
		}
	}()

	return ctx
}

// shutdownRequested returns true when the context returned by shutdownListener
// was canceled.
func shutdownRequested(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
	}

	return false
}
