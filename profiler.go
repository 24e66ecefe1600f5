// Copyright (c) 2024-2025 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"strconv"
	"sync"
	"time"
)

// profileAddr prepends a default host of 127.0.0.1 when the provided address
// is solely a port number and ensures the port is between 1024 and 65535.
func profileAddr(addr string) (string, error) {
	if _, err := strconv.Atoi(addr); err == nil {
		addr = net.JoinHostPort("127.0.0.1", addr)
	}
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", err
	}
	if port, _ := strconv.Atoi(portStr); port < 1024 || port > 65535 {
		return "", fmt.Errorf("address %q: port must be between 1024 and "+
			"65535", addr)
	}
	return addr, nil
}

// profileServer serves the pprof profiling endpoints registered on the
// default mux while the daemon runs.
type profileServer struct {
	wg     sync.WaitGroup
	mtx    sync.Mutex
	server *http.Server
}

// Start binds listeners for the provided address and serves the profiling
// endpoints in the background.  It has no effect when the server is already
// running.
func (s *profileServer) Start(listenAddr string) error {
	defer s.mtx.Unlock()
	s.mtx.Lock()

	if s.server != nil {
		return nil
	}

	listenAddr, err := profileAddr(listenAddr)
	if err != nil {
		return err
	}
	netAddrs, err := parseListeners([]string{listenAddr})
	if err != nil {
		return err
	}

	listeners := make([]net.Listener, 0, len(netAddrs))
	for _, addr := range netAddrs {
		listener, err := net.Listen(addr.Network(), addr.String())
		if err != nil {
			for _, l := range listeners {
				l.Close()
			}
			return fmt.Errorf("unable to listen on %s: %w", listenAddr, err)
		}
		listeners = append(listeners, listener)
	}

	s.server = &http.Server{
		Addr:              listenAddr,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: time.Second * 3,
	}
	for _, listener := range listeners {
		bgldLog.Infof("Profiling server listening on %s", listener.Addr())
		s.wg.Add(1)
		go func(httpServer *http.Server, listener net.Listener) {
			defer s.wg.Done()

			err := httpServer.Serve(listener)
			if !errors.Is(err, http.ErrServerClosed) {
				bgldLog.Errorf("Profiling server listening on %s exited "+
					"with unexpected error: %v", listener.Addr(), err)
			}
		}(s.server, listener)
	}

	return nil
}

// Stop closes the listeners and any connections to the profile server.  It
// has no effect when the server is not running.
func (s *profileServer) Stop() error {
	defer s.mtx.Unlock()
	s.mtx.Lock()

	if s.server == nil {
		return nil
	}

	err := s.server.Close()
	s.server = nil
	s.wg.Wait()
	if err != nil {
		bgldLog.Errorf("Profiling server stopped with unexpected error: %v",
			err)
		return err
	}

	bgldLog.Info("Profiling server stopped")
	return nil
}
