// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024 The Bitgesell developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/dcrd/dcrjson/v4"
	"github.com/gorilla/websocket"

	"github.com/bitgesell/bgladdr/rpc/jsonrpc/types"
)

const (
	// websocketSendBufferSize is the number of elements the send channel
	// can queue before blocking.
	websocketSendBufferSize = 50

	// websocketReadLimitUnauthenticated is the maximum number of bytes allowed
	// for an unauthenticated JSON-RPC message read from a websocket client.
	websocketReadLimitUnauthenticated = 1 << 12 // 4 KiB

	// websocketReadLimitAuthenticated is the maximum number of bytes allowed
	// for an authenticated JSON-RPC message read from a websocket client.
	websocketReadLimitAuthenticated = 1 << 20 // 1 MiB

	// websocketPongTimeout is the maximum amount of time attempts to respond to
	// websocket ping messages with a pong will wait before giving up.
	websocketPongTimeout = time.Second * 5
)

type semaphore chan struct{}

func makeSemaphore(n int) semaphore {
	return make(chan struct{}, n)
}

func (s semaphore) acquire() { s <- struct{}{} }
func (s semaphore) release() { <-s }

// timeZeroVal is simply the zero value for a time.Time and is used to avoid
// creating multiple instances.
var timeZeroVal time.Time

// wsCommandHandler describes a callback function used to handle a specific
// command.
type wsCommandHandler func(context.Context, *wsClient, interface{}) (interface{}, error)

// wsHandlers maps RPC command strings to appropriate websocket handler
// functions.  This is set by init because help references wsHandlers and thus
// causes a dependency loop.
var wsHandlers map[types.Method]wsCommandHandler
var wsHandlersBeforeInit = map[types.Method]wsCommandHandler{
	"help": handleWebsocketHelp,
}

// WebsocketHandler handles a new websocket client by creating a new wsClient,
// starting it, and blocking until the connection closes.  Since it blocks, it
// must be run in a separate goroutine.  It should be invoked from the websocket
// server handler which runs each new connection in a new goroutine thereby
// satisfying the requirement.
func (s *Server) WebsocketHandler(ctx context.Context, conn *websocket.Conn, remoteAddr string, authenticated bool, isAdmin bool) {
	// Clear the read deadline that was set before the websocket hijacked
	// the connection.
	conn.SetReadDeadline(timeZeroVal)

	log.Infof("New websocket client %s", remoteAddr)
	s.numWebsockets.Add(1)
	defer s.numWebsockets.Add(-1)

	client := newWebsocketClient(s, conn, remoteAddr, authenticated, isAdmin)
	client.Run(ctx)
	log.Infof("Disconnected websocket client %s", remoteAddr)
}

// wsResponse houses a message to send to a connected websocket client as
// well as a channel to reply on when the message is sent.
type wsResponse struct {
	msg      []byte
	doneChan chan bool
}

// wsClient provides an abstraction for handling a websocket client.  Inbound
// messages are read by the inHandler goroutine and each request is serviced
// in its own goroutine, bounded by a semaphore.  Replies are queued on a
// buffered channel and written by the outHandler goroutine, which limits the
// number of outstanding requests a client can make.
type wsClient struct {
	disconnected atomic.Bool // Websocket client disconnected?

	// server is the RPC server that is servicing the client.
	rpcServer *Server

	// conn is the underlying websocket connection.
	conn *websocket.Conn

	// addr is the remote address of the client.
	addr string

	// authenticated specifies whether a client has been authenticated
	// and therefore is allowed to communicated over the websocket.
	authenticated bool

	// isAdmin specifies whether a client may change the state of the server;
	// false means its access is only to the limited set of RPC calls.
	isAdmin bool

	// Networking infrastructure.
	serviceRequestSem semaphore
	sendChan          chan wsResponse
	quit              chan struct{}
	wg                sync.WaitGroup
}

// shouldLogReadError returns whether or not the passed error, which is expected
// to have come from reading from the websocket client in the inHandler, should
// be logged.
func (c *wsClient) shouldLogReadError(err error) bool {
	// No logging when the client is being forcibly disconnected from the server
	// side.
	if c.disconnected.Load() {
		return false
	}

	// No logging when the remote client has disconnected.
	if errors.Is(err, io.EOF) || websocket.IsCloseError(err,
		websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {

		return false
	}

	return true
}

// sendReply marshals a reply and sends it to the client.
func (c *wsClient) sendReply(rpcVersion string, id, result interface{}, replyErr error) {
	reply, err := createMarshalledReply(rpcVersion, id, result, replyErr)
	if err != nil {
		log.Errorf("Failed to marshal reply: %v", err)
		return
	}
	c.SendMessage(reply, nil)
}

// handleRequest processes a single request read from the client.  It returns
// false when the client must be disconnected.
func (c *wsClient) handleRequest(ctx context.Context, req *dcrjson.Request) bool {
	if req.Method == "" {
		if !c.authenticated {
			return false
		}
		c.sendReply(req.Jsonrpc, req.ID, nil, &dcrjson.RPCError{
			Code:    dcrjson.ErrRPCInvalidRequest.Code,
			Message: "Invalid request: malformed",
		})
		return true
	}

	// Valid requests with no ID (notifications) must not have a response
	// per the JSON-RPC spec.
	if req.ID == nil {
		return c.authenticated
	}

	cmd := parseCmd(req)
	if cmd.err != nil {
		// Only process requests from authenticated clients
		if !c.authenticated {
			return false
		}
		c.sendReply(cmd.jsonrpc, cmd.id, nil, cmd.err)
		return true
	}

	log.Debugf("Received command <%s> from %s", cmd.method, c.addr)

	// Check auth.  The client is immediately disconnected if the first
	// request of an unauthenticated websocket client is not the authenticate
	// request, an authenticate request is received when the client is
	// already authenticated, or incorrect authentication credentials are
	// provided in the request.
	switch authCmd, ok := cmd.params.(*types.AuthenticateCmd); {
	case c.authenticated && ok:
		log.Warnf("Websocket client %s is already authenticated", c.addr)
		return false
	case !c.authenticated && !ok:
		log.Warnf("Unauthenticated websocket message received")
		return false
	case !c.authenticated:
		c.authenticated, c.isAdmin = c.rpcServer.checkAuthUserPass(
			authCmd.Username, authCmd.Passphrase, c.addr)
		if !c.authenticated {
			return false
		}

		// Increase the read limits for authenticated connections.
		c.conn.SetReadLimit(websocketReadLimitAuthenticated)
		c.sendReply(cmd.jsonrpc, cmd.id, nil, nil)
		return true
	}

	// Check if the client is using limited RPC credentials and
	// error when not authorized to call the supplied RPC.
	if !c.isAdmin {
		if _, ok := rpcLimited[req.Method]; !ok {
			c.sendReply("", req.ID, nil, &dcrjson.RPCError{
				Code:    dcrjson.ErrRPCInvalidParams.Code,
				Message: "limited user not authorized for this method",
			})
			return true
		}
	}

	// Asynchronously handle the request.  The semaphore limits the number
	// of requests serviced at once, so reading the next request waits until
	// one finishes.
	c.serviceRequestSem.acquire()
	go func() {
		c.serviceRequest(ctx, cmd)
		c.serviceRequestSem.release()
	}()
	return true
}

// handleBatch processes a batched request read from an authenticated client
// and sends all of the replies as a single message.
func (c *wsClient) handleBatch(ctx context.Context, msg []byte) {
	c.serviceRequestSem.acquire()
	defer c.serviceRequestSem.release()

	reply := c.rpcServer.processBody(ctx, msg, c.isAdmin)
	if len(reply) > 0 {
		c.SendMessage(reply, nil)
	}
}

// inHandler handles all incoming messages for the websocket connection.  It
// must be run as a goroutine.
func (c *wsClient) inHandler(ctx context.Context) {
out:
	for !c.disconnected.Load() {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			// Log the error if it's not due to disconnecting.
			if c.shouldLogReadError(err) {
				log.Errorf("Websocket receive error from %s: %v", c.addr, err)
			}
			break out
		}

		if bytes.HasPrefix(msg, batchedRequestPrefix) {
			// Batches may not be used to authenticate.
			if !c.authenticated {
				break out
			}
			c.handleBatch(ctx, msg)
			continue
		}

		var req dcrjson.Request
		if err := json.Unmarshal(msg, &req); err != nil {
			// Only process requests from authenticated clients
			if !c.authenticated {
				break out
			}
			c.sendReply("1.0", nil, nil, &dcrjson.RPCError{
				Code:    dcrjson.ErrRPCParse.Code,
				Message: "Failed to parse request: " + err.Error(),
			})
			continue
		}

		if !c.handleRequest(ctx, &req) {
			break out
		}
	}

	// Ensure the connection is closed.
	c.Disconnect()
	c.wg.Done()
	log.Tracef("Websocket client input handler done for %s", c.addr)
}

// serviceRequest services a parsed RPC request by looking up and executing the
// appropriate RPC handler.  The response is marshalled and sent to the websocket
// client.
func (c *wsClient) serviceRequest(ctx context.Context, r *parsedRPCCmd) {
	var (
		result interface{}
		err    error
	)

	// Lookup the websocket extension for the command and if it doesn't
	// exist fallback to handling the command as a standard command.
	wsHandler, ok := wsHandlers[r.method]
	if ok {
		result, err = wsHandler(ctx, c, r.params)
	} else {
		result, err = c.rpcServer.standardCmdResult(ctx, r)
	}
	c.sendReply(r.jsonrpc, r.id, result, err)
}

// outHandler handles all outgoing messages for the websocket connection.  It
// uses a buffered channel to serialize output messages while allowing the
// sender to continue running asynchronously.  It must be run as a goroutine.
func (c *wsClient) outHandler() {
out:
	for {
		// Send any messages ready for send until the quit channel is
		// closed.
		select {
		case r := <-c.sendChan:
			err := c.conn.WriteMessage(websocket.TextMessage, r.msg)
			if err != nil {
				c.Disconnect()
				break out
			}
			if r.doneChan != nil {
				r.doneChan <- true
			}

		case <-c.quit:
			break out
		}
	}

	c.wg.Done()
	log.Tracef("Websocket client output handler done for %s", c.addr)
}

// SendMessage sends the passed json to the websocket client.  It is backed
// by a buffered channel, so it will not block until the send channel is full.
func (c *wsClient) SendMessage(marshalledJSON []byte, doneChan chan bool) {
	// Don't send the message if disconnected.
	if c.Disconnected() {
		if doneChan != nil {
			doneChan <- false
		}
		return
	}

	// Use select statement to unblock enqueuing the message once the client has
	// begun shutting down.
	select {
	case c.sendChan <- wsResponse{msg: marshalledJSON, doneChan: doneChan}:
	case <-c.quit:
		if doneChan != nil {
			doneChan <- false
		}
	}
}

// Disconnected returns whether or not the websocket client is disconnected.
func (c *wsClient) Disconnected() bool {
	return c.disconnected.Load()
}

// Disconnect disconnects the websocket client.
func (c *wsClient) Disconnect() {
	// Nothing to do if already disconnected.
	if !c.disconnected.CompareAndSwap(false, true) {
		return
	}

	log.Tracef("Disconnecting websocket client %s", c.addr)
	close(c.quit)
	c.conn.Close()
}

// Run starts the websocket client and all other goroutines necessary for it to
// function properly and blocks until the provided context is cancelled or the
// client disconnects.
func (c *wsClient) Run(ctx context.Context) {
	log.Tracef("Starting websocket client %s", c.addr)

	// Start processing input and output.
	c.wg.Add(2)
	go c.inHandler(ctx)
	go c.outHandler()

	// Forcibly disconnect the websocket client when the context is cancelled
	// which also closes the quit channel and thus ensures all of the above
	// goroutines are shutdown.
	c.wg.Add(1)
	go func(ctx context.Context) {
		// Select across the quit channel as well since the context is not
		// cancelled when the connection is closed due to websocket connection
		// hijacking.
		select {
		case <-ctx.Done():
			c.Disconnect()
		case <-c.quit:
		}
		c.wg.Done()
	}(ctx)

	c.wg.Wait()
}

// newWebsocketClient returns a new websocket client given the server,
// websocket connection, remote address, and whether or not the client has
// already been authenticated (via HTTP Basic access authentication).  The
// returned client is ready to start.
func newWebsocketClient(server *Server, conn *websocket.Conn,
	remoteAddr string, authenticated bool, isAdmin bool) *wsClient {

	return &wsClient{
		conn:              conn,
		addr:              remoteAddr,
		authenticated:     authenticated,
		isAdmin:           isAdmin,
		rpcServer:         server,
		serviceRequestSem: makeSemaphore(server.cfg.RPCMaxConcurrentReqs),
		sendChan:          make(chan wsResponse, websocketSendBufferSize),
		quit:              make(chan struct{}),
	}
}

// handleWebsocketHelp implements the help command for websocket connections.
func handleWebsocketHelp(_ context.Context, wsc *wsClient, icmd interface{}) (interface{}, error) {
	cmd, ok := icmd.(*types.HelpCmd)
	if !ok {
		return nil, dcrjson.ErrRPCInternal
	}

	// Provide a usage overview of all commands when no specific command
	// was specified.
	var method types.Method
	if cmd.Command != nil {
		method = types.Method(*cmd.Command)
	}
	helpCacher := wsc.rpcServer.helpCacher
	if method == "" {
		usage, err := helpCacher.rpcUsage(true)
		if err != nil {
			context := "Failed to generate RPC usage"
			return nil, rpcInternalError(err.Error(), context)
		}
		return usage, nil
	}

	// Check that the method asked for is known.  Websocket only commands are
	// included.
	_, isRPC := rpcHandlers[method]
	_, isWS := wsHandlers[method]
	if !isRPC && !isWS && method != "authenticate" {
		return nil, rpcInvalidError("Unknown method: %v", method)
	}

	help, err := helpCacher.rpcMethodHelp(method)
	if err != nil {
		context := "Failed to generate help"
		return nil, rpcInternalError(err.Error(), context)
	}
	return help, nil
}

func init() {
	wsHandlers = wsHandlersBeforeInit
}
