package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func getValidator() *validator.Validate {
	validate := validator.New()

	if err := validate.RegisterValidation("requestkind", func(fl validator.FieldLevel) bool {
		return RequestKind(fmt.Sprint(fl.Field())).IsValid()
	}); err != nil {
		panic(fmt.Sprintf("failed to register requestkind validation: %v", err))
	}
	return validate
}

// Caller session sources. A popup session has no history of its own, so an
// abort there is terminal.
const (
	SourcePopup    = "popup"
	SourceRedirect = "redirect"
)

// CallerEnvelope is the wire frame a caller opens a session with.
type CallerEnvelope struct {
	ID      uint64       `json:"id" validate:"required"`
	Kind    string       `json:"kind" validate:"required,requestkind"`
	Source  string       `json:"source,omitempty"`
	Request *RequestWire `json:"request" validate:"required"`
}

// CallerReply is the wire frame delivered back to the caller. Exactly one is
// sent per accepted session.
type CallerReply struct {
	ID     uint64         `json:"id"`
	Status ResponseStatus `json:"status"`
	Result interface{}    `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// ChannelHandle is the serializable identity of a caller channel. It is what
// session snapshots persist in place of the live connection.
type ChannelHandle struct {
	ID     uint64 `json:"id"`
	Origin string `json:"origin"`
	Source string `json:"source,omitempty"`
}

// CallerState is the live side of a channel handle: the caller's identity
// plus a reply sink that accepts exactly one reply.
type CallerState struct {
	ID     uint64
	Origin string
	Source string

	conn    *CallerConnection
	logger  Logger
	replyMu sync.Mutex
	replied bool
}

// Handle returns the serializable form of this caller state.
func (s *CallerState) Handle() ChannelHandle {
	return ChannelHandle{ID: s.ID, Origin: s.Origin, Source: s.Source}
}

// Reply delivers the terminal reply for this session. A second call is
// rejected; every accepted session replies exactly once.
func (s *CallerState) Reply(status ResponseStatus, result interface{}, errorMessage string) error {
	s.replyMu.Lock()
	defer s.replyMu.Unlock()

	if s.replied {
		return fmt.Errorf("channel %d already replied", s.ID)
	}
	if s.conn == nil {
		return fmt.Errorf("channel %d has no live connection", s.ID)
	}
	s.replied = true

	reply := CallerReply{ID: s.ID, Status: status, Result: result, Error: errorMessage}
	replyBytes, err := json.Marshal(&reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}
	s.conn.Write(replyBytes)
	return nil
}

// Replied reports whether the terminal reply has been delivered.
func (s *CallerState) Replied() bool {
	s.replyMu.Lock()
	defer s.replyMu.Unlock()
	return s.replied
}

// CallerHandler processes one accepted request. It must arrange for
// state.Reply to be called exactly once.
type CallerHandler func(state *CallerState, wire *RequestWire)

// CallerNode is the WebSocket server callers open RPC sessions against. It
// validates the envelope, resolves the handler registered for the request
// kind, and hands the session to it.
type CallerNode struct {
	// upgrader handles the HTTP to WebSocket protocol upgrade
	upgrader websocket.Upgrader

	// handlers maps request kinds to their registered handler
	handlers map[RequestKind]CallerHandler
	// validate checks incoming envelopes
	validate *validator.Validate

	// connHub manages all active caller connections
	connHub *callerConnectionHub
	// logger for structured logging
	logger Logger

	// clientTimeout bounds how long a connection may stay silent before the
	// timeout handlers fire
	clientTimeout time.Duration

	// Event handlers for connection lifecycle
	onConnectHandlers     []func()
	onDisconnectHandlers  []func()
	onTimeoutHandlers     []func(connectionID string)
	onMessageSentHandlers []func()
}

// NewCallerNode creates a caller node. A non-positive clientTimeout disables
// the no-request timeout.
func NewCallerNode(clientTimeout time.Duration, logger Logger) *CallerNode {
	return &CallerNode{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Origin authorization happens per request kind
			},
		},

		handlers: make(map[RequestKind]CallerHandler),
		validate: getValidator(),

		connHub:       newCallerConnectionHub(),
		logger:        logger.NewSystem("caller-node"),
		clientTimeout: clientTimeout,

		onConnectHandlers:     []func(){},
		onDisconnectHandlers:  []func(){},
		onTimeoutHandlers:     []func(connectionID string){},
		onMessageSentHandlers: []func(){},
	}
}

// OnRequest registers the handler for a request kind. Envelopes carrying a
// kind with no registered handler are rejected.
func (n *CallerNode) OnRequest(kind RequestKind, handler CallerHandler) {
	if kind == "" {
		panic("caller request kind cannot be empty")
	}
	if handler == nil {
		panic(fmt.Sprintf("caller handler cannot be nil for kind %s", kind))
	}
	n.handlers[kind] = handler
}

// OnConnect registers a handler to be called when a new connection is established.
func (n *CallerNode) OnConnect(handler func()) {
	n.onConnectHandlers = append(n.onConnectHandlers, handler)
}

// OnDisconnect registers a handler to be called when a connection is closed.
func (n *CallerNode) OnDisconnect(handler func()) {
	n.onDisconnectHandlers = append(n.onDisconnectHandlers, handler)
}

// OnTimeout registers a handler to be called when a connection produces no
// valid request within the client timeout.
func (n *CallerNode) OnTimeout(handler func(connectionID string)) {
	n.onTimeoutHandlers = append(n.onTimeoutHandlers, handler)
}

// OnMessageSent registers a handler to be called after a message is sent to a caller.
func (n *CallerNode) OnMessageSent(handler func()) {
	n.onMessageSentHandlers = append(n.onMessageSentHandlers, handler)
}

// ActiveConnections returns the number of currently connected callers.
func (n *CallerNode) ActiveConnections() int {
	return n.connHub.Count()
}

// HandleConnection is the main entry point for caller WebSocket connections.
// It upgrades the HTTP connection, manages the read/write pumps, and routes
// envelopes to the handler registered for their kind.
// This method blocks until the connection is closed.
func (n *CallerNode) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		n.logger.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer conn.Close()

	connectionID := uuid.NewString()
	origin := r.Header.Get("Origin")
	callerConn := NewCallerConnection(connectionID, origin, conn, n.logger, n.onMessageSentHandlers...)
	if err := n.connHub.Add(callerConn); err != nil {
		n.logger.Error("failed to add connection to hub", "error", err, "connectionID", connectionID)
		return
	}

	for _, handler := range n.onConnectHandlers {
		handler()
	}

	// Cleanup function executed when connection closes
	defer func() {
		n.connHub.Remove(connectionID)

		for _, handler := range n.onDisconnectHandlers {
			handler()
		}

		n.logger.Info("connection closed", "connectionID", connectionID, "origin", origin)
	}()

	parentCtx, cancel := context.WithCancel(r.Context())
	wg := &sync.WaitGroup{}
	wg.Add(2)
	abortOthers := func() {
		cancel()  // Trigger exit on other goroutines
		wg.Done() // Decrement the wait group counter
	}

	go callerConn.Serve(parentCtx, abortOthers)
	go n.processMessages(callerConn, parentCtx, abortOthers)

	wg.Wait()
}

// processMessages handles incoming envelopes from a caller connection.
// It validates them and dispatches to the handler registered for the kind.
func (n *CallerNode) processMessages(callerConn *CallerConnection, ctx context.Context, abortOthers context.CancelFunc) {
	defer abortOthers() // Stop other goroutines when done

	var timeoutTimer *time.Timer
	if n.clientTimeout > 0 {
		connectionID := callerConn.ConnectionID()
		timeoutTimer = time.AfterFunc(n.clientTimeout, func() {
			n.logger.Warn("no valid request within client timeout", "connectionID", connectionID)
			for _, handler := range n.onTimeoutHandlers {
				handler(connectionID)
			}
		})
		defer timeoutTimer.Stop()
	}

	for {
		var messageBytes []byte
		select {
		case <-ctx.Done():
			n.logger.Debug("context done, stopping message processing")
			return
		case messageBytes = <-callerConn.ProcessSink():
			if len(messageBytes) == 0 {
				return // Exit if the message is empty (connection closed)
			}
		}

		var envelope CallerEnvelope
		if err := json.Unmarshal(messageBytes, &envelope); err != nil {
			n.logger.Debug("invalid message format", "error", err, "message", string(messageBytes))
			n.sendErrorReply(callerConn, envelope.ID, "invalid message format")
			continue
		}

		if err := n.validate.Struct(&envelope); err != nil {
			n.logger.Debug("envelope validation failed", "error", err, "message", string(messageBytes))
			n.sendErrorReply(callerConn, envelope.ID, "envelope validation failed")
			continue
		}

		kind := RequestKind(envelope.Kind)
		handler, ok := n.handlers[kind]
		if !ok {
			n.logger.Debug("no handler registered for kind", "kind", kind)
			n.sendErrorReply(callerConn, envelope.ID, (&UnknownKindError{Kind: kind}).Error())
			continue
		}

		if timeoutTimer != nil {
			timeoutTimer.Stop()
		}

		n.logger.Info("processing request",
			"requestID", envelope.ID,
			"origin", callerConn.Origin(),
			"kind", kind)

		state := &CallerState{
			ID:     envelope.ID,
			Origin: callerConn.Origin(),
			Source: envelope.Source,
			conn:   callerConn,
			logger: n.logger.With("requestID", envelope.ID),
		}
		handler(state, envelope.Request)
	}
}

// sendErrorReply sends a protocol-level error reply outside any session.
func (n *CallerNode) sendErrorReply(conn *CallerConnection, requestID uint64, message string) {
	if conn == nil {
		n.logger.Error("connection is nil, cannot send error reply", "requestID", requestID)
		return
	}

	reply := CallerReply{ID: requestID, Status: StatusError, Error: message}
	replyBytes, err := json.Marshal(&reply)
	if err != nil {
		n.logger.Error("failed to marshal error reply", "error", err)
		return
	}
	conn.Write(replyBytes)
}
