package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var defaultCallerWriteDuration = 5 * time.Second // Timeout for writing messages to WebSocket

// CallerConnection represents one active caller WebSocket connection.
// It owns the read and write pumps and exposes channels for message flow.
type CallerConnection struct {
	// connectionID is a unique identifier for this connection
	connectionID string
	// origin is the web origin the caller connected from
	origin string
	// websocketConn is the underlying WebSocket connection
	websocketConn *websocket.Conn
	// logger is used for logging events related to this connection
	logger Logger
	// onMessageSentHandlers are callbacks that are called when a message is sent
	onMessageSentHandlers []func()

	// writeSink is the channel for sending messages to this connection
	writeSink chan []byte
	// processSink is the channel for processing incoming messages
	processSink chan []byte
	// closeConnCh is a channel that can be used to signal connection closure
	closeConnCh chan struct{}
}

// NewCallerConnection creates a new CallerConnection instance.
func NewCallerConnection(connID, origin string, websocketConn *websocket.Conn, logger Logger, onMessageSentHandlers ...func()) *CallerConnection {
	if onMessageSentHandlers == nil {
		onMessageSentHandlers = []func(){}
	}

	return &CallerConnection{
		connectionID:          connID,
		origin:                origin,
		websocketConn:         websocketConn,
		logger:                logger.With("connectionID", connID),
		onMessageSentHandlers: onMessageSentHandlers,

		writeSink:   make(chan []byte, 10),
		processSink: make(chan []byte, 10),
		closeConnCh: make(chan struct{}),
	}
}

// Serve starts the connection's lifecycle.
// It handles reading and writing messages, and waits for the connection to close.
func (conn *CallerConnection) Serve(parentCtx context.Context, abortParents func()) {
	defer abortParents() // Stop parent goroutines when done

	ctx, cancel := context.WithCancel(parentCtx)
	wg := &sync.WaitGroup{}
	wg.Add(2)
	abortOthers := func() {
		cancel()  // Trigger exit on other goroutines
		wg.Done() // Decrement the wait group counter
	}

	// Start reading messages from the WebSocket connection
	go conn.readMessages(cancel)

	// Start writing messages to the WebSocket connection
	go conn.writeMessages(ctx, abortOthers)

	// Wait for the WebSocket connection to close
	go conn.waitForConnClose(ctx, abortOthers)

	// Wait for all goroutines to finish
	wg.Wait()
	// Close the WebSocket connection
	if err := conn.websocketConn.Close(); err != nil {
		conn.logger.Error("error closing WebSocket connection", "error", err)
	}
}

// ConnectionID returns the unique identifier for this connection.
func (conn *CallerConnection) ConnectionID() string {
	return conn.connectionID
}

// Origin returns the web origin the caller connected from.
func (conn *CallerConnection) Origin() string {
	return conn.origin
}

// ProcessSink returns the channel for processing incoming messages.
func (conn *CallerConnection) ProcessSink() <-chan []byte {
	return conn.processSink
}

// readMessages listens for incoming messages on the WebSocket connection.
// It reads messages and sends them to the processSink channel for further processing.
func (conn *CallerConnection) readMessages(abortOthers func()) {
	defer abortOthers()           // Stop other goroutines when done
	defer close(conn.processSink) // Close the processing channel when done

	for {
		_, messageBytes, err := conn.websocketConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				conn.logger.Error("WebSocket connection closed with unexpected reason", "error", err)
			}
			return
		}

		if len(messageBytes) == 0 {
			conn.logger.Debug("received empty message, skipping")
			continue // Skip empty messages
		}
		conn.processSink <- messageBytes // Send message to processing channel
	}
}

// writeMessages handles outgoing messages to the WebSocket connection.
// It reads from the message sink channel and writes to the WebSocket.
func (conn *CallerConnection) writeMessages(ctx context.Context, abortOthers context.CancelFunc) {
	defer abortOthers() // Stop other goroutines

	for {
		select {
		case <-ctx.Done():
			conn.logger.Debug("context done, stopping message writing")
			return
		case messageBytes := <-conn.writeSink:
			if len(messageBytes) == 0 {
				continue // Skip empty messages
			}

			w, err := conn.websocketConn.NextWriter(websocket.TextMessage)
			if err != nil {
				conn.logger.Error("error getting writer for response", "error", err)
				continue
			}

			if _, err := w.Write(messageBytes); err != nil {
				conn.logger.Error("error writing response", "error", err)
				w.Close()
				continue
			}

			if err := w.Close(); err != nil {
				conn.logger.Error("error closing writer for response", "error", err)
				continue
			}

			// Call all message sent handlers
			for _, handler := range conn.onMessageSentHandlers {
				handler()
			}
		}
	}
}

// waitForConnClose waits for the WebSocket connection to close.
// It listens for the close signal and logs the closure event.
func (conn *CallerConnection) waitForConnClose(ctx context.Context, abortOthers context.CancelFunc) {
	defer abortOthers() // Stop other goroutines when done

	select {
	case <-ctx.Done():
		conn.logger.Debug("context done, stopping connection close wait")
	case <-conn.closeConnCh:
		conn.logger.Info("WebSocket connection closed by server", "connectionID", conn.ConnectionID())
	}
}

// Write sends a message to the connection's write sink.
// If the write operation takes too long, it signals the connection to close.
// This is useful for preventing hangs if the client is unresponsive.
func (conn *CallerConnection) Write(message []byte) {
	select {
	case <-time.After(defaultCallerWriteDuration):
		conn.closeConnCh <- struct{}{} // Signal connection closure if write times out
		return
	case conn.writeSink <- message:
		return
	}
}

// callerConnectionHub manages all active caller connections.
// It provides thread-safe operations for connection tracking.
type callerConnectionHub struct {
	// connections maps connection IDs to CallerConnection instances
	connections map[string]*CallerConnection
	// mu protects concurrent access to the map
	mu sync.RWMutex
}

func newCallerConnectionHub() *callerConnectionHub {
	return &callerConnectionHub{
		connections: make(map[string]*CallerConnection),
	}
}

// Add registers a connection in the hub.
func (hub *callerConnectionHub) Add(conn *CallerConnection) error {
	connID := conn.ConnectionID()

	hub.mu.Lock()
	defer hub.mu.Unlock()

	if _, exists := hub.connections[connID]; exists {
		return fmt.Errorf("connection with ID %s already exists", connID)
	}

	hub.connections[connID] = conn
	return nil
}

// Get retrieves a connection by its connection ID.
// Returns nil if the connection doesn't exist.
func (hub *callerConnectionHub) Get(connID string) *CallerConnection {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	return hub.connections[connID]
}

// Remove deletes a connection from the hub.
func (hub *callerConnectionHub) Remove(connID string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	delete(hub.connections, connID)
}

// Count returns the number of active connections.
func (hub *callerConnectionHub) Count() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	return len(hub.connections)
}
