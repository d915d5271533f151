package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// InputHandler applies client messages to a live session.
type InputHandler interface {
	Key(ctx context.Context, sessionID uuid.UUID, key string) error
	Advance(sessionID uuid.UUID) error
}

// ConnectionManager fans session state out to WebSocket clients and feeds
// their key presses back into the session.
type ConnectionManager struct {
	sessionConnections map[uuid.UUID]map[*Connection]bool
	mu                 sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan BroadcastMessage
}

// Connection is one client watching one session.
type Connection struct {
	ID        string
	SessionID uuid.UUID
	Conn      *websocket.Conn
	Send      chan []byte
	Manager   *ConnectionManager
	input     InputHandler

	ConnectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage is a state view addressed to every client of a session.
type BroadcastMessage struct {
	SessionID uuid.UUID
	View      StateView
}

// ClientMessage is sent by clients over the socket.
type ClientMessage struct {
	Type string `json:"type"` // "key" or "advance"
	Key  string `json:"key,omitempty"`
}

// ServerMessage wraps everything the gateway pushes.
type ServerMessage struct {
	Type  string     `json:"type"` // "state" or "error"
	State *StateView `json:"state,omitempty"`
	Error string     `json:"error,omitempty"`
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  512,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		sessionConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1024),
	}
}

// Start processes broadcasts until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			cm.closeAll()
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and sends the
// initial view.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID, initial StateView, input InputHandler) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		Conn:        conn,
		Send:        make(chan []byte, 64),
		Manager:     cm,
		input:       input,
		ConnectedAt: time.Now(),
	}

	if data, err := json.Marshal(ServerMessage{Type: "state", State: &initial}); err == nil {
		connection.Send <- data
	}
	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("session_id", sessionID.String()).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.sessionConnections[conn.SessionID] == nil {
		cm.sessionConnections[conn.SessionID] = make(map[*Connection]bool)
	}
	cm.sessionConnections[conn.SessionID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("session_id", conn.SessionID.String()).
		Int("total_connections", len(cm.sessionConnections[conn.SessionID])).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if connections, exists := cm.sessionConnections[conn.SessionID]; exists {
		if _, exists := connections[conn]; exists {
			delete(connections, conn)
			close(conn.Send)

			if len(connections) == 0 {
				delete(cm.sessionConnections, conn.SessionID)
			}

			log.Info().
				Str("connection_id", conn.ID).
				Str("session_id", conn.SessionID.String()).
				Msg("connection unregistered")
		}
	}
}

// Broadcast queues view for every client of sessionID. It never blocks.
func (cm *ConnectionManager) Broadcast(sessionID uuid.UUID, view StateView) {
	select {
	case cm.broadcastCh <- BroadcastMessage{SessionID: sessionID, View: view}:
	default:
		log.Warn().Str("session_id", sessionID.String()).Msg("broadcast channel full, dropping state")
	}
}

// CloseSession disconnects every client of sessionID.
func (cm *ConnectionManager) CloseSession(sessionID uuid.UUID) {
	cm.mu.RLock()
	var targets []*Connection
	for conn := range cm.sessionConnections[sessionID] {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		cm.unregisterConnection(conn)
	}
}

// ConnectionCount returns the number of clients watching sessionID.
func (cm *ConnectionManager) ConnectionCount(sessionID uuid.UUID) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.sessionConnections[sessionID])
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	ids := make([]uuid.UUID, 0, len(cm.sessionConnections))
	for id := range cm.sessionConnections {
		ids = append(ids, id)
	}
	cm.mu.RUnlock()

	for _, id := range ids {
		cm.CloseSession(id)
	}
}

func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	cm.mu.RLock()
	connections, exists := cm.sessionConnections[message.SessionID]
	if !exists {
		cm.mu.RUnlock()
		return
	}

	targetConnections := make([]*Connection, 0, len(connections))
	for conn := range connections {
		targetConnections = append(targetConnections, conn)
	}
	cm.mu.RUnlock()

	data, err := json.Marshal(ServerMessage{Type: "state", State: &message.View})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal state for broadcast")
		return
	}

	for _, conn := range targetConnections {
		if !conn.trySend(data) {
			log.Warn().
				Str("connection_id", conn.ID).
				Msg("connection send buffer full, closing connection")
			cm.unregisterConnection(conn)
		}
	}
}

// trySend reports false when the client is too slow to keep up. The read
// lock keeps unregisterConnection from closing Send underneath us.
func (c *Connection) trySend(data []byte) bool {
	c.Manager.mu.RLock()
	defer c.Manager.mu.RUnlock()

	if !c.Manager.sessionConnections[c.SessionID][c] {
		return true
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

func (c *Connection) handleClientMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.sendError("malformed message")
		return
	}

	var err error
	switch msg.Type {
	case "key":
		ctx, cancel := context.WithTimeout(context.Background(), c.Manager.config.WriteTimeout)
		err = c.input.Key(ctx, c.SessionID, msg.Key)
		cancel()
	case "advance":
		err = c.input.Advance(c.SessionID)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}
	if err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", c.ID).
			Str("type", msg.Type).
			Msg("client message rejected")
		c.sendError(err.Error())
	}
}

func (c *Connection) sendError(text string) {
	data, err := json.Marshal(ServerMessage{Type: "error", Error: text})
	if err != nil {
		return
	}
	c.trySend(data)
}
