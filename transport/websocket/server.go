package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

type sessionUseCase interface {
	GetSession(ctx context.Context, id string) (*entity.Snapshot, error)
	SubmitMove(ctx context.Context, id string, cell int) (*entity.Snapshot, error)
	Reset(ctx context.Context, id string) (*entity.Snapshot, error)
	SetMode(ctx context.Context, id string, mode entity.GameMode) (*entity.Snapshot, error)
	SetDifficulty(ctx context.Context, id string, level entity.Difficulty) (*entity.Snapshot, error)
}

type handlerFunc func(ctx context.Context, sessionID string, msg *Message) (*entity.Snapshot, error)

// action - a handler and whether its result goes to every client of the session.
type action struct {
	handle    handlerFunc
	broadcast bool
}

type Server struct {
	logger   *slog.Logger
	sessions sessionUseCase
	upgrader websocket.Upgrader

	handlers map[string]action

	clientsMutex sync.Mutex
	clients      map[string]map[*client]struct{}
}

func New(logger *slog.Logger, sessions sessionUseCase) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers: make(map[string]action),
		clients:  make(map[string]map[*client]struct{}),
	}

	server.handlers[ActionMove] = action{handle: server.handleMove, broadcast: true}
	server.handlers[ActionReset] = action{handle: server.handleReset, broadcast: true}
	server.handlers[ActionMode] = action{handle: server.handleMode, broadcast: true}
	server.handlers[ActionDifficulty] = action{handle: server.handleDifficulty, broadcast: true}
	server.handlers[ActionState] = action{handle: server.handleState}

	return server
}

// Mount - registers the endpoint on a router scoped to /sessions/{id}.
func (that *Server) Mount(r chi.Router) {
	r.Get("/ws", that.ServeHTTP)
}

// ServeHTTP - upgrades the request for the session in the {id} URL parameter and serves it until the client leaves.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	log := that.logger.With("method", "ServeHTTP", "sessionID", sessionID)

	snapshot, err := that.sessions.GetSession(r.Context(), sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		http.Error(w, apperror.ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn)
	that.register(sessionID, c)

	defer func() {
		that.unregister(sessionID, c)
		_ = conn.Close()
	}()

	log.Info("WebSocket connection established")

	if err = c.send(ActionState, snapshot); err != nil {
		log.Error("failed to send initial state", "error", err)
		return
	}

	that.handleMessages(r.Context(), sessionID, c)
}

// handleMessages - processes messages from the client until the connection closes.
func (that *Server) handleMessages(ctx context.Context, sessionID string, c *client) {
	log := that.logger.With("method", "handleMessages", "sessionID", sessionID)

	done := make(chan struct{})
	defer close(done)
	go c.keepAlive(done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			that.reply(c, ActionError, ErrorPayload{Error: errMalformedMessage.Error()})
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Debug("unknown action", "action", message.Action)
			that.reply(c, ActionError, ErrorPayload{Error: errUnknownAction.Error()})
			continue
		}

		snapshot, err := handler.handle(ctx, sessionID, &message)
		if err != nil {
			log.Debug("action failed", "action", message.Action, "error", err)
			that.reply(c, ActionError, ErrorPayload{Error: publicError(err).Error()})
			continue
		}

		if handler.broadcast {
			that.broadcast(sessionID, message.Action, snapshot)
		} else {
			that.reply(c, message.Action, snapshot)
		}
	}
}

func (that *Server) reply(c *client, action string, payload any) {
	if err := c.send(action, payload); err != nil {
		that.logger.Error("failed to send message", "action", action, "error", err)
	}
}

func (that *Server) broadcast(sessionID, action string, payload any) {
	that.clientsMutex.Lock()
	targets := make([]*client, 0, len(that.clients[sessionID]))
	for c := range that.clients[sessionID] {
		targets = append(targets, c)
	}
	that.clientsMutex.Unlock()

	for _, c := range targets {
		that.reply(c, action, payload)
	}
}

func (that *Server) register(sessionID string, c *client) {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	if that.clients[sessionID] == nil {
		that.clients[sessionID] = make(map[*client]struct{})
	}

	that.clients[sessionID][c] = struct{}{}
}

func (that *Server) unregister(sessionID string, c *client) {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	delete(that.clients[sessionID], c)
	if len(that.clients[sessionID]) == 0 {
		delete(that.clients, sessionID)
	}
}

// client - one connection. gorilla allows a single concurrent writer, so writes take mu.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newClient(conn *websocket.Conn) *client {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	return &client{conn: conn}
}

func (that *client) send(action string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: data}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *client) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
