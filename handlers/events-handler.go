package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alexander-edwards/asana-clone-app-fullstack/events"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames and keepalives.
	maxMessageSize = 4 * 1024
)

// ProjectAuthorizer checks that a user may watch a project.
type ProjectAuthorizer interface {
	Authorize(ctx context.Context, userID, projectID uuid.UUID) error
}

// EventsHandler streams project events over a websocket.
type EventsHandler struct {
	upgrader  websocket.Upgrader
	projects  ProjectAuthorizer
	publisher events.Publisher
	resp      *Responder
}

func NewEventsHandler(projects ProjectAuthorizer, publisher events.Publisher, resp *Responder, allowedOrigin string) *EventsHandler {
	return &EventsHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
		projects:  projects,
		publisher: publisher,
		resp:      resp,
	}
}

type eventConn struct {
	conn      *websocket.Conn
	projectID uuid.UUID
	events    <-chan events.Event
	done      chan struct{}
	closeOnce sync.Once
}

func (c *eventConn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, projectID, err := userAndPath(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.projects.Authorize(r.Context(), userID, projectID); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Warnf("Event ID: WEBSOCKET_UPGRADE_FAILED, Description: Upgrade for project %s failed: %v", projectID, err)
		return
	}
	logging.Logger.Debugf("Event ID: WEBSOCKET_CONNECTED, Description: User %s watching project %s", userID, projectID)

	c := &eventConn{
		conn:      conn,
		projectID: projectID,
		events:    h.publisher.Subscribe(projectID),
		done:      make(chan struct{}),
	}

	go h.readPump(c)
	go h.writePump(c)
}

// readPump only services control frames; it ends the connection on close or error.
func (h *EventsHandler) readPump(c *eventConn) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Logger.Warnf("Event ID: WEBSOCKET_READ_ERROR, Description: %v", err)
			}
			return
		}
	}
}

// writePump forwards project events and keeps the connection alive with pings.
func (h *EventsHandler) writePump(c *eventConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.publisher.Unsubscribe(c.projectID, c.events)
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.events:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				logging.Logger.Warnf("Event ID: WEBSOCKET_ENCODE_FAILED, Description: %v", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
