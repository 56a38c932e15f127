package api

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/logger"
)

// Hub tracks live websocket sessions by client id.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.WithComponent("ws-hub")
	}
	return &Hub{sessions: make(map[string]*Session), log: log}
}

// Register adds s and closes any earlier session with the same client id.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	old := h.sessions[s.id]
	h.sessions[s.id] = s
	total := len(h.sessions)
	h.mu.Unlock()

	if old != nil && old != s {
		h.log.Info("replacing websocket session", logger.Fields(logger.FieldClientID, s.id))
		old.Close(websocket.CloseNormalClosure, "replaced by a new connection")
	}
	h.log.Debug("websocket session registered", logger.Fields(logger.FieldClientID, s.id, "total", total))
}

// Unregister removes s unless it was already replaced.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	if h.sessions[s.id] == s {
		delete(h.sessions, s.id)
	}
	total := len(h.sessions)
	h.mu.Unlock()
	h.log.Debug("websocket session unregistered", logger.Fields(logger.FieldClientID, s.id, "total", total))
}

// Get returns the live session of clientID, or nil.
func (h *Hub) Get(clientID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[clientID]
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// ClientIDs returns the connected client ids, sorted.
func (h *Hub) ClientIDs() []string {
	h.mu.RLock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// CloseAll closes every session.
func (h *Hub) CloseAll(code int, reason string) {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for id, s := range h.sessions {
		sessions = append(sessions, s)
		delete(h.sessions, id)
	}
	h.mu.Unlock()
	for _, s := range sessions {
		s.Close(code, reason)
	}
}

// HubComponent closes live sessions on shutdown; net/http does not track
// hijacked connections.
type HubComponent struct {
	hub *Hub
}

var (
	_ component.Component   = (*HubComponent)(nil)
	_ component.Describable = (*HubComponent)(nil)
)

func NewHubComponent(hub *Hub) *HubComponent { return &HubComponent{hub: hub} }

func (c *HubComponent) Name() string { return "websocket-hub" }

func (c *HubComponent) Start(context.Context) error { return nil }

func (c *HubComponent) Stop(context.Context) error {
	c.hub.CloseAll(websocket.CloseGoingAway, "server shutting down")
	return nil
}

func (c *HubComponent) Health(context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d sessions connected", c.hub.Count()),
	}
}

func (c *HubComponent) Describe() component.Description {
	return component.Description{Name: "WebSocket Hub", Type: "websocket", Details: "/ws/:client_id"}
}
