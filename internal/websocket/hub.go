package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/climavet/climavet/internal/model"
)

const (
	EntityChecklist = "checklist"
	EntityItem      = "checklist_item"
)

// Message is a change notification pushed to open browser tabs.
type Message struct {
	Type        string         `json:"type"`
	Entity      string         `json:"entity"`
	Action      string         `json:"action"`
	ID          int64          `json:"id,omitempty"`
	ChecklistID int64          `json:"checklist_id,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// ItemUpdated announces a changed item along with the checklist's new totals.
func ItemUpdated(c model.Checklist, item model.ChecklistItem) Message {
	msg := NewMessage(EntityItem, "updated", item.ID, map[string]any{
		"status":                item.Status,
		"completion_percentage": c.CompletionPercentage,
		"items_in_stock":        c.ItemsInStock,
		"total_items":           c.TotalItems,
	})
	msg.ChecklistID = c.ID
	return msg
}

// ChecklistCreated announces a new checklist to every client.
func ChecklistCreated(c model.Checklist) Message {
	return NewMessage(EntityChecklist, "created", c.ID, map[string]any{"name": c.Name})
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	dropped int
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends msg to every client watching its checklist. Messages
// without a checklist go to everyone.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if !c.wants(msg) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.dropped++
			h.logger.Warn("client buffer full, dropping message", "type", msg.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many messages were discarded for slow clients.
func (h *Hub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}
