package services

import (
	"encoding/json"
	"sync"

	"github.com/abhishek02004/MAD-Project/models"

	"github.com/gorilla/websocket"
)

// MealEvent is pushed to every open connection of the owning user whenever a
// meal changes, so other devices can refresh without polling.
type MealEvent struct {
	Event  string       `json:"event"` // created|updated|deleted
	Meal   *models.Meal `json:"meal,omitempty"`
	MealID string       `json:"meal_id,omitempty"`
}

type WSClient struct {
	UserID uint
	Conn   *websocket.Conn
}

type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[uint]map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// BroadcastMealEvent is fire-and-forget; a failed write just means that
// connection is dead and will be reaped by its read loop.
func (h *RealtimeHub) BroadcastMealEvent(userID uint, ev MealEvent) {
	msg, _ := json.Marshal(ev)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
	}
}
