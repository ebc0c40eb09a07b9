package websocket

import (
	"encoding/json"
	"sync"
)

// StatsUpdate is pushed to a user's open dashboards whenever their live weekly
// aggregate changes. Amounts are formatted major-unit strings.
type StatsUpdate struct {
	WeekStart       string `json:"week_start"`
	TotalGbp        string `json:"total_gbp"`
	TotalEur        string `json:"total_eur"`
	TotalUsd        string `json:"total_usd"`
	DurationMinutes int    `json:"duration_minutes"`
	EntryCount      int    `json:"entry_count"`
	DaysWorked      int    `json:"days_worked"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// BroadcastStats never blocks; a client with a full send buffer misses the
// update and catches up on its next read of /stats/weekly.
func (h *Hub) BroadcastStats(userID string, update StatsUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
