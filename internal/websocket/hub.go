package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"cybot-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cybot_ws_events"

// Hub tracks live chat connections by session and fans out server pushes,
// across instances when Redis is configured.
type Hub struct {
	// SessionID -> connections (several tabs may share a session)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

// NewHub accepts a nil Redis client for single-instance deployments.
func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("WS", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.SessionID]
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info("WS", "Session has no live connections", map[string]interface{}{"session_id": client.SessionID})
	}
}

// Connected reports how many connections a session has on this instance.
func (h *Hub) Connected(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func encode(kind string, data interface{}) []byte {
	b, _ := json.Marshal(map[string]interface{}{"type": kind, "data": data})
	return b
}

// NotifySession pushes a message to every connection of one session.
func (h *Hub) NotifySession(sessionID string, kind string, data map[string]interface{}) {
	msg := encode(kind, data)
	h.deliverLocal(sessionID, msg)
	h.publish(sessionID, msg)
}

// Broadcast pushes a message to every connection.
func (h *Hub) Broadcast(kind string, data map[string]interface{}) {
	msg := encode(kind, data)
	h.deliverLocal("*", msg)
	h.publish("*", msg)
}

func (h *Hub) deliverLocal(target string, msg []byte) {
	h.mu.RLock()
	var targets []*Client
	if target == "*" {
		for _, clients := range h.clients {
			targets = append(targets, clients...)
		}
	} else {
		targets = append(targets, h.clients[target]...)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.trySend(msg) {
			h.logger.Warn("WS", "Client send buffer full, dropping message", map[string]interface{}{"session_id": client.SessionID})
		}
	}
}

type clusterMessage struct {
	Target  string          `json:"target"`
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

var instanceID = newInstanceID()

func (h *Hub) publish(target string, msg []byte) {
	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(clusterMessage{Target: target, Origin: instanceID, Message: msg})
	if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
		h.logger.Warn("WS", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("WS", "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == instanceID {
				continue
			}
			h.deliverLocal(payload.Target, payload.Message)
		}
	}
}
