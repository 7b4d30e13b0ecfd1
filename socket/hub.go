package socket

import (
	"encoding/json"
	"sync"

	"coedit/internal/gateway"
	"coedit/pkg/logger"
)

// Hub owns the live websocket connections. It implements the gateway's
// Transport capability; all protocol logic lives in the gateway, the hub
// only moves frames.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu      sync.Mutex
	clients map[string]*Client
	gateway *gateway.Gateway
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[string]*Client),
	}
}

// Bind wires the gateway in after construction; the gateway needs the
// hub as its transport, so the two cannot be built in one step.
func (h *Hub) Bind(gw *gateway.Gateway) {
	h.gateway = gw
}

// Run is the hub's main loop: connection lifecycle only. Inbound events
// are dispatched straight from each client's readPump so documents can
// make progress in parallel.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			logger.Sugar.Infof("Client connected: %s", client.ID)
			h.gateway.HandleConnect(client.conn())

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Sugar.Infof("Client disconnected: %s", client.ID)
			h.gateway.HandleDisconnect(client.conn())
		}
	}
}

// Send delivers an event to one connection. A full send buffer means the
// client is lagging; the event is dropped rather than blocking the
// caller (broadcasts are at-most-once to live connections).
func (h *Hub) Send(connID string, event gateway.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling event for %s: %v", connID, err)
		return
	}

	// The lock is held through the channel send so Run cannot close the
	// client's Send channel underneath us. The send never blocks.
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[connID]
	if !ok {
		return
	}

	select {
	case client.Send <- payload:
	default:
		logger.Sugar.Warnf("Client %s's send buffer is full, dropping %s", connID, event.Type)
	}
}

// Broadcast delivers an event to every live connection.
func (h *Hub) Broadcast(event gateway.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling broadcast event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		select {
		case client.Send <- payload:
		default:
			logger.Sugar.Warnf("Client %s's send buffer is full, dropping %s", client.ID, event.Type)
		}
	}
}
