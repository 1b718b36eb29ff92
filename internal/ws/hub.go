// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

// Package ws broadcasts triggered alerts to connected WebSocket clients.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/tviviano/mood-sentinel/internal/logger"
	"github.com/tviviano/mood-sentinel/internal/metrics"
	"github.com/tviviano/mood-sentinel/pkg/model"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second

	// clientBuffer is the per-client send queue; slow clients that fall
	// this far behind are disconnected.
	clientBuffer = 32
)

// client is one connected alert subscriber.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans triggered alerts out to connected clients. Clients that cannot
// keep up are dropped rather than blocking the evaluator.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
	log     zerolog.Logger
}

// NewHub creates an empty alert hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     logger.WithComponent("ws"),
	}
}

// Broadcast queues an alert for delivery to every connected client.
func (h *Hub) Broadcast(alert model.TriggeredAlert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal alert for broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// Slow client; writePump closes it once the queue stalls.
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConn serves one client connection, blocking until the client
// disconnects or the hub stops.
func (h *Hub) HandleConn(conn *websocket.Conn) {
	c := &client{
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.WSClients.Inc()

	done := make(chan struct{})
	go h.writePump(c, done)

	// Read loop: clients send nothing meaningful, but reading detects
	// disconnects and processes control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	close(done)
}

// writePump delivers queued alerts and periodic pings to one client.
func (h *Hub) writePump(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// remove unregisters a client and closes its connection.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if ok {
		metrics.WSClients.Dec()
		c.conn.Close()
	}
}

// Stop disconnects all clients and rejects new ones.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
		metrics.WSClients.Dec()
	}
}
