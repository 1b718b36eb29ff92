// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tviviano/mood-sentinel/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for WebSocket
	},
}

// WSHandler handles inbound WebSocket subscriptions to the alert feed.
type WSHandler struct {
	hub *ws.Hub
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Alerts handles GET /api/ws/alerts
// Each fired alert is pushed to the client as one JSON text message.
func (h *WSHandler) Alerts(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already sends an error response
		return
	}

	// Blocks until the client disconnects
	h.hub.HandleConn(conn)
}
