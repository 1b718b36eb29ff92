// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tviviano/mood-sentinel/internal/store"
	"github.com/tviviano/mood-sentinel/pkg/model"
)

// AlertHandler handles triggered alert lifecycle endpoints.
type AlertHandler struct {
	alerts *store.AlertStore
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alerts *store.AlertStore) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// List handles GET /api/alerts
// Query params:
//   - acknowledged: "true" or "false" to filter by acknowledge state
//   - limit: maximum number of alerts to return (newest kept)
func (h *AlertHandler) List(c *gin.Context) {
	alerts := h.alerts.List()

	if ackStr := c.Query("acknowledged"); ackStr != "" {
		ack, err := strconv.ParseBool(ackStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid acknowledged filter"})
			return
		}
		filtered := make([]model.TriggeredAlert, 0, len(alerts))
		for _, a := range alerts {
			if a.Acknowledged == ack {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if limit < len(alerts) {
			alerts = alerts[len(alerts)-limit:]
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// Get handles GET /api/alerts/:id
func (h *AlertHandler) Get(c *gin.Context) {
	alert, err := h.alerts.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alert)
}

// Acknowledge handles POST /api/alerts/:id/ack
// Acknowledging an already acknowledged alert is a no-op.
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	alert, err := h.alerts.Acknowledge(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alert)
}

// Clear handles DELETE /api/alerts
// With ?acknowledged=true only acknowledged alerts are removed.
func (h *AlertHandler) Clear(c *gin.Context) {
	ackOnly := false
	if ackStr := c.Query("acknowledged"); ackStr != "" {
		var err error
		ackOnly, err = strconv.ParseBool(ackStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid acknowledged filter"})
			return
		}
	}

	var removed int
	var err error
	if ackOnly {
		removed, err = h.alerts.ClearAcknowledged()
	} else {
		removed, err = h.alerts.ClearAll()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
