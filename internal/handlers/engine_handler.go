// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tviviano/mood-sentinel/internal/rules"
	"github.com/tviviano/mood-sentinel/internal/store"
)

// EngineHandler exposes the global engine switch and evaluator status.
type EngineHandler struct {
	sw   *store.EngineSwitch
	eval *rules.Evaluator
}

// NewEngineHandler creates a new engine handler.
func NewEngineHandler(sw *store.EngineSwitch, eval *rules.Evaluator) *EngineHandler {
	return &EngineHandler{sw: sw, eval: eval}
}

// EngineStatus is the engine state returned by Get.
type EngineStatus struct {
	Enabled         bool    `json:"enabled"`
	TickSeconds     float64 `json:"tick_seconds"`
	CooldownMinutes float64 `json:"cooldown_minutes"`
}

// Get handles GET /api/engine
func (h *EngineHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, EngineStatus{
		Enabled:         h.sw.Enabled(),
		TickSeconds:     h.eval.Interval().Seconds(),
		CooldownMinutes: rules.Cooldown.Minutes(),
	})
}

// SetSwitchRequest flips the engine switch.
type SetSwitchRequest struct {
	Enabled bool `json:"enabled"`
}

// Set handles PUT /api/engine
// Flipping the switch takes effect on the next evaluation tick.
func (h *EngineHandler) Set(c *gin.Context) {
	var req SetSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sw.Set(req.Enabled); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": req.Enabled})
}
