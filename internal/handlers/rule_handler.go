// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

// Package handlers contains the HTTP handlers for the alerting API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tviviano/mood-sentinel/internal/store"
	"github.com/tviviano/mood-sentinel/pkg/model"
)

// RuleHandler handles alert rule configuration endpoints.
type RuleHandler struct {
	rules *store.RuleStore
}

// NewRuleHandler creates a new rule handler.
func NewRuleHandler(rules *store.RuleStore) *RuleHandler {
	return &RuleHandler{rules: rules}
}

// Create handles POST /api/rules
func (h *RuleHandler) Create(c *gin.Context) {
	var rule model.AlertRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.rules.Create(rule)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// List handles GET /api/rules
func (h *RuleHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": h.rules.List()})
}

// Get handles GET /api/rules/:id
func (h *RuleHandler) Get(c *gin.Context) {
	rule, err := h.rules.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// Update handles PUT /api/rules/:id
func (h *RuleHandler) Update(c *gin.Context) {
	var patch model.RulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.rules.Update(c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, store.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/rules/:id
func (h *RuleHandler) Delete(c *gin.Context) {
	if err := h.rules.Delete(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// SetEnabledRequest toggles a rule on or off.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetEnabled handles PUT /api/rules/:id/enabled
func (h *RuleHandler) SetEnabled(c *gin.Context) {
	var req SetEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.rules.SetEnabled(c.Param("id"), req.Enabled)
	if err != nil {
		if errors.Is(err, store.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rule)
}
