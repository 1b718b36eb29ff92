// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tviviano/mood-sentinel/internal/metrics"
	"github.com/tviviano/mood-sentinel/internal/source"
	"github.com/tviviano/mood-sentinel/internal/stats"
	"github.com/tviviano/mood-sentinel/pkg/model"
)

// EntryHandler handles scored entry ingest and window queries.
type EntryHandler struct {
	src *source.MemorySource
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(src *source.MemorySource) *EntryHandler {
	return &EntryHandler{src: src}
}

// Ingest handles POST /api/entries
// The body is one ScoredEntry; a missing timestamp defaults to now.
func (h *EntryHandler) Ingest(c *gin.Context) {
	var entry model.ScoredEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		metrics.EntriesIngestedTotal.WithLabelValues("http", "rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.src.Append(entry); err != nil {
		metrics.EntriesIngestedTotal.WithLabelValues("http", "rejected").Inc()
		if errors.Is(err, source.ErrOutOfOrder) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.EntriesIngestedTotal.WithLabelValues("http", "accepted").Inc()
	c.JSON(http.StatusCreated, gin.H{"buffered": h.src.Len()})
}

// Newest handles GET /api/entries/newest
// Supports ?since=15m (default 1h).
func (h *EntryHandler) Newest(c *gin.Context) {
	since := time.Hour
	if sinceStr := c.Query("since"); sinceStr != "" {
		d, err := ParseDuration(sinceStr)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since duration"})
			return
		}
		since = d
	}

	entries := h.src.Since(time.Now().Add(-since))
	c.JSON(http.StatusOK, gin.H{
		"count":   len(entries),
		"entries": entries,
	})
}

// Stats handles GET /api/entries/stats
// Returns per-dimension aggregates over the window. Supports ?since=15m
// (default 1h).
func (h *EntryHandler) Stats(c *gin.Context) {
	since := time.Hour
	if sinceStr := c.Query("since"); sinceStr != "" {
		d, err := ParseDuration(sinceStr)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since duration"})
			return
		}
		since = d
	}

	entries := h.src.Since(time.Now().Add(-since))
	c.JSON(http.StatusOK, stats.Summarize(entries))
}
