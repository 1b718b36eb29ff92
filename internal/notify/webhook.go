// Copyright (c) 2026 TRV Enterprises LLC
// SPDX-License-Identifier: Apache-2.0
// See LICENSE file for details.

// Package notify provides best-effort webhook delivery of triggered alerts.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tviviano/mood-sentinel/internal/logger"
	"github.com/tviviano/mood-sentinel/internal/metrics"
	"github.com/tviviano/mood-sentinel/pkg/model"
)

// WebhookConfig holds configuration for a webhook endpoint.
type WebhookConfig struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// Webhook posts triggered alerts to a remote endpoint. Delivery is
// best-effort: alerts are queued and dropped when the queue is full.
type Webhook struct {
	config WebhookConfig
	client *http.Client
	log    zerolog.Logger

	// Queue for async sends
	queue chan model.TriggeredAlert
	wg    sync.WaitGroup

	stopCh chan struct{}
}

// NewWebhook creates a new webhook notifier.
func NewWebhook(config WebhookConfig) *Webhook {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Webhook{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		log:    logger.WithComponent("webhook"),
		queue:  make(chan model.TriggeredAlert, 100), // Buffer up to 100 alerts
		stopCh: make(chan struct{}),
	}
}

// Start starts the async webhook sender goroutine.
func (w *Webhook) Start() {
	w.wg.Add(1)
	go w.runLoop()
}

// Stop stops the webhook sender and drains pending sends.
func (w *Webhook) Stop() {
	close(w.stopCh)
	w.wg.Wait()
}

// Send queues an alert for async delivery.
// Non-blocking: drops if queue is full.
func (w *Webhook) Send(alert model.TriggeredAlert) bool {
	select {
	case w.queue <- alert:
		return true
	default:
		metrics.WebhookSendsTotal.WithLabelValues("dropped").Inc()
		w.log.Warn().Str("rule", alert.RuleName).Msg("webhook queue full, dropping alert")
		return false
	}
}

// SendSync sends an alert synchronously.
func (w *Webhook) SendSync(ctx context.Context, alert model.TriggeredAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// runLoop processes the alert queue.
func (w *Webhook) runLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			// Drain remaining alerts with timeout
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.drainQueue(ctx)
			cancel()
			return
		case alert := <-w.queue:
			w.deliver(alert)
		}
	}
}

func (w *Webhook) deliver(alert model.TriggeredAlert) {
	ctx, cancel := context.WithTimeout(context.Background(), w.config.Timeout)
	defer cancel()

	if err := w.SendSync(ctx, alert); err != nil {
		metrics.WebhookSendsTotal.WithLabelValues("failed").Inc()
		w.log.Warn().Str("rule", alert.RuleName).Err(err).Msg("webhook send failed")
		return
	}
	metrics.WebhookSendsTotal.WithLabelValues("success").Inc()
}

// drainQueue sends remaining queued alerts.
func (w *Webhook) drainQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case alert, ok := <-w.queue:
			if !ok {
				return
			}
			if err := w.SendSync(ctx, alert); err != nil {
				metrics.WebhookSendsTotal.WithLabelValues("failed").Inc()
				w.log.Warn().Str("rule", alert.RuleName).Err(err).Msg("webhook drain failed")
			} else {
				metrics.WebhookSendsTotal.WithLabelValues("success").Inc()
			}
		default:
			return
		}
	}
}
