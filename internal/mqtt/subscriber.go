// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

// Package mqtt provides an MQTT ingest source for scored entries.
package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/tviviano/mood-sentinel/internal/logger"
	"github.com/tviviano/mood-sentinel/internal/metrics"
	"github.com/tviviano/mood-sentinel/internal/source"
	"github.com/tviviano/mood-sentinel/pkg/model"
)

// SubscriberConfig holds the broker connection settings.
type SubscriberConfig struct {
	BrokerURL string
	Topic     string
	ClientID  string
	Username  string
	Password  string
}

// SubscriberStatus represents the state of the MQTT ingest connection.
type SubscriberStatus struct {
	BrokerURL    string `json:"broker_url"`
	Topic        string `json:"topic"`
	Status       string `json:"status"` // connecting, connected, disconnected
	MessagesRecv int64  `json:"messages_received,omitempty"`
	Errors       int64  `json:"errors,omitempty"`
	LastError    string `json:"last_error,omitempty"`
}

// Subscriber consumes scored entries from an MQTT topic and appends them to
// the in-memory source. Payloads are ScoredEntry JSON; a missing timestamp
// is stamped on arrival.
type Subscriber struct {
	mu     sync.RWMutex
	config SubscriberConfig
	src    *source.MemorySource
	log    zerolog.Logger

	client       mqtt.Client
	status       string
	messagesRecv int64
	errors       int64
	lastError    string

	connLost chan struct{}
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewSubscriber creates a new MQTT subscriber feeding the given source.
func NewSubscriber(config SubscriberConfig, src *source.MemorySource) *Subscriber {
	return &Subscriber{
		config: config,
		src:    src,
		log:    logger.WithComponent("mqtt"),
		status: "disconnected",
		stopCh: make(chan struct{}),
	}
}

// Status returns the current connection status.
func (s *Subscriber) Status() SubscriberStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SubscriberStatus{
		BrokerURL:    s.config.BrokerURL,
		Topic:        s.config.Topic,
		Status:       s.status,
		MessagesRecv: atomic.LoadInt64(&s.messagesRecv),
		Errors:       atomic.LoadInt64(&s.errors),
		LastError:    s.lastError,
	}
}

// Start begins the MQTT connection with auto-reconnect.
func (s *Subscriber) Start() error {
	s.wg.Add(1)
	go s.runLoop()
	return nil
}

// Stop disconnects from the broker.
func (s *Subscriber) Stop() error {
	close(s.stopCh)
	s.wg.Wait()

	s.mu.Lock()
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(1000)
		s.client = nil
	}
	s.status = "disconnected"
	s.mu.Unlock()

	return nil
}

// runLoop is the main connection loop with auto-reconnect.
func (s *Subscriber) runLoop() {
	defer s.wg.Done()

	retryDelay := time.Second
	maxRetryDelay := 60 * time.Second

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		if err := s.connect(); err != nil {
			s.setError(err.Error())

			retryDelay = min(retryDelay*2, maxRetryDelay)

			select {
			case <-s.stopCh:
				return
			case <-time.After(retryDelay):
				continue
			}
		}

		// Reset retry delay on successful connection
		retryDelay = time.Second

		// Messages arrive via the subscription callback; wait here for
		// shutdown or connection loss.
		select {
		case <-s.stopCh:
			return
		case <-s.connLost:
		}

		s.mu.Lock()
		if s.client != nil && s.client.IsConnected() {
			s.client.Disconnect(1000)
		}
		s.client = nil
		s.status = "disconnected"
		s.mu.Unlock()

		select {
		case <-s.stopCh:
			return
		case <-time.After(retryDelay):
		}
	}
}

// connect establishes the MQTT connection and subscribes to the topic.
func (s *Subscriber) connect() error {
	s.mu.Lock()
	s.status = "connecting"
	s.connLost = make(chan struct{})
	connLost := s.connLost
	s.mu.Unlock()

	clientID := s.config.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("sentinel-%d", time.Now().UnixNano())
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.config.BrokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(false) // We handle reconnect ourselves
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetWriteTimeout(10 * time.Second)

	if s.config.Username != "" {
		opts.SetUsername(s.config.Username)
	}
	if s.config.Password != "" {
		opts.SetPassword(s.config.Password)
	}

	var lostOnce sync.Once
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		s.log.Warn().Err(err).Msg("MQTT connection lost")
		s.setError(err.Error())
		lostOnce.Do(func() { close(connLost) })
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}

	sub := client.Subscribe(s.config.Topic, 1, s.handleMessage)
	sub.Wait()
	if sub.Error() != nil {
		client.Disconnect(250)
		return sub.Error()
	}

	s.mu.Lock()
	s.client = client
	s.status = "connected"
	s.lastError = ""
	s.mu.Unlock()

	s.log.Info().Str("broker", s.config.BrokerURL).Str("topic", s.config.Topic).Msg("MQTT connected")

	return nil
}

// handleMessage decodes one scored entry and appends it to the source.
func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var entry model.ScoredEntry
	if err := json.Unmarshal(msg.Payload(), &entry); err != nil {
		atomic.AddInt64(&s.errors, 1)
		metrics.EntriesIngestedTotal.WithLabelValues("mqtt", "rejected").Inc()
		s.log.Warn().Err(err).Msg("invalid entry payload")
		return
	}

	if err := s.src.Append(entry); err != nil {
		atomic.AddInt64(&s.errors, 1)
		metrics.EntriesIngestedTotal.WithLabelValues("mqtt", "rejected").Inc()
		s.log.Warn().Err(err).Msg("entry rejected")
		return
	}

	atomic.AddInt64(&s.messagesRecv, 1)
	metrics.EntriesIngestedTotal.WithLabelValues("mqtt", "accepted").Inc()
}

func (s *Subscriber) setError(msg string) {
	atomic.AddInt64(&s.errors, 1)
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}
