// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/aemdev/aemctl/cmd/aemctl/internal/models"
	"github.com/aemdev/aemctl/cmd/aemctl/internal/util"
	"github.com/aemdev/aemctl/pkg/logging"
)

// statusReplaySize caps how many recent status events a freshly
// connected client is caught up with.
const statusReplaySize = 64

// clientBufferSize is the per-client send queue. A client that stalls
// longer than this many events starts losing them rather than blocking
// the broadcast.
const clientBufferSize = 16

// StatusEvent is one instance status transition pushed to socket
// clients.
type StatusEvent struct {
	InstanceID string                `json:"instanceId"`
	Name       string                `json:"name"`
	Status     models.InstanceStatus `json:"status"`
	PID        int                   `json:"pid,omitempty"`
	Time       time.Time             `json:"time"`
}

var upgrader = websocket.Upgrader{
	// The server binds loopback only; origin checks add nothing here.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Hub fans instance status transitions out to WebSocket clients.
//
// # Description
//
// Lifecycle handlers publish a StatusEvent after every start, stop, or
// refresh. Connected clients receive events as JSON; a new client is
// first replayed the recent history so dashboards render current state
// without polling. Slow clients drop events instead of stalling the
// publishers.
//
// # Thread Safety
//
// Safe for concurrent use.
type Hub struct {
	logger  *logging.Logger
	metrics *Metrics

	mu      sync.Mutex
	clients map[chan StatusEvent]struct{}
	replay  *util.RingBuffer[StatusEvent]
	closed  bool
}

// NewHub creates an empty hub. A nil metrics disables instrumentation.
func NewHub(logger *logging.Logger, metrics *Metrics) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger:  logger,
		metrics: metrics,
		clients: make(map[chan StatusEvent]struct{}),
		replay:  util.NewRingBuffer[StatusEvent](statusReplaySize),
	}
}

// PublishInstanceStatus broadcasts an instance's current status.
func (h *Hub) PublishInstanceStatus(inst models.Instance) {
	h.Publish(StatusEvent{
		InstanceID: inst.ID,
		Name:       inst.Name,
		Status:     inst.Status,
		PID:        inst.PID,
		Time:       time.Now(),
	})
}

// Publish records the event in the replay buffer and queues it to
// every connected client. Never blocks.
func (h *Hub) Publish(event StatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.replay.Push(event)
	if h.metrics != nil {
		h.metrics.StatusEventsTotal.Inc()
	}
	for ch := range h.clients {
		select {
		case ch <- event:
		default:
			// Client is stalled; it keeps the connection but loses
			// this event.
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients and rejects future publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	// Clients removed here never pass through unregister (it finds the
	// map already cleared), so the gauge must be decremented now.
	for ch := range h.clients {
		close(ch)
		if h.metrics != nil {
			h.metrics.WSClients.Dec()
		}
	}
	h.clients = make(map[chan StatusEvent]struct{})
}

// HandleStatusSocket handles GET /ws/status.
//
// Description:
//
//	Upgrades the connection, replays recent status events, then
//	streams live transitions until the client disconnects. Inbound
//	messages are read and discarded; the socket is one-way.
func (h *Hub) HandleStatusSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err.Error())
		return
	}
	defer ws.Close()

	ch, backlog := h.register()
	if ch == nil {
		return // hub already closed
	}
	defer h.unregister(ch)
	h.logger.Info("status socket client connected")

	for _, event := range backlog {
		if err := ws.WriteJSON(event); err != nil {
			h.logger.Warn("status socket replay write failed", "error", err.Error())
			return
		}
	}

	// Reader goroutine exists only to notice the client going away.
	done := make(chan struct{})
	util.SafeGo(func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}, func(info util.PanicInfo) {
		h.logger.Error("status socket reader panicked", "error", info.Error())
	})

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return // hub closed
			}
			if err := ws.WriteJSON(event); err != nil {
				h.logger.Info("status socket client disconnected", "error", err.Error())
				return
			}
		case <-done:
			h.logger.Info("status socket client disconnected")
			return
		}
	}
}

// register adds a client and returns its channel plus the replay
// backlog captured under the same lock, so no event is missed between
// replay and live streaming.
func (h *Hub) register() (chan StatusEvent, []StatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, nil
	}
	ch := make(chan StatusEvent, clientBufferSize)
	h.clients[ch] = struct{}{}
	if h.metrics != nil {
		h.metrics.WSClients.Inc()
	}
	return ch, h.replay.ToSlice()
}

func (h *Hub) unregister(ch chan StatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; !ok {
		return
	}
	delete(h.clients, ch)
	if h.metrics != nil {
		h.metrics.WSClients.Dec()
	}
}
