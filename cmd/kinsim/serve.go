package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/strandkinetics/kinetics/emit"
	"github.com/dshills/strandkinetics/kinetics/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true // local monitoring dashboard
	},
}

// wsHub maintains the set of connected websocket clients and broadcasts
// emitted events to all of them.
type wsHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mu        sync.Mutex
}

func newWSHub() *wsHub {
	return &wsHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 256),
	}
}

func (h *wsHub) run() {
	for message := range h.broadcast {
		h.mu.Lock()
		for client := range h.clients {
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mu.Unlock()
	}
}

func (h *wsHub) subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Read loop exists only to notice disconnects; the stream is push-only.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// hubEmitter adapts wsHub to emit.Emitter so it can sit in the run's
// emitter chain: every event is broadcast, JSON-encoded, to all connected
// stream clients.
type hubEmitter struct {
	hub *wsHub
}

func (h hubEmitter) Emit(event emit.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case h.hub.broadcast <- data:
	default:
		// A full broadcast buffer must never stall the dispatcher.
	}
}

func (h hubEmitter) EmitBatch(_ context.Context, events []emit.Event) error {
	for _, e := range events {
		h.Emit(e)
	}
	return nil
}

func (h hubEmitter) Flush(context.Context) error { return nil }

// runStatus is the live-status payload served by GET /runs/:id.
type runStatus struct {
	RunID        string `json:"run_id"`
	State        string `json:"state"`
	EnsembleSize int    `json:"ensemble_size"`
}

// newMonitorServer builds the gin router for the monitoring surface: live
// run status, persisted trajectory rows, a websocket event stream, and
// Prometheus metrics.
func newMonitorServer(st store.Store, buffered *emit.BufferedEmitter, registry *prometheus.Registry, hub *wsHub, status func() runStatus) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/runs/:id", func(c *gin.Context) {
		id := c.Param("id")
		cur := status()
		if cur.RunID == id {
			c.JSON(http.StatusOK, cur)
			return
		}
		outcome, err := st.LoadOutcome(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, outcome)
	})

	r.GET("/runs/:id/trajectory", func(c *gin.Context) {
		rows, err := st.Trajectory(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rows)
	})

	r.GET("/runs/:id/events", func(c *gin.Context) {
		c.JSON(http.StatusOK, buffered.History(c.Param("id")))
	})

	r.GET("/runs/:id/stream", hub.subscribe)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}
