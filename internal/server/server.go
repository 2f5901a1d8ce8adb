// file: internal/server/server.go
// version: 1.3.0
// guid: 9a0b1c2d-3e4f-5a6b-7c8d-9e0f1a2b3c4d

// Package server exposes the parse pipeline and stored library over a
// small JSON API. It is a transport surface only; rendering is left to
// whatever consumes the JSON.
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cratestats/cratestats/internal/config"
	"github.com/cratestats/cratestats/internal/metrics"
	"github.com/cratestats/cratestats/internal/stats"
	"github.com/cratestats/cratestats/internal/store"
	"github.com/cratestats/cratestats/internal/worker"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// GetDefaultServerConfig returns sensible local-use defaults
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "localhost",
		Port:         "8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wires the parse runner, the library store and the HTTP routes
type Server struct {
	router *gin.Engine
	store  *store.LibraryStore
	runner *worker.Runner

	mu          sync.RWMutex
	subscribers map[int]chan worker.Message
	nextSubID   int
}

// NewServer creates a Server backed by the given store
func NewServer(st *store.LibraryStore) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:      gin.New(),
		store:       st,
		runner:      worker.NewRunner(),
		subscribers: make(map[int]chan worker.Message),
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

// Start runs the HTTP server until the context is canceled
func (s *Server) Start(ctx context.Context, cfg ServerConfig) error {
	metrics.Register()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("API listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.POST("/parse", s.startParse)
		api.GET("/parse/events", s.parseEvents)
		api.GET("/library", s.getLibrary)
		api.GET("/stats", s.getStats)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	status := "ok"
	exists, err := s.store.Exists()
	if err != nil {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"library":   exists,
		"parsing":   s.runner.Running(),
	})
}

// parseBody accepts a JSON body naming an export path on the server host
type parseBody struct {
	Path string `json:"path"`
}

func (s *Server) startParse(c *gin.Context) {
	var req worker.ParseRequest

	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
			return
		}
		req.Data = data
	} else {
		var body parseBody
		if err := c.ShouldBindJSON(&body); err != nil || body.Path == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expected multipart file or {\"path\": ...}"})
			return
		}
		req.Path = body.Path
	}

	msgs, err := s.runner.Start(context.Background(), req)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	go s.consume(msgs)
	c.JSON(http.StatusAccepted, gin.H{"status": "parsing"})
}

// consume relays job messages to SSE subscribers and persists the result
func (s *Server) consume(msgs <-chan worker.Message) {
	for msg := range msgs {
		if msg.Type == worker.MessageCompleted && msg.Library != nil {
			if err := s.store.Save(msg.Library); err != nil {
				log.Printf("failed to persist parsed library: %v", err)
				msg = worker.Message{Type: worker.MessageFailed, Error: err.Error()}
			}
		}
		s.broadcast(msg)
	}
}

func (s *Server) broadcast(msg worker.Message) {
	// Strip the full library from fan-out; subscribers fetch it from the
	// library endpoint once they see the completed message.
	if msg.Type == worker.MessageCompleted {
		msg.Library = nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (s *Server) subscribe() (int, chan worker.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	ch := make(chan worker.Message, 32)
	s.subscribers[id] = ch
	return id, ch
}

func (s *Server) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, id)
}

func (s *Server) parseEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	id, ch := s.subscribe()
	defer s.unsubscribe(id)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case msg := <-ch:
			c.SSEvent("message", msg)
			c.Writer.Flush()
			if msg.Type != worker.MessageProgress {
				return
			}
		case <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"timestamp": time.Now().Unix()})
			c.Writer.Flush()
		}
	}
}

func (s *Server) getLibrary(c *gin.Context) {
	lib, err := s.store.Load()
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "no library imported yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lib)
}

func (s *Server) getStats(c *gin.Context) {
	lib, err := s.store.Load()
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "no library imported yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result := stats.Compute(*lib)
	if size := config.AppConfig.BPMBucketSize; size != stats.DefaultBPMBucketSize {
		result.BPMDistribution = stats.BPMDistribution(lib.Tracks, size)
	}
	c.JSON(http.StatusOK, result)
}
