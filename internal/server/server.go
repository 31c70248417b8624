// Package server exposes loaded forecast snapshots over HTTP: the comparison
// chart page, a JSON API, and downloadable chart exports.
package server

import (
	"errors"
	"log"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/PolicyEngine/forecast-sources/internal/config"
	"github.com/PolicyEngine/forecast-sources/internal/fetch"
	"github.com/PolicyEngine/forecast-sources/internal/forecast"
	"github.com/PolicyEngine/forecast-sources/internal/store"
)

// Server is the HTTP server.
type Server struct {
	router  *gin.Engine
	cfg     *config.AppConfig
	store   *store.Store
	fetcher *fetch.Fetcher

	// Snapshot cache. Loading an edition touches the network at most once
	// per process; results also land in the store.
	snapshots   map[string]*forecast.Snapshot
	snapshotsMu sync.RWMutex

	// Export tokens mapping to rendered chart files.
	exports   map[string]string
	exportsMu sync.RWMutex
}

// NewServer builds the server and its routes.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.New(cfg.Data.DBPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.Default(),
		cfg:       cfg,
		store:     st,
		fetcher:   fetch.New(cfg.Data.CacheDir),
		snapshots: make(map[string]*forecast.Snapshot),
		exports:   make(map[string]string),
	}
	s.setupRoutes()
	return s, nil
}

// Run starts the server on addr, blocking.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close releases the store.
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	s.router.GET("/", s.handleChartPage)

	api := s.router.Group("/api")
	{
		api.GET("/editions", s.handleEditions)
		api.GET("/forecasts/:edition", s.handleForecast)
		api.GET("/forecasts/:edition/metrics/:metric", s.handleSeries)
		api.GET("/compare", s.handleCompare)
		api.POST("/export", s.handleExport)
		api.GET("/export/download/:token", s.handleDownloadExport)
	}
}

// snapshot returns the edition's snapshot, loading through the in-memory
// cache, then the store, then the workbook itself.
func (s *Server) snapshot(edition string) (*forecast.Snapshot, error) {
	s.snapshotsMu.RLock()
	snap, ok := s.snapshots[edition]
	s.snapshotsMu.RUnlock()
	if ok {
		return snap, nil
	}

	s.snapshotsMu.Lock()
	defer s.snapshotsMu.Unlock()
	if snap, ok := s.snapshots[edition]; ok {
		return snap, nil
	}

	snap, err := s.store.LoadSnapshot(edition)
	if err != nil {
		if !errors.Is(err, store.ErrNotStored) {
			return nil, err
		}
		snap, err = forecast.LoadWith(s.fetcher, edition)
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveSnapshot(snap); err != nil {
			log.Printf("warning: persist snapshot %s: %v", edition, err)
		}
	}

	s.snapshots[edition] = snap
	return snap, nil
}
