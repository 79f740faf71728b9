// Package server exposes the simulation over HTTP and a WebSocket snapshot stream
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/parksim/config"
	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/engine"
	"github.com/lixenwraith/parksim/status"
)

// Server wires the gin router to a scheduler
type Server struct {
	sched    *engine.ClockScheduler
	registry *status.Registry
	hub      *Hub
	router   *gin.Engine
	log      *logrus.Entry
	httpSrv  *http.Server
	upgrader websocket.Upgrader
}

// New builds the router and registers the hub as a scheduler sink
func New(sched *engine.ClockScheduler, reg *status.Registry, cfg config.Server, log *logrus.Entry) *Server {
	s := &Server{
		sched:    sched,
		registry: reg,
		hub:      NewHub(log.WithField("component", "ws")),
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	sched.AddSink(s.hub)
	core.Go(s.hub.Run)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"*"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	api.GET("/state", s.handleState)
	api.GET("/metrics", s.handleMetrics)
	api.GET("/grid", s.handleGetGrid)
	api.PUT("/grid", s.handlePutGrid)
	api.GET("/config", s.handleGetConfig)
	api.PUT("/config", s.handlePutConfig)
	api.POST("/step", s.handleStep)
	api.POST("/reset", s.handleReset)
	api.GET("/route", s.handleRoute)
	api.GET("/distance", s.handleDistance)

	r.GET("/ws", s.handleWS)

	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start listens on addr in the background
func (s *Server) Start(addr string) {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	core.Go(func() {
		s.log.WithField("addr", addr).Info("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("http server failed")
		}
	})
}

// Shutdown stops the listener and disconnects stream clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// requestLogger logs each request at debug level
func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("http request")
	}
}
