package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/codecollab/internal/config"
	"github.com/thereayou/codecollab/internal/database"
	"github.com/thereayou/codecollab/internal/handlers"
	"github.com/thereayou/codecollab/internal/middleware"
	"github.com/thereayou/codecollab/internal/presence"
	"github.com/thereayou/codecollab/internal/session"
	"github.com/thereayou/codecollab/internal/snippet"
	"github.com/thereayou/codecollab/internal/websocket"
	"github.com/thereayou/codecollab/pkg/auth"
)

const storeConnectTimeout = 15 * time.Second

type Server struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      database.RoomStore
	Sessions   *session.Registry
	Hub        *websocket.Hub
	JWTManager *auth.JWTManager
	Router     *gin.Engine
	HTTP       *http.Server
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	connectCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()
	store, err := database.Open(connectCtx, cfg.StoreOptions(logger))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var jwtMgr *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtMgr = auth.NewJWTManager(cfg.JWTSecret, cfg.IdentityTTL)
	}

	sessions := session.NewRegistry()
	hub := websocket.NewHub(logger)
	coord := presence.NewCoordinator(store, sessions, snippet.Default(),
		presence.WithMaxUsers(cfg.MaxUsersPerRoom),
		presence.WithLogger(logger),
	)
	origins := middleware.NewOriginChecker(cfg.AllowedOrigins)
	events := handlers.NewEventHandler(coord, hub, logger)

	h := routeHandlers{
		ws:       handlers.NewWebSocketHandler(hub, events, origins, logger),
		rooms:    handlers.NewRoomHandler(store, sessions, hub, logger),
		identity: handlers.NewIdentityHandler(jwtMgr, logger),
		health:   handlers.NewHealthHandler(store, sessions, hub),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), middleware.CORS(origins))
	APIEndpoints(router, h, middleware.Identity(jwtMgr, cfg.RequireIdentity))

	return &Server{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Sessions:   sessions,
		Hub:        hub,
		JWTManager: jwtMgr,
		Router:     router,
		HTTP: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run starts the hub and blocks serving HTTP until Shutdown.
func (s *Server) Run() error {
	go s.Hub.Run()

	s.Logger.Info("server starting", "port", s.Config.Port, "store", s.Config.StoreDriver)
	if err := s.HTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then closes live connections and the store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.HTTP.Shutdown(ctx)
	s.Hub.Stop()
	if cerr := s.Store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
