package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	boards "github.com/CodeAndHammer/parludo/internal/boards"
	config "github.com/CodeAndHammer/parludo/internal/config"
	handlers "github.com/CodeAndHammer/parludo/internal/handlers"
	models "github.com/CodeAndHammer/parludo/internal/models"
	scores "github.com/CodeAndHammer/parludo/internal/scores"
	session "github.com/CodeAndHammer/parludo/internal/session"
	util "github.com/CodeAndHammer/parludo/internal/util"
)

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	util.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	util.LogInfo("Starting Parludo in %s mode", cfg.EnvName())

	boardList, err := boards.Load(cfg.BoardsPath)
	if err != nil {
		util.LogFatal("Failed to load boards: %v", err)
	}
	util.LogInfo("Loaded %d boards from %s", len(boardList), cfg.BoardsPath)

	store, err := scores.Open(cfg.ScoresDriver, cfg.ScoresDSN)
	if err != nil {
		util.LogFatal("Failed to open score store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			util.LogError("Failed to close score store: %v", err)
		}
	}()

	app := newApp(cfg, boardList, store)
	router := newRouter(app, cfg.TemplatesDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startCleanupRoutines(ctx, app)

	startServer(app, router, cfg.Port)
	return nil
}

func newApp(cfg *config.Config, boardList []models.Board, store scores.Store) *models.App {
	return &models.App{
		Boards:         boardList,
		BoardIndex:     boards.Index(boardList),
		Plays:          make(map[string]*models.Play),
		LimiterMap:     make(map[string]*models.RateLimiterEntry),
		Scores:         store,
		IsProduction:   cfg.IsProduction(),
		StartTime:      time.Now(),
		CookieMaxAge:   cfg.CookieMaxAge,
		StaticCacheAge: cfg.StaticCacheAge,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		RateLimiterTTL: cfg.RateLimiterTTL,
		SessionTTL:     cfg.SessionTTL,
		RevealDelay:    cfg.RevealDelay,
		DefaultLimit:   cfg.DefaultTimeLimit,
	}
}

func newRouter(app *models.App, templatesDir string) *gin.Engine {
	router := gin.Default()

	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())

	router.Use(csrfMiddleware(app))
	router.Use(validateCSRFMiddleware())

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		util.LogWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(func(c *gin.Context) {
		applyCacheHeaders(app, c)
	})

	master, err := handlers.LoadTemplates(templatesDir)
	if err != nil {
		util.LogFatal("Failed to load templates: %v", err)
	}
	router.SetHTMLTemplate(master)

	if util.DirExists("static") {
		router.Static("/static", "./static")
	} else {
		util.LogInfo("No static/ directory found, skipping static file route")
	}

	handlers.RegisterRoutes(router, app, rateLimitMiddleware(app))
	return router
}

func applyCacheHeaders(app *models.App, c *gin.Context) {
	if app.IsProduction && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(app.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}

func startCleanupRoutines(ctx context.Context, app *models.App) {
	session.StartSessionCleanup(ctx, app)

	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleanupStaleRateLimiters(app)
			}
		}
	}()

	util.LogInfo("Started cleanup routines for sessions and rate limiters")
}

func startServer(app *models.App, router *gin.Engine, port string) {
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		util.LogInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			util.LogWarn("HTTP server Shutdown: %v", err)
		}
		closePlays(app)
		close(idleConnsClosed)
	}()

	util.LogInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		util.LogFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	util.LogInfo("Server shutdown complete")
}

// closePlays stops every hosted engine so no timers fire after shutdown.
func closePlays(app *models.App) {
	app.SessionMutex.Lock()
	plays := make([]*models.Play, 0, len(app.Plays))
	for id, p := range app.Plays {
		plays = append(plays, p)
		delete(app.Plays, id)
	}
	app.SessionMutex.Unlock()
	for _, p := range plays {
		p.Engine.Close()
	}
}
