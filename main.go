package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"url-shortener-service/config"
	"url-shortener-service/db"
	"url-shortener-service/generator"
	"url-shortener-service/handlers"
	"url-shortener-service/issuer"
	"url-shortener-service/middleware"
	"url-shortener-service/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pgDB, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgDB.Close()
	log.Println("Connected to PostgreSQL")

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := pgDB.Migrate(migrateCtx); err != nil {
		migrateCancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	migrateCancel()

	redisDB, err := db.NewRedisDB(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisDB.Close()
	log.Println("Connected to Redis")

	isgd := issuer.NewISGdClient(cfg.IssuerURL, cfg.IssuerTimeout)
	gen, err := generator.New(cfg, pgDB, isgd)
	if err != nil {
		log.Fatalf("Failed to build code generator: %v", err)
	}

	handlers.PrePopulateL1Cache(pgDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workersDone := make(chan struct{})
	go func() {
		workers.StartWorkers(ctx, pgDB)
		close(workersDone)
	}()

	mux := http.NewServeMux()

	rateLimited := func(h http.Handler) http.Handler {
		return middleware.Chain(h,
			middleware.RateLimit(redisDB, 100, time.Minute),
			middleware.Logger,
		)
	}

	createHandler := rateLimited(handlers.CreateShortURL(pgDB, gen, cfg.BaseURL))
	listHandler := rateLimited(handlers.ListURLs(pgDB))
	historyHandler := rateLimited(handlers.GetClickHistory(pgDB))
	statsHandler := rateLimited(handlers.GetURLStats(pgDB))
	trackHandler := middleware.Chain(handlers.TrackClick(pgDB), middleware.Logger)

	apiRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api")
		if path == "" {
			path = "/"
		}

		switch {
		case r.Method == http.MethodPost && path == "/shorten":
			createHandler.ServeHTTP(w, r)
		case r.Method == http.MethodGet && path == "/urls":
			listHandler.ServeHTTP(w, r)
		case r.Method == http.MethodGet && strings.HasPrefix(path, "/urls/") && strings.HasSuffix(path, "/clicks"):
			historyHandler.ServeHTTP(w, r)
		case r.Method == http.MethodGet && strings.HasPrefix(path, "/urls/") && strings.HasSuffix(path, "/stats"):
			statsHandler.ServeHTTP(w, r)
		case r.Method == http.MethodPost && strings.HasPrefix(path, "/track/"):
			trackHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	mux.Handle("/api/", middleware.CORS(cfg.FrontendURL)(apiRouter))
	mux.Handle("/health", handlers.Health())
	mux.Handle("/ready", handlers.Readiness(pgDB, redisDB))

	// Redirects skip all middleware; most traffic lands here.
	redirectHandler := handlers.HandleRedirect(pgDB, redisDB)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if !strings.HasPrefix(path, "/api") && path != "/health" && path != "/ready" {
			if r.Method == http.MethodGet && len(path) > 1 {
				redirectHandler(w, r)
				return
			}
		}
		mux.ServeHTTP(w, r)
	})

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server starting on port %s (strategy: %s)", cfg.Port, cfg.Strategy)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Stop workers after the server so in-flight clicks still queue,
	// then wait for the drain flush.
	cancel()
	select {
	case <-workersDone:
	case <-time.After(15 * time.Second):
		log.Println("Timed out waiting for click workers")
	}

	log.Println("Server stopped")
}
