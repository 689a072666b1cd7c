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

	"livinglibrary/api/internal/app"
	"livinglibrary/api/internal/authpw"
	"livinglibrary/api/internal/avatar"
	"livinglibrary/api/internal/config"
	"livinglibrary/api/internal/genai"
	"livinglibrary/api/internal/mirror"
	"livinglibrary/api/internal/revisions"
	"livinglibrary/api/internal/search"
	"livinglibrary/api/internal/session"
	"livinglibrary/api/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	if err := os.MkdirAll(cfg.StoriesDir, 0o755); err != nil {
		log.Fatalf("failed to create stories dir: %v", err)
	}

	dataStore := store.NewPostgresStore(db)
	revisionService := revisions.New(cfg.StoriesDir)

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, dataStore)

	deps := app.Deps{
		Store:     dataStore,
		Sessions:  dataStore,
		AuthPW:    authpw.NewService(dataStore),
		Search:    searchService,
		Revisions: revisionService,
	}

	// Redis is optional; refresh tokens fall back to PostgreSQL.
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for refresh token storage")
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		deps.Sessions = redisStore
	} else {
		log.Printf("Using PostgreSQL for refresh token storage")
	}

	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		avatarStore, err := avatar.NewMinioStore(ctx, avatar.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatalf("object storage connection failed: %v", err)
		}
		deps.Avatars = avatarStore
	}

	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		deps.AI = genai.NewClient(cfg.GeminiAPIKey,
			genai.WithBaseURL(cfg.GeminiBaseURL),
			genai.WithModel(cfg.GeminiModel),
		)
	} else {
		log.Printf("WARNING: GEMINI_API_KEY not set, AI routes disabled")
	}

	hub := mirror.NewHub()
	collectionMirror := mirror.New(dataStore, hub)
	if err := collectionMirror.Load(ctx); err != nil {
		log.Fatalf("initial collection load failed: %v", err)
	}
	deps.Mirror = collectionMirror
	deps.Hub = hub

	listener := store.NewChangeListener(cfg.DatabaseURL)
	go listener.Run(ctx)
	go collectionMirror.Run(ctx, listener.Changes())

	service := app.New(cfg, deps)
	searchService.ReindexAll(ctx)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No write timeout: /api/stream holds its response open.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Living Library API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
