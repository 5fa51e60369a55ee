package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/komyg/rm-shop-v2/internal/cache"
	h "github.com/komyg/rm-shop-v2/internal/http"
	"github.com/komyg/rm-shop-v2/internal/resolver"
	"github.com/komyg/rm-shop-v2/internal/source"
	"github.com/komyg/rm-shop-v2/internal/store"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	CharacterAPIURL string
	SeedPages       int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	SourceTimeout   time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		CharacterAPIURL: getEnv("CHARACTER_API_URL", "https://rickandmortyapi.com/api"),
		SeedPages:       1,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		SourceTimeout:   10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {

	cfg := loadConfig()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	memStore := store.NewMemoryStore()
	snapshotCache := cache.NewRedisCache(redisClient)
	sourceClient := source.NewClient(cfg.CharacterAPIURL, cfg.SourceTimeout)

	// Each process run is one shopping session.
	sessionID := uuid.New().String()
	res := resolver.New(memStore, snapshotCache, sourceClient, sessionID)

	if err := seedCatalog(memStore, sourceClient, cfg); err != nil {
		// A cold catalog is fine, characters load on first lookup.
		log.Printf("catalog seed failed: %v", err)
	}

	shopHandler := h.NewShopHandler(res, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/characters", func(r chi.Router) {
			r.Get("/", shopHandler.ListCharacters)
			r.Get("/{character_id}", shopHandler.GetCharacter)
			r.Post("/{character_id}/increase", shopHandler.IncreaseChosenQuantity)
			r.Post("/{character_id}/decrease", shopHandler.DecreaseChosenQuantity)
		})
		r.Get("/cart", shopHandler.GetCart)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("figure shop starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

// seedCatalog loads the first pages of the external catalog into the store so
// the shop starts with something to sell.
func seedCatalog(st store.Store, client *source.Client, cfg *Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.SourceTimeout)
	defer cancel()

	for page := 1; page <= cfg.SeedPages; page++ {
		chars, err := client.FetchPage(ctx, page)
		if err != nil {
			return err
		}
		for i := range chars {
			if errPut := st.PutCharacter(ctx, &chars[i]); errPut != nil {
				return errPut
			}
		}
	}
	return nil
}
