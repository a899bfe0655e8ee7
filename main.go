package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"flightdeck/config"
	"flightdeck/database"
	"flightdeck/handlers"
	"flightdeck/services"
	"flightdeck/store"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	amadeus := services.NewAmadeusClient(cfg.AmadeusClientID, cfg.AmadeusClientSecret, cfg.AmadeusBaseURL)
	amadeus.Warm(ctx)
	flights := services.NewFlightService(amadeus)

	ai := services.NewAIClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL, cfg.SiteURL)

	registry := store.NewRegistry(func() *store.Store {
		return store.New(flights, flights)
	}, cfg.SessionIdle)
	go registry.Run(ctx, time.Minute)

	opts := handlers.Options{
		Sessions:  registry,
		Flights:   flights,
		Locations: flights,
		Assistant: ai,
	}

	// Search history is optional; the API runs without a database.
	if cfg.DatabaseEnabled() {
		db, err := database.Open(ctx, cfg)
		if err != nil {
			log.Printf("⚠️  Search history disabled: %v", err)
		} else {
			defer db.Close()
			opts.History = db
		}
	}

	router := setupRouter(cfg, handlers.New(opts))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 FlightDeck backend starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

func setupRouter(cfg *config.Config, h *handlers.Handler) *gin.Engine {
	if cfg.GinMode == "release" || os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// Trusted proxies (the API sits behind a proxy in deployment)
	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURLs,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	limiter := handlers.NewRateLimiter(cfg.LookupRate, cfg.LookupBurst)
	h.Register(r.Group("/api"), limiter.Middleware())

	return r
}
