package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"seabattle/internal/cache"
	"seabattle/internal/config"
	"seabattle/internal/repository"
	"seabattle/internal/service"
	"seabattle/internal/transport/rest"
	"seabattle/internal/transport/ws"
)

// @title Sea Battle Game Session API
// @version 1.0
// @description Two-player grid battle session engine
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := cfg.RedisAddr
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize store
	sessionRepo, err := repository.NewSessionRepo(ctx, db)
	if err != nil {
		log.Fatal("Failed to initialize session store:", err)
	}

	// Initialize cache and realtime feed
	sessionCache := cache.NewSessionCache(rdb)
	sessionFeed := cache.NewSessionFeed(rdb)

	// Initialize WebSocket hub
	wsHub := ws.NewHub(sessionFeed)
	log.Println("WebSocket hub started")

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	sessionSvc := service.NewSessionService(sessionRepo, sessionCache, sessionFeed, authSvc)
	fleetSvc := service.NewFleetService(sessionRepo, sessionCache, sessionFeed)
	battleSvc := service.NewBattleService(sessionRepo, sessionCache, sessionFeed)
	presenceSvc := service.NewPresenceService(sessionRepo, sessionCache, sessionFeed,
		cfg.HeartbeatEvery, cfg.LivenessWindow, cfg.ForfeitThreshold)
	turnClock := service.NewTurnClock(sessionRepo, battleSvc, cfg.TurnTimeLimit)

	wsHandler := ws.NewHandler(wsHub, authSvc, sessionSvc, presenceSvc, turnClock)

	// Create router with container
	container := &rest.Container{
		AuthService:     authSvc,
		SessionService:  sessionSvc,
		FleetService:    fleetSvc,
		BattleService:   battleSvc,
		PresenceService: presenceSvc,
		WSHandler:       wsHandler,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST   /v1/sessions")
		log.Println("  POST   /v1/sessions/{code}/join")
		log.Println("  GET    /v1/sessions/{code}")
		log.Println("  PUT    /v1/sessions/{code}/fleet")
		log.Println("  DELETE /v1/sessions/{code}/fleet/{kind}")
		log.Println("  POST   /v1/sessions/{code}/ready")
		log.Println("  POST   /v1/sessions/{code}/attack")
		log.Println("  POST   /v1/sessions/{code}/heartbeat")
		log.Println("  POST   /v1/sessions/{code}/disconnect")
		log.Println("  POST   /v1/sessions/{code}/forfeit")
		log.Println("  GET    /v1/sessions/{code}/presence")
		log.Println("  WS     /v1/ws/sessions/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
