package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"seabattle/internal/service"
	"seabattle/internal/transport/rest/handler"
	"seabattle/internal/transport/rest/middleware"
	"seabattle/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	SessionService  *service.SessionService
	FleetService    *service.FleetService
	BattleService   *service.BattleService
	PresenceService *service.PresenceService
	WSHandler       *ws.Handler
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	battleHandler := handler.NewBattleHandler(c.FleetService, c.BattleService)
	presenceHandler := handler.NewPresenceHandler(c.PresenceService, c.SessionService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}/join", sessionHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{code}", sessionHandler.Get).Methods("GET", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/sessions/{code}", c.WSHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Slot routes (require a slot token scoped to the game)
	slotRoutes := v1.NewRoute().Subrouter()
	slotRoutes.Use(authMW.RequireSlot)

	slotRoutes.HandleFunc("/sessions/{code}/fleet", battleHandler.SubmitFleet).Methods("PUT", "OPTIONS")
	slotRoutes.HandleFunc("/sessions/{code}/fleet/{kind}", battleHandler.RetractShip).Methods("DELETE", "OPTIONS")
	slotRoutes.HandleFunc("/sessions/{code}/ready", battleHandler.SetReady).Methods("POST", "OPTIONS")
	slotRoutes.HandleFunc("/sessions/{code}/attack", battleHandler.Attack).Methods("POST", "OPTIONS")
	slotRoutes.HandleFunc("/sessions/{code}/heartbeat", presenceHandler.Heartbeat).Methods("POST", "OPTIONS")
	slotRoutes.HandleFunc("/sessions/{code}/disconnect", presenceHandler.Disconnect).Methods("POST", "OPTIONS")
	slotRoutes.HandleFunc("/sessions/{code}/forfeit", presenceHandler.Forfeit).Methods("POST", "OPTIONS")
	slotRoutes.HandleFunc("/sessions/{code}/presence", presenceHandler.OpponentPresence).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
