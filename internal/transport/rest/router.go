package rest

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"promptbattle/internal/game"
	"promptbattle/internal/repository"
	"promptbattle/internal/service"
	"promptbattle/internal/transport/rest/handler"
	"promptbattle/internal/transport/rest/middleware"
	"promptbattle/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Manager   *game.Manager
	Evaluator *service.EvaluatorService
	Recaps    repository.RecapRepo
	WSHandler *ws.Handler
}

// NewRouter creates the HTTP router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(c.Manager)
	evaluateHandler := handler.NewEvaluateHandler(c.Evaluator)
	recapHandler := handler.NewRecapHandler(c.Recaps)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// The evaluate endpoint calls out to a paid model, so it gets a per-IP
	// budget the game traffic does not need.
	evaluateLimit := middleware.NewRateLimiter(30, time.Minute)

	r.HandleFunc("/", healthHandler.Root).Methods("GET")
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/evaluate-prompt", evaluateLimit.Limit(http.HandlerFunc(evaluateHandler.Evaluate))).Methods("POST", "OPTIONS")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/recaps/{code}", recapHandler.List).Methods("GET", "OPTIONS")

	// WebSocket endpoint for game traffic
	r.HandleFunc("/ws", c.WSHandler.ServeWS).Methods("GET")

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
