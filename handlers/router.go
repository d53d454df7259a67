package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterConfig holds what NewRouter wires together.
type RouterConfig struct {
	Data           *DataHandler
	Auth           *AuthHandler
	Middleware     *AuthMiddleware
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the HTTP surface: action endpoints, the tree read, token
// verification and the invalidation websocket.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()
	r.Use(AccessLog(logger))

	r.HandleFunc("/api/auth/verify", cfg.Auth.VerifyToken).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(cfg.Middleware.Auth)
	api.HandleFunc("/tree", cfg.Data.GetTree).Methods(http.MethodGet)
	api.HandleFunc("/actions", cfg.Data.ApplyAction).Methods(http.MethodPost)
	api.HandleFunc("/actions/batch", cfg.Data.ApplyBatch).Methods(http.MethodPost)
	api.HandleFunc("/ws", cfg.Data.HandleWebSocket).Methods(http.MethodGet)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
