package handler

import (
	"net/http"

	"kizuki-server/internal/middleware"
	"kizuki-server/internal/session"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	CookieName     string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Memo      *MemoHandler
	Case      *CaseHandler
	WebSocket *WebSocketHandler
}

func NewRouter(cfg RouterConfig, h Handlers, gate session.Gate, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.AllowedMethods, cfg.AllowedHeaders))
	r.Use(middleware.SessionMiddleware(cfg.CookieName))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", h.Auth.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", h.Auth.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", h.Auth.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", h.Auth.Logout).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/session", h.Auth.Session).Methods("GET", "OPTIONS")

	// Memo and case services check the session themselves so that "empty"
	// can be reported before "unauthorized".
	api.HandleFunc("/memos", h.Memo.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/memos", h.Memo.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/memos/{id}", h.Memo.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/memos/{id}/case", h.Case.GetOrCreate).Methods("POST", "OPTIONS")
	api.HandleFunc("/cases/{id}", h.Case.Update).Methods("PUT", "OPTIONS")

	protected := api.PathPrefix("/users").Subrouter()
	protected.Use(middleware.RequireSession(gate))

	protected.HandleFunc("/me", h.User.GetMe).Methods("GET", "OPTIONS")
	protected.HandleFunc("/me", h.User.UpdateMe).Methods("PUT", "OPTIONS")

	if h.WebSocket != nil {
		r.HandleFunc("/ws", h.WebSocket.HandleConnection)
	}

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"kizuki-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"Kizuki API","version":"1.0.0","endpoints":{"/api/v1/auth/login":"POST","/api/v1/memos":"GET, POST","/api/v1/memos/{id}/case":"POST","/api/v1/cases/{id}":"PUT","/ws":"GET (token)"}}`))
}
