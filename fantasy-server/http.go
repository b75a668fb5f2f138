package main

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/fantasylab/fantasy-lab/internal/category"
	"github.com/fantasylab/fantasy-lab/internal/model"
)

type routerConfig struct {
	MCPPath        string
	APIKey         string
	AuthHeader     string
	AllowedOrigins []string
	Timeout        time.Duration
}

// ErrorResponse is the body of every non-2xx REST reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

func newRouter(cfg routerConfig, a *app, mcpHandler http.Handler, registry []toolInfo) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(a.log))
	r.Use(middleware.Recoverer)
	if cfg.Timeout > 0 {
		r.Use(middleware.Timeout(cfg.Timeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", cfg.AuthHeader, "Mcp-Session-Id"},
		ExposedHeaders: []string{"X-Request-ID", "Mcp-Session-Id"},
		MaxAge:         300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(withAuth(cfg.APIKey, cfg.AuthHeader))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, version := a.holder.Current()
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "dataset_version": version})
		})
		r.Get("/tools", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"tools": registry})
		})
		r.Handle(cfg.MCPPath, mcpHandler)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/categories", a.handleCategories)
			r.Get("/league-averages", a.handleLeagueAverages)
			r.Get("/rankings", a.handleRankings)
			r.Post("/team", a.handleTeam)
			r.Get("/players/{id}", a.handlePlayer)
		})
	})
	return r
}

// withAuth accepts the key from authHeader or an Authorization bearer token.
// An empty apiKey disables the check.
func withAuth(apiKey, authHeader string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			key := strings.TrimSpace(r.Header.Get(authHeader))
			if key == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					key = strings.TrimSpace(authz[7:])
				}
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				writeError(w, http.StatusUnauthorized, fmt.Errorf("missing or invalid API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"elapsed":    time.Since(start),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}

func (a *app) handleCategories(w http.ResponseWriter, r *http.Request) {
	a.writeResult(w, r)(a.categories())
}

func (a *app) handleLeagueAverages(w http.ResponseWriter, r *http.Request) {
	a.writeResult(w, r)(a.leagueAverages())
}

// GET /api/v1/rankings?punt=to,fg_pct&limit=50
func (a *app) handleRankings(w http.ResponseWriter, r *http.Request) {
	punts, err := category.ParsePuntList(r.URL.Query().Get("punt"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", s))
			return
		}
	}
	a.writeResult(w, r)(a.rankings(r.Context(), punts, limit))
}

// POST /api/v1/team {"punt": [...], "roster": [...], "preview_id": "..."}
func (a *app) handleTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	a.writeResult(w, r)(a.team(req))
}

// GET /api/v1/players/{id}?punt=...
func (a *app) handlePlayer(w http.ResponseWriter, r *http.Request) {
	punts, err := category.ParsePuntList(r.URL.Query().Get("punt"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id := model.PlayerID(chi.URLParam(r, "id"))
	a.writeResult(w, r)(a.player(id, punts))
}

// writeResult maps an app result onto the response; errors go through
// statusFor.
func (a *app) writeResult(w http.ResponseWriter, r *http.Request) func([]byte, error) {
	return func(b []byte, err error) {
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				a.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
			}
			writeError(w, status, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func statusFor(err error) int {
	switch {
	case isClientError(err):
		return http.StatusBadRequest
	case isNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}
