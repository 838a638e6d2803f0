package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/antoniostano/caretrack/internal/config"
	"github.com/antoniostano/caretrack/internal/feed"
	"github.com/antoniostano/caretrack/internal/logx"
	"github.com/antoniostano/caretrack/internal/observability"
	"github.com/antoniostano/caretrack/internal/records"
)

type Server struct {
	cfg      config.Config
	store    records.Store
	feed     *feed.Hub
	metrics  *observability.Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader
	static   http.Handler
}

func New(cfg config.Config, store records.Store, hub *feed.Hub, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		store:   store,
		feed:    hub,
		metrics: metrics,
		logger:  logger,
		static:  newStaticHandler(cfg.StaticDir),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.cors)
	r.Use(logx.HTTPMiddleware(s.logger))
	r.Use(s.recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.handleListClients)
			r.Post("/", s.handleCreateClient)
			r.Get("/earnings-summary", s.handleEarningsSummary)
			r.Get("/{clientId}", s.handleGetClient)
			r.Patch("/{clientId}", s.handleUpdateClient)
			r.Put("/{clientId}", s.handleReplaceClient)
			r.Delete("/{clientId}", s.handleDeleteClient)
			r.Get("/{clientId}/earnings", s.handleClientEarnings)
		})
		r.Get("/sessions", s.handleListSessions)
		r.Post("/sessions", s.handleRecordSession)
		r.Post("/hours", s.handleRecordSession)
		r.Get("/feed", s.handleFeedWS)
	})

	r.Handle("/*", s.static)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		logx.FromContext(r.Context()).Warn("store ping failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "store_unavailable", "Store is not reachable.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondDecodeError reports a body that could not be decoded. Field-level
// problems found while decoding keep their field name.
func respondDecodeError(w http.ResponseWriter, err error) {
	var verr *records.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, "invalid_"+verr.Field, verr.Error())
		return
	}
	if errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", "request body is required")
		return
	}
	respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
}

// respondStoreError maps store failures to a status code. Unexpected errors
// are logged and reported generically.
func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		respondError(w, http.StatusNotFound, "client_not_found", "Client not found")
	case errors.Is(err, records.ErrUnknownClient):
		respondError(w, http.StatusBadRequest, "unknown_client", err.Error())
	case errors.Is(err, records.ErrClientInUse):
		respondError(w, http.StatusConflict, "client_in_use", "Client has recorded sessions and cannot be deleted")
	default:
		logx.FromContext(r.Context()).Error("store operation failed", "op", op, "error", err)
		if s.metrics != nil {
			s.metrics.StoreErrors.WithLabelValues(op).Inc()
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// clientIDParam parses the numeric {clientId} path segment.
func clientIDParam(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "clientId"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) publish(e feed.Event) {
	if s.metrics != nil {
		s.metrics.RecordEvents.WithLabelValues(string(e.Type)).Inc()
	}
	if s.feed != nil {
		s.feed.Publish(e)
	}
}
