// Package server exposes the sticker handler over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmorgan81/stickerbot/internal/config"
	"github.com/dmorgan81/stickerbot/internal/fault"
	"github.com/dmorgan81/stickerbot/internal/handler"
	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/samber/do"
	"golang.org/x/time/rate"
)

const maxRequestBody = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StickerHandler runs one generation.
type StickerHandler interface {
	Handle(context.Context, handler.Input) (handler.Output, error)
}

func NewRouter(i *do.Injector) (http.Handler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return Router(do.MustInvoke[*slog.Logger](i), do.MustInvoke[*handler.Handler](i), cfg.Server), nil
}

// Router wires the routes. logger is attached to every request context.
func Router(logger *slog.Logger, h StickerHandler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", health)
	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(limit(rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))))
		}
		r.Post("/generate", generate(h))
	})
	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, map[string]string{"status": "healthy", "message": "Backend is running"})
}

func generate(h StickerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input handler.Input
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&input); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", fault.ErrInvalidInput, err))
			return
		}

		out, err := h.Handle(r.Context(), input)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, out)
	}
}

func respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.FromContextOrDiscard(r.Context()).Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	log.FromContextOrDiscard(r.Context()).Log(r.Context(), level, "request failed",
		"status", status, "kind", kind, "error", err)
	respond(w, r, status, errorResponse{Error: kind, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, fault.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, fault.ErrConfiguration):
		return http.StatusServiceUnavailable, "Configuration error"
	case errors.Is(err, fault.ErrContentPolicy):
		return http.StatusUnprocessableEntity, "Content policy violation"
	case errors.Is(err, fault.ErrUpstreamGeneration):
		return http.StatusBadGateway, "Upstream generation error"
	case errors.Is(err, fault.ErrTransportEncoding):
		return http.StatusBadRequest, "Unicode encoding error"
	case errors.Is(err, fault.ErrImageProcessing):
		return http.StatusInternalServerError, "Image processing error"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

func limit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				respond(w, r, http.StatusTooManyRequests, errorResponse{
					Error:   "Too many requests",
					Message: "sticker generation is rate limited, please try again shortly",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := logger.With("request_id", middleware.GetReqID(r.Context()))
			ctx := log.NewContext(r.Context(), l)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			l.Info("handled request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String())
		})
	}
}
