package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	requestTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	logger *slog.Logger
	router chi.Router
}

func New(logger *slog.Logger, service gameService, limits Limits) *Server {
	logger = logger.With("component", "rest")

	h := &handlers{
		logger:  logger,
		service: service,
		limits:  limits,
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(requestLogger(logger))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(requestTimeout))

	router.Get("/ping", ping)

	router.Route("/drop_token", func(r chi.Router) {
		r.Get("/", h.listGames)
		r.Post("/", h.createGame)

		r.Route("/{gameId}", func(r chi.Router) {
			r.Get("/", h.getGame)
			r.Get("/moves", h.getMoves)
			r.Get("/moves/{moveNumber}", h.getMove)
			r.Post("/{playerId}", h.makeMove)
			r.Delete("/{playerId}", h.quit)
		})
	})

	return &Server{
		logger: logger,
		router: router,
	}
}

// Handler exposes the router, mainly for tests.
func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - serves HTTP on port until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// requestLogger writes one log line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			defer func() {
				logger.Info("request",
					"http_method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration", time.Since(started),
					"request_id", chimw.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
