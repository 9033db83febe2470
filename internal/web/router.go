package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/juststeveking/lookout/internal/monitor"
	"go.uber.org/zap"
)

// NewRouter wires the status page routes for r
func NewRouter(r *monitor.Registry, log *zap.Logger) *mux.Router {
	if log == nil {
		log = zap.NewNop()
	}

	router := mux.NewRouter()
	addRoutes(router, &handlers{registry: r, log: log})

	router.Use(signatureMiddleware)
	router.Use(loggingMiddleware(log))

	// Middleware only runs on matched routes
	router.NotFoundHandler = signatureMiddleware(http.NotFoundHandler())

	return router
}

func addRoutes(r *mux.Router, h *handlers) {
	r.HandleFunc("/", h.page).Methods("GET", "HEAD")
	r.HandleFunc("/status.json", h.status).Methods("GET")
	r.HandleFunc("/history.txt", h.history).Methods("GET")
	r.HandleFunc("/healthz", h.healthz).Methods("GET")
}

// NewServer creates an HTTP server with conservative timeouts
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Serve runs server until ctx is cancelled, then shuts it down gracefully
func Serve(ctx context.Context, server *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := gracefulShutdown(server, 25*time.Second); err != nil {
		return err
	}
	return nil
}

func gracefulShutdown(server *http.Server, maximumTime time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maximumTime)
	defer cancel()

	return server.Shutdown(ctx)
}

// signatureMiddleware stamps every response so our own web probe can tell
// it has looped back to this process
func signatureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", monitor.ServerSignature)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("uri", r.RequestURI),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
