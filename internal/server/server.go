package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// Server exposes the status and log files over HTTP so a remote dashboard
// can poll them.
type Server struct {
	statusPath string
	logPath    string
	logger     logrus.FieldLogger
	handler    http.Handler
}

// New creates a Server for the two local feed files.
func New(statusPath, logPath string, logger logrus.FieldLogger) *Server {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	s := &Server{
		statusPath: statusPath,
		logPath:    logPath,
		logger:     logger.WithField("module", "server"),
	}

	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.HandleFunc("/"+filepath.Base(statusPath), s.serveFile(statusPath, "application/json")).Methods("GET", "HEAD")
	router.HandleFunc("/"+filepath.Base(logPath), s.serveFile(logPath, "text/plain; charset=utf-8")).Methods("GET", "HEAD")
	router.HandleFunc("/healthz", s.healthz).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(http.NotFound)

	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.UseHandler(router)
	s.handler = n

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("http server listening on %v", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// serveFile returns the file verbatim and never lets clients cache it; the
// dashboard expects every poll to see the latest write.
func (s *Server) serveFile(path, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.logger.WithError(err).Warn("reading feed file")
			}
			http.NotFound(w, r)
			return
		}

		h := w.Header()
		h.Set("Content-Type", contentType)
		h.Set("Cache-Control", "no-store")
		h.Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			w.Write(data) //nolint:errcheck
		}
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n")) //nolint:errcheck
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("request")
	})
}
