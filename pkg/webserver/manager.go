package webserver

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"f1trackrenderer/log"
)

const shutdownTimeout = 10 * time.Second

type Manager struct {
	r      *mux.Router
	logger *log.Logger
}

// NewManager creates the router. Static files below resourcesDir are served
// at /resources/ when the directory exists.
func NewManager(resourcesDir string, logger *log.Logger) *Manager {
	m := &Manager{
		r:      mux.NewRouter(),
		logger: logger.Named("webserver"),
	}
	m.rootHandlers(resourcesDir)
	return m
}

func (m *Manager) Router() *mux.Router {
	return m.r
}

func (m *Manager) rootHandlers(resourcesDir string) {
	if resourcesDir == "" {
		return
	}
	if _, err := os.Stat(resourcesDir); err != nil {
		m.logger.Debug("no resources dir", log.String("dir", resourcesDir))
		return
	}
	fs := http.FileServer(http.Dir(resourcesDir))
	resStr := "/resources/"
	m.r.PathPrefix(resStr).Handler(http.StripPrefix(resStr, fs))
}

// Routes lists the path templates and methods of all registered routes.
func (m *Manager) Routes() []string {
	routes := []string{}
	_ = m.r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		if methods, err := route.GetMethods(); err == nil {
			pathTemplate += " " + strings.Join(methods, ",")
		}
		routes = append(routes, pathTemplate)
		return nil
	})
	return routes
}

// Serve listens on addr until ctx is done and then shuts down gracefully.
func (m *Manager) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		Handler:           m.r,
	}

	errCh := make(chan error, 1)
	go func() {
		m.logger.Info("webserver listening", log.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	m.logger.Info("webserver shutting down")
	return srv.Shutdown(shutdownCtx)
}
