// Package server exposes icon sessions, the reference image editor and the
// static catalog over a JSON HTTP API, and serves the embedded web page.
package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"icon_studio/catalog"
	"icon_studio/export"
	"icon_studio/generator"
	"icon_studio/imageedit"
	"icon_studio/storage"
)

//go:embed web/dist
var embeddedStatic embed.FS

// maxBodyBytes bounds JSON request bodies; reference images travel inline.
const maxBodyBytes = 4 * imageedit.MaxSourceBytes / 3

// Options wires the server's collaborators. Only Agent is required.
type Options struct {
	Agent *generator.Agent
	// Store persists session histories; nil keeps them in memory only.
	Store      *storage.Store
	Catalog    *catalog.Catalog
	Exporter   *export.Exporter
	CanvasSize int
	ScaleRange imageedit.ScaleRange
	// Timeout bounds one model call; zero means the request context only.
	Timeout time.Duration
	Logger  *slog.Logger
}

type Server struct {
	sessions   *sessionStore
	catalog    *catalog.Catalog
	exporter   *export.Exporter
	canvasSize int
	scaleRange imageedit.ScaleRange
	timeout    time.Duration
	logger     *slog.Logger
	staticFS   http.Handler
}

func New(opts Options) (*Server, error) {
	if opts.Agent == nil {
		return nil, errors.New("generator agent required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Catalog == nil {
		c, err := catalog.Load()
		if err != nil {
			return nil, err
		}
		opts.Catalog = c
	}
	if opts.Exporter == nil {
		e, err := export.NewExporter(nil, 0)
		if err != nil {
			return nil, err
		}
		opts.Exporter = e
	}
	if opts.CanvasSize <= 0 {
		opts.CanvasSize = imageedit.DefaultCanvasSize
	}
	if opts.ScaleRange == (imageedit.ScaleRange{}) {
		opts.ScaleRange = imageedit.DefaultScaleRange
	}

	sub, err := fs.Sub(embeddedStatic, "web/dist")
	if err != nil {
		return nil, err
	}

	return &Server{
		sessions:   newSessionStore(opts.Agent, opts.Store, opts.Logger),
		catalog:    opts.Catalog,
		exporter:   opts.Exporter,
		canvasSize: opts.CanvasSize,
		scaleRange: opts.ScaleRange,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		staticFS:   http.FileServer(http.FS(sub)),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.handleSessionCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionGet)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleSessionDelete)
	mux.HandleFunc("POST /api/sessions/{id}/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/sessions/{id}/regenerate", s.handleRegenerate)
	mux.HandleFunc("POST /api/sessions/{id}/undo", s.handleUndo)
	mux.HandleFunc("POST /api/sessions/{id}/redo", s.handleRedo)
	mux.HandleFunc("GET /api/sessions/{id}/export", s.handleExport)
	mux.HandleFunc("POST /api/images/edit", s.handleImageEdit)
	mux.HandleFunc("GET /api/styles", s.handleStyles)
	mux.HandleFunc("GET /api/library", s.handleLibrary)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.Handle("/", s.staticHandler())
	return logMiddleware(s.logger, recoverMiddleware(s.logger, mux))
}

func (s *Server) staticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// "/" is served as index.html by the file server itself
		if upath := r.URL.Path; strings.HasPrefix(upath, "/api/") {
			s.writeError(w, r, errNotFoundRoute(upath))
			return
		}
		s.staticFS.ServeHTTP(w, r)
	})
}

// modelContext bounds a model call by the configured timeout.
func (s *Server) modelContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.timeout)
}
