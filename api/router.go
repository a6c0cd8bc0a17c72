package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/health"
	"github.com/dmitrymomot/storyforge/core/progress"
	"github.com/dmitrymomot/storyforge/pipeline"
)

// Dispatcher is the part of command.Dispatcher the API uses.
type Dispatcher interface {
	Submit(ctx context.Context, cmd command.Command, opts ...command.EnqueueOption) (string, error)
	GetActiveCommands() []command.Snapshot
	Get(runID string) (command.Snapshot, bool)
	Cancel(runID string) bool
}

// Stories is the story repository the API reads and creates through.
type Stories interface {
	Put(ctx context.Context, s pipeline.Story) error
	List(ctx context.Context) []pipeline.Story
	Story(ctx context.Context, id string) (pipeline.Story, error)
}

// Option configures the router.
type Option func(*handlers)

// WithLogger sets the request and error logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *handlers) {
		if log != nil {
			h.logger = log
		}
	}
}

// WithHub mounts the websocket notification hub at /ws.
func WithHub(hub http.Handler) Option {
	return func(h *handlers) {
		h.hub = hub
	}
}

// WithReadinessChecks adds checks to /health/ready.
func WithReadinessChecks(checks ...health.NamedCheck) Option {
	return func(h *handlers) {
		h.checks = append(h.checks, checks...)
	}
}

// WithMedia serves files under dir at prefix, for locally stored audio.
func WithMedia(prefix, dir string) Option {
	return func(h *handlers) {
		if prefix != "" && dir != "" {
			h.mediaPrefix = "/" + strings.Trim(prefix, "/")
			h.mediaDir = dir
		}
	}
}

type handlers struct {
	dispatcher  Dispatcher
	tracker     progress.Tracker
	stories     Stories
	pipeline    *pipeline.Pipeline
	hub         http.Handler
	checks      []health.NamedCheck
	logger      *slog.Logger
	mediaPrefix string
	mediaDir    string
}

// NewRouter builds the HTTP handler.
func NewRouter(d Dispatcher, tracker progress.Tracker, stories Stories, p *pipeline.Pipeline, opts ...Option) http.Handler {
	h := &handlers{
		dispatcher: d,
		tracker:    tracker,
		stories:    stories,
		pipeline:   p,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness(h.logger, h.checks...))

	if h.hub != nil {
		r.Method(http.MethodGet, "/ws", h.hub)
	}

	if h.mediaDir != "" {
		fs := http.StripPrefix(h.mediaPrefix, http.FileServer(http.Dir(h.mediaDir)))
		r.Handle(h.mediaPrefix+"/*", fs)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/commands", h.listCommands)
		r.Get("/commands/{runID}", h.getCommand)
		r.Post("/commands/{runID}/cancel", h.cancelCommand)
		r.Get("/progress/{runID}", h.getProgress)

		r.Route("/stories", func(r chi.Router) {
			r.Get("/", h.listStories)
			r.Post("/", h.createStory)
			r.Get("/{storyID}", h.getStory)
			r.Post("/{storyID}/chapters", h.generateChapters)
			r.Post("/{storyID}/speech", h.generateSpeech)
			r.Post("/{storyID}/tags", h.regenerateTags)
		})
	})

	return r
}
