package handlers

import (
	"github.com/abrezinsky/armyroster/internal/services"
	"github.com/abrezinsky/armyroster/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Catalog services.CatalogServicer
	Drafts  services.DraftServicer
	Hub     *websocket.Hub
	Log     HTTPLogger
}

// HTTPLogger is the logging the handlers need: request logging control and
// reporting of internal errors
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
	Error(msg string, args ...any)
}

// New creates a new Handlers instance with all dependencies
func New(
	catalog services.CatalogServicer,
	drafts services.DraftServicer,
	hub *websocket.Hub,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Catalog: catalog,
		Drafts:  drafts,
		Hub:     hub,
		Log:     log,
	}
}

// NoopHTTPLogger is a test logger that never logs
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }
func (NoopHTTPLogger) Error(string, ...any)       {}
