package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.handleHealth)

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Route("/api", func(r chi.Router) {
		// Catalog
		r.Get("/armies", h.handleListArmies)
		r.Get("/armies/{armyID}", h.handleGetArmy)
		r.Get("/armies/{armyID}/stats", h.handleGetStatTable)
		r.Get("/armies/{armyID}/units", h.handleListUnits)
		r.Get("/armies/{armyID}/units/{unitID}", h.handleGetUnit)
		r.Get("/armies/{armyID}/units/{unitID}/configuration", h.handleDefaultConfiguration)
		r.Post("/armies/{armyID}/units/{unitID}/quote", h.handleQuote)
		r.Post("/catalog/reload", h.handleReloadCatalog)

		// Drafts
		r.Get("/drafts", h.handleListDrafts)
		r.Post("/drafts", h.handleCreateDraft)
		r.Post("/drafts/import", h.handleImportDraft)
		r.Get("/drafts/{id}", h.handleGetDraft)
		r.Patch("/drafts/{id}", h.handleUpdateDraft)
		r.Delete("/drafts/{id}", h.handleDeleteDraft)
		r.Get("/drafts/{id}/sections", h.handleGetSections)
		r.Get("/drafts/{id}/detail", h.handleGetDetail)
		r.Get("/drafts/{id}/share", h.handleGetShareURL)
		r.Get("/drafts/{id}/share/qr", h.handleGetShareQR)

		// Entries
		r.Post("/drafts/{id}/entries", h.handleAddEntry)
		r.Patch("/drafts/{id}/entries/{entryID}", h.handleUpdateEntry)
		r.Delete("/drafts/{id}/entries/{entryID}", h.handleRemoveEntry)
		r.Post("/drafts/{id}/entries/{entryID}/duplicate", h.handleDuplicateEntry)
		r.Get("/drafts/{id}/entries/{entryID}/configuration", h.handleEntryConfiguration)

		// Clipboard
		r.Post("/drafts/{id}/entries/{entryID}/copy", h.handleCopyEntry)
		r.Post("/drafts/{id}/paste", h.handlePasteEntry)
		r.Get("/clipboard", h.handleGetClipboard)
		r.Put("/clipboard", h.handleSetClipboard)
	})

	return r
}

// handleHealth reports that the server is up
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, HealthResponse{Status: "ok"})
}
