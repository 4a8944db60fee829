package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/armyroster/internal/models"
	"github.com/abrezinsky/armyroster/internal/options"
	"github.com/abrezinsky/armyroster/internal/services"
)

func unitRef(r *http.Request) services.UnitRef {
	return services.UnitRef{
		ArmyID:   chi.URLParam(r, "armyID"),
		Category: models.Category(r.URL.Query().Get("category")),
		UnitID:   chi.URLParam(r, "unitID"),
	}
}

// handleListArmies returns every army in the catalog
func (h *Handlers) handleListArmies(w http.ResponseWriter, r *http.Request) {
	armies, err := h.Catalog.ListArmies(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, armies)
}

func (h *Handlers) handleGetArmy(w http.ResponseWriter, r *http.Request) {
	army, err := h.Catalog.GetArmy(r.Context(), chi.URLParam(r, "armyID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, army)
}

func (h *Handlers) handleGetStatTable(w http.ResponseWriter, r *http.Request) {
	lines, err := h.Catalog.StatTable(r.Context(), chi.URLParam(r, "armyID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, lines)
}

// handleListUnits returns the units of an army, filtered by the
// ?composition= query parameter
func (h *Handlers) handleListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Catalog.ListUnits(r.Context(), chi.URLParam(r, "armyID"), r.URL.Query().Get("composition"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, units)
}

func (h *Handlers) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := h.Catalog.GetUnit(r.Context(), unitRef(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, unit)
}

func (h *Handlers) handleDefaultConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Catalog.DefaultConfiguration(r.Context(), unitRef(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, cfg)
}

// handleQuote prices a configuration without saving it
func (h *Handlers) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	ref := unitRef(r)
	if req.Category != "" {
		ref.Category = req.Category
	}
	q, err := h.Catalog.Quote(r.Context(), ref, options.Configuration{
		UnitSize:  req.UnitSize,
		Selection: req.Selection,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, q)
}

// handleReloadCatalog rereads the data directory
func (h *Handlers) handleReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Reload(r.Context()); err != nil {
		h.respondError(w, r, err)
		return
	}
	armies, err := h.Catalog.ListArmies(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, ReloadResponse{Armies: len(armies)})
}
