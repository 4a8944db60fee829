package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/armyroster/internal/services"
)

func (req EntryRequest) toService() services.EntryRequest {
	return services.EntryRequest{
		UnitID:    req.UnitID,
		Category:  req.Category,
		UnitSize:  req.UnitSize,
		Selection: req.Selection,
		Notes:     req.Notes,
		Owned:     req.Owned,
	}
}

// ==================== Drafts ====================

func (h *Handlers) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.Drafts.ListDrafts(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, drafts)
}

func (h *Handlers) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	d, err := h.Drafts.CreateDraft(r.Context(), services.CreateDraftRequest{
		ArmyID:        req.ArmyID,
		CompositionID: req.CompositionID,
		ArmyRuleID:    req.ArmyRuleID,
		PointsLimit:   req.PointsLimit,
		Name:          req.Name,
		Description:   req.Description,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, d)
}

// handleImportDraft stores an externally authored draft. The body is passed
// through as raw JSON so malformed fields are coerced rather than rejected.
func (h *Handlers) handleImportDraft(w http.ResponseWriter, r *http.Request) {
	raw, err := readRawJSON(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	d, err := h.Drafts.ImportDraft(r.Context(), raw)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, d)
}

func (h *Handlers) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	d, err := h.Drafts.GetDraft(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, d)
}

func (h *Handlers) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req DraftUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	d, err := h.Drafts.UpdateDraft(r.Context(), id, services.DraftUpdate{
		Name:          req.Name,
		Description:   req.Description,
		PointsLimit:   req.PointsLimit,
		CompositionID: req.CompositionID,
		ArmyRuleID:    req.ArmyRuleID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, d)
}

func (h *Handlers) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.Drafts.DeleteDraft(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondDeleted(w)
}

// ==================== Views ====================

func (h *Handlers) handleGetSections(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	v, err := h.Drafts.Sections(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, v)
}

func (h *Handlers) handleGetDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	v, err := h.Drafts.DetailView(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, v)
}

func (h *Handlers) handleGetShareURL(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	url, err := h.Drafts.ShareURL(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, ShareResponse{URL: url, QRURL: fmt.Sprintf("/api/drafts/%d/share/qr", id)})
}

// handleGetShareQR returns the share link as a PNG QR code. The optional
// ?size= parameter sets the image size in pixels.
func (h *Handlers) handleGetShareQR(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	size, err := parseIntQuery(r, "size")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	png, err := h.Drafts.ShareQR(r.Context(), id, size)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// ==================== Entries ====================

func (h *Handlers) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	e, err := h.Drafts.AddEntry(r.Context(), id, req.toService())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, e)
}

func (h *Handlers) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	e, err := h.Drafts.UpdateEntry(r.Context(), id, chi.URLParam(r, "entryID"), req.toService())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, e)
}

func (h *Handlers) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.Drafts.RemoveEntry(r.Context(), id, chi.URLParam(r, "entryID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleDuplicateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	e, err := h.Drafts.DuplicateEntry(r.Context(), id, chi.URLParam(r, "entryID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, e)
}

func (h *Handlers) handleEntryConfiguration(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	cfg, err := h.Drafts.EntryConfiguration(r.Context(), id, chi.URLParam(r, "entryID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, cfg)
}

// ==================== Clipboard ====================

func (h *Handlers) handleCopyEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	e, err := h.Drafts.CopyEntry(r.Context(), id, chi.URLParam(r, "entryID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, e)
}

func (h *Handlers) handlePasteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	e, err := h.Drafts.PasteEntry(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, e)
}

func (h *Handlers) handleGetClipboard(w http.ResponseWriter, r *http.Request) {
	e, err := h.Drafts.Clipboard(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, e)
}

func (h *Handlers) handleSetClipboard(w http.ResponseWriter, r *http.Request) {
	raw, err := readRawJSON(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	e, err := h.Drafts.SetClipboard(r.Context(), raw)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, e)
}
