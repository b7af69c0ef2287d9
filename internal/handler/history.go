package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leca/sauce-relay/internal/api"
	"github.com/leca/sauce-relay/internal/model"
)

// ListSearches handles GET /api/v1/searches.
func (h *Handler) ListSearches(w http.ResponseWriter, r *http.Request) {
	page := 1
	perPage := 50

	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if pp, err := strconv.Atoi(v); err == nil && pp > 0 {
			if pp > 1000 {
				pp = 1000
			}
			perPage = pp
		}
	}

	records, total, err := h.DB.ListSearches(page, perPage)
	if err != nil {
		api.Internal(w, "failed to list searches")
		return
	}

	// Ensure non-nil slice for JSON serialisation.
	if records == nil {
		records = []*model.SearchRecord{}
	}

	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}

	info := api.ResultInfo{
		Page:       page,
		PerPage:    perPage,
		Count:      len(records),
		TotalCount: total,
		TotalPages: totalPages,
	}

	api.WriteJSON(w, http.StatusOK, api.Paginated(map[string]interface{}{"searches": records}, info))
}

// GetSearch handles GET /api/v1/searches/{search_id}.
func (h *Handler) GetSearch(w http.ResponseWriter, r *http.Request) {
	searchID := chi.URLParam(r, "search_id")

	rec, err := h.DB.GetSearch(searchID)
	if err != nil {
		api.NotFound(w, "search not found")
		return
	}

	api.WriteJSON(w, http.StatusOK, rec)
}

// DeleteSearch handles DELETE /api/v1/searches/{search_id}.
func (h *Handler) DeleteSearch(w http.ResponseWriter, r *http.Request) {
	searchID := chi.URLParam(r, "search_id")

	if err := h.DB.DeleteSearch(searchID); err != nil {
		api.NotFound(w, "search not found")
		return
	}

	// Also delete the thumbnail (best-effort).
	_ = h.Store.Delete(searchID)

	api.WriteJSON(w, http.StatusOK, struct{}{})
}

// GetSearchThumbnail handles GET /api/v1/searches/{search_id}/thumbnail.
func (h *Handler) GetSearchThumbnail(w http.ResponseWriter, r *http.Request) {
	searchID := chi.URLParam(r, "search_id")

	if _, err := h.DB.GetSearch(searchID); err != nil {
		api.NotFound(w, "search not found")
		return
	}

	rc, err := h.Store.Retrieve(searchID)
	if err != nil {
		api.NotFound(w, "no thumbnail for this search")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("failed to write thumbnail response", "search_id", searchID, "error", err)
	}
}

// GetStats handles GET /api/v1/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	total, err := h.DB.CountSearches()
	if err != nil {
		api.Internal(w, "failed to count searches")
		return
	}

	byOutcome, err := h.DB.CountSearchesByOutcome()
	if err != nil {
		api.Internal(w, "failed to count searches by outcome")
		return
	}

	result := map[string]interface{}{
		"total": total,
		"outcomes": map[string]int{
			model.OutcomeOK:            byOutcome[model.OutcomeOK],
			model.OutcomeSourceError:   byOutcome[model.OutcomeSourceError],
			model.OutcomeUpstreamError: byOutcome[model.OutcomeUpstreamError],
		},
	}
	api.WriteJSON(w, http.StatusOK, result)
}
