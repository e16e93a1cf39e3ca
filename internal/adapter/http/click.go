package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleImpression counts one view of a campaign's ad and returns the new
// impression count. Unknown campaigns result in HTTP 404 and are never
// created.
func (h *Handler) handleImpression(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Recorder.RecordImpression(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "Error recording impression", err)
		return
	}
	writeData(w, http.StatusOK, "Impression recorded", map[string]int64{"impressions": n})
}

// handleClick counts one click on a campaign's ad and returns the new click
// count.
func (h *Handler) handleClick(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Recorder.RecordClick(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "Error recording click", err)
		return
	}
	writeData(w, http.StatusOK, "Click recorded", map[string]int64{"clicks": n})
}
