package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ad-campaigns/internal/core/domain"
)

// handleListCampaigns returns campaigns newest first. It accepts optional
// `status` and advertiser query parameters.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.CampaignFilter{
		Status:       domain.Status(q.Get("status")),
		AdvertiserID: advertiserParam(q),
	}
	campaigns, err := h.svc.Campaigns.ListCampaigns(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, "Error fetching campaigns", err)
		return
	}

	now := h.now()
	out := make([]campaignDTO, len(campaigns))
	for i := range campaigns {
		out[i] = toCampaignDTO(&campaigns[i], now)
	}
	count := len(out)
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &count, Data: out})
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Campaigns.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "Error fetching campaign", err)
		return
	}
	writeData(w, http.StatusOK, "", toCampaignDTO(c, h.now()))
}

// handleCreateCampaign validates the submission and stores a pending,
// unpaid campaign. Every invalid field is reported in one response.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "Error creating campaign", err)
		return
	}
	c, err := h.svc.Campaigns.CreateCampaign(r.Context(), req.input())
	if err != nil {
		h.writeError(w, r, "Error creating campaign", err)
		return
	}
	writeData(w, http.StatusCreated, "Campaign created successfully", toCampaignDTO(c, h.now()))
}

// handleUpdateCampaign applies a partial update. The merged record is
// validated as a whole.
func (h *Handler) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "Error updating campaign", err)
		return
	}
	c, err := h.svc.Campaigns.UpdateCampaign(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		h.writeError(w, r, "Error updating campaign", err)
		return
	}
	writeData(w, http.StatusOK, "Campaign updated successfully", toCampaignDTO(c, h.now()))
}

func (h *Handler) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Campaigns.DeleteCampaign(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, "Error deleting campaign", err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Campaign deleted successfully"})
}
