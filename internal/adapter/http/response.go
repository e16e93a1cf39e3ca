package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"ad-campaigns/internal/core/domain"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Count   *int                `json:"count,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

type campaignDTO struct {
	ID                   string               `json:"id"`
	AdvertiserID         string               `json:"advertiserId"`
	AdType               domain.AdType        `json:"adType"`
	AdContent            string               `json:"adContent"`
	ContentKind          domain.ContentKind   `json:"contentKind"`
	AdPlacement          domain.AdPlacement   `json:"adPlacement"`
	Title                string               `json:"title"`
	Description          string               `json:"description,omitempty"`
	TargetURL            string               `json:"targetUrl,omitempty"`
	StartDate            time.Time            `json:"startDate"`
	EndDate              time.Time            `json:"endDate"`
	Budget               decimal.Decimal      `json:"budget"`
	Spend                decimal.Decimal      `json:"spend"`
	BudgetRemaining      decimal.Decimal      `json:"budgetRemaining"`
	Impressions          int64                `json:"impressions"`
	Clicks               int64                `json:"clicks"`
	CTR                  domain.Percentage    `json:"ctr"`
	Status               domain.Status        `json:"status"`
	PaymentStatus        domain.PaymentStatus `json:"paymentStatus"`
	PaymentTransactionID string               `json:"paymentTransactionId,omitempty"`
	IsActive             bool                 `json:"isActive"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

func toCampaignDTO(c *domain.Campaign, now time.Time) campaignDTO {
	return campaignDTO{
		ID:                   c.ID,
		AdvertiserID:         c.AdvertiserID,
		AdType:               c.AdType,
		AdContent:            c.AdContent,
		ContentKind:          c.ContentKind,
		AdPlacement:          c.AdPlacement,
		Title:                c.Title,
		Description:          c.Description,
		TargetURL:            c.TargetURL,
		StartDate:            c.StartDate,
		EndDate:              c.EndDate,
		Budget:               c.Budget,
		Spend:                c.Spend,
		BudgetRemaining:      c.BudgetRemaining(),
		Impressions:          c.Impressions,
		Clicks:               c.Clicks,
		CTR:                  c.CTR(),
		Status:               c.Status,
		PaymentStatus:        c.PaymentStatus,
		PaymentTransactionID: c.PaymentTransactionID,
		IsActive:             domain.IsActive(c, now),
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// writeError maps err onto a status code. Details of server-side failures
// are logged, not returned.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{Message: message, Error: verr.Error(), Errors: verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Message: "Campaign not found", Error: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, envelope{Message: message, Error: "concurrent update, retry the request"})
	default:
		h.logger.Error(message,
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: message, Error: "internal error"})
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, message string, err error) {
	writeJSON(w, http.StatusBadRequest, envelope{Message: message, Error: err.Error()})
}
