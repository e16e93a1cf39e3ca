package httpadapter

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ad-campaigns/internal/core/domain"
	"ad-campaigns/internal/core/port"
)

type chargeDTO struct {
	Provider    string `json:"provider"`
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	PollURL     string `json:"pollUrl,omitempty"`
}

type paymentStatusDTO struct {
	CampaignID    string               `json:"campaignId"`
	Status        domain.Status        `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	TransactionID string               `json:"transactionId,omitempty"`
	Budget        decimal.Decimal      `json:"budget"`
}

func toPaymentStatusDTO(c *domain.Campaign) paymentStatusDTO {
	return paymentStatusDTO{
		CampaignID:    c.ID,
		Status:        c.Status,
		PaymentStatus: c.PaymentStatus,
		TransactionID: c.PaymentTransactionID,
		Budget:        c.Budget,
	}
}

func (h *Handler) handleStripePayment(w http.ResponseWriter, r *http.Request) {
	h.startPayment(w, r, "stripe", "Payment processed successfully")
}

func (h *Handler) handlePaynowPayment(w http.ResponseWriter, r *http.Request) {
	h.startPayment(w, r, "paynow", "Payment initiated successfully")
}

func (h *Handler) startPayment(w http.ResponseWriter, r *http.Request, provider, message string) {
	errMessage := fmt.Sprintf("Error processing %s payment", provider)

	var req chargeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, errMessage, err)
		return
	}
	if strings.TrimSpace(req.CampaignID) == "" {
		h.writeError(w, r, errMessage, domain.Invalid("campaignId", "is required"))
		return
	}

	charge, err := h.svc.Payments.StartPayment(r.Context(), provider, port.ChargeRequest{
		CampaignID:      req.CampaignID,
		Amount:          req.Amount,
		Email:           req.Email,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		h.writeError(w, r, errMessage, err)
		return
	}

	status := "pending"
	if charge.Settled {
		status = "succeeded"
	}
	writeData(w, http.StatusOK, message, chargeDTO{
		Provider:    charge.Provider,
		Reference:   charge.Reference,
		Status:      status,
		RedirectURL: charge.RedirectURL,
		PollURL:     charge.PollURL,
	})
}

// handlePaynowWebhook applies a Paynow status update. "Paid" confirms the
// payment, "Cancelled" and "Failed" fail it; other statuses are
// acknowledged without change. Unknown references are acknowledged with
// success=false so that the provider stops retrying.
func (h *Handler) handlePaynowWebhook(w http.ResponseWriter, r *http.Request) {
	req, err := decodeWebhook(w, r)
	if err != nil {
		h.badRequest(w, "Error processing webhook", err)
		return
	}
	if req.Reference == "" {
		h.writeError(w, r, "Error processing webhook", domain.Invalid("reference", "is required"))
		return
	}

	var c *domain.Campaign
	switch strings.ToLower(strings.TrimSpace(req.Status)) {
	case "paid":
		c, err = h.svc.Payments.OnPaymentConfirmed(r.Context(), req.Reference)
	case "cancelled", "failed":
		c, err = h.svc.Payments.OnPaymentFailed(r.Context(), req.Reference)
	default:
		h.logger.Info("paynow status ignored",
			slog.String("reference", req.Reference),
			slog.String("status", req.Status),
		)
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Webhook acknowledged"})
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		h.logger.Warn("paynow webhook for unknown reference", slog.String("reference", req.Reference))
		writeJSON(w, http.StatusOK, envelope{Message: "Campaign not found"})
		return
	}
	if err != nil {
		h.writeError(w, r, "Error processing webhook", err)
		return
	}
	writeData(w, http.StatusOK, "Webhook processed", toPaymentStatusDTO(c))
}

func (h *Handler) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Payments.PaymentStatus(r.Context(), chi.URLParam(r, "campaignId"))
	if err != nil {
		h.writeError(w, r, "Error fetching payment status", err)
		return
	}
	writeData(w, http.StatusOK, "", toPaymentStatusDTO(c))
}

// decodeWebhook accepts both JSON and form-encoded bodies; Paynow posts
// the latter.
func decodeWebhook(w http.ResponseWriter, r *http.Request) (webhookRequest, error) {
	var req webhookRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("invalid form: %w", err)
		}
		req.Reference = r.PostForm.Get("reference")
		req.Status = r.PostForm.Get("status")
		return req, nil
	}
	err := decodeLenientJSON(w, r, &req)
	return req, err
}
