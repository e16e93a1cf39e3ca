package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"ad-campaigns/internal/core/domain"
)

const maxBodyBytes = 1 << 20

// campaignRequest is the body of POST /api/ads.
type campaignRequest struct {
	AdvertiserID string             `json:"advertiserId"`
	AdType       domain.AdType      `json:"adType"`
	AdContent    string             `json:"adContent"`
	ContentKind  domain.ContentKind `json:"contentKind"`
	AdPlacement  domain.AdPlacement `json:"adPlacement"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	TargetURL    string             `json:"targetUrl"`
	StartDate    time.Time          `json:"startDate"`
	EndDate      time.Time          `json:"endDate"`
	Budget       *decimal.Decimal   `json:"budget"`
}

func (req campaignRequest) input() domain.CampaignInput {
	return domain.CampaignInput{
		AdvertiserID: req.AdvertiserID,
		AdType:       req.AdType,
		AdContent:    req.AdContent,
		ContentKind:  req.ContentKind,
		AdPlacement:  req.AdPlacement,
		Title:        req.Title,
		Description:  req.Description,
		TargetURL:    req.TargetURL,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Budget:       req.Budget,
	}
}

// patchRequest is the body of PUT /api/ads/{id}. Counters, ownership and
// timestamps are not accepted.
type patchRequest struct {
	AdType        *domain.AdType        `json:"adType"`
	AdContent     *string               `json:"adContent"`
	ContentKind   *domain.ContentKind   `json:"contentKind"`
	AdPlacement   *domain.AdPlacement   `json:"adPlacement"`
	Title         *string               `json:"title"`
	Description   *string               `json:"description"`
	TargetURL     *string               `json:"targetUrl"`
	StartDate     *time.Time            `json:"startDate"`
	EndDate       *time.Time            `json:"endDate"`
	Budget        *decimal.Decimal      `json:"budget"`
	Spend         *decimal.Decimal      `json:"spend"`
	Status        *domain.Status        `json:"status"`
	PaymentStatus *domain.PaymentStatus `json:"paymentStatus"`
}

func (req patchRequest) patch() domain.CampaignPatch {
	return domain.CampaignPatch(req)
}

// chargeRequest is the body of the payment start endpoints. Amount is
// optional and defaults to the campaign budget.
type chargeRequest struct {
	CampaignID      string          `json:"campaignId"`
	Amount          decimal.Decimal `json:"amount"`
	Email           string          `json:"email"`
	PaymentMethodID string          `json:"paymentMethodId"`
}

// webhookRequest is a Paynow status update.
type webhookRequest struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// advertiserParam reads the advertiser filter. Both `advertiserId` and the
// older `advertiserID` spelling are accepted.
func advertiserParam(q url.Values) string {
	if v := q.Get("advertiserId"); v != "" {
		return v
	}
	return q.Get("advertiserID")
}

// decodeJSON decodes a single JSON object and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeBody(w, r, dst, true)
}

// decodeLenientJSON is decodeJSON for provider callbacks, whose payloads
// carry fields the service does not read.
func decodeLenientJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeBody(w, r, dst, false)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, strict bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}
