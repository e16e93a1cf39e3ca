package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500

	// MoneyScale is the number of decimal places kept for budget and spend.
	MoneyScale = 2
)

var (
	hundred = decimal.NewFromInt(100)

	// maxMoney is the exclusive upper bound of budget and spend, matching
	// a NUMERIC(14,2) column.
	maxMoney = decimal.New(1, 12)
)

// Percentage is a percentage held at two decimal places. Its string and
// JSON forms always carry both decimals, so five percent is "5.00".
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage rounds d to two decimal places.
func NewPercentage(d decimal.Decimal) Percentage {
	return Percentage{value: d.Round(2)}
}

// Decimal returns the rounded value.
func (p Percentage) Decimal() decimal.Decimal {
	return p.value
}

func (p Percentage) String() string {
	return p.value.StringFixed(2)
}

// MarshalJSON renders the fixed two-decimal string.
func (p Percentage) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// ComputeCTR returns clicks/impressions*100 rounded half away from zero to
// two decimals, or zero when nothing has been shown yet.
func ComputeCTR(impressions, clicks int64) Percentage {
	if impressions == 0 {
		return Percentage{}
	}
	return NewPercentage(decimal.NewFromInt(clicks).Mul(hundred).DivRound(decimal.NewFromInt(impressions), 2))
}

// ComputeBudgetRemaining returns budget - spend. The result is negative when
// spend has overrun the budget; it is informational and never clamped.
func ComputeBudgetRemaining(budget, spend decimal.Decimal) decimal.Decimal {
	return budget.Sub(spend)
}

// IsActive reports whether the campaign should currently be served. Both
// date boundaries are inclusive.
func IsActive(c *Campaign, now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return false
	}
	return c.Spend.LessThan(c.Budget)
}

var transitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusPaused, StatusRejected, StatusCompleted},
	StatusActive:  {StatusPaused, StatusCompleted},
	StatusPaused:  {StatusActive, StatusCompleted},
}

// CanTransition reports whether an administrative update may move a
// campaign from one status to another. Completed and rejected campaigns are
// terminal. Keeping the current status is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Validate checks the static configuration of c and returns a
// *ValidationError listing every violated field, or nil.
func Validate(c *Campaign) error {
	verr := &ValidationError{}
	validate(c, verr)
	return verr.orNil()
}

func validate(c *Campaign, verr *ValidationError) {
	if strings.TrimSpace(c.AdvertiserID) == "" {
		verr.add("advertiserId", "is required")
	}

	switch {
	case c.AdType == "":
		verr.add("adType", "is required")
	case !c.AdType.Valid():
		verr.add("adType", "unknown ad type "+quote(string(c.AdType)))
	}

	if strings.TrimSpace(c.AdContent) == "" {
		verr.add("adContent", "is required")
	}
	if c.ContentKind != "" && !c.ContentKind.Valid() {
		verr.add("contentKind", "unknown content kind "+quote(string(c.ContentKind)))
	}

	switch {
	case c.AdPlacement == "":
		verr.add("adPlacement", "is required")
	case !c.AdPlacement.Valid():
		verr.add("adPlacement", "unknown placement "+quote(string(c.AdPlacement)))
	}

	switch {
	case strings.TrimSpace(c.Title) == "":
		verr.add("title", "is required")
	case utf8.RuneCountInString(c.Title) > MaxTitleLength:
		verr.add("title", "must be at most 100 characters")
	}
	if utf8.RuneCountInString(c.Description) > MaxDescriptionLength {
		verr.add("description", "must be at most 500 characters")
	}

	if c.StartDate.IsZero() {
		verr.add("startDate", "is required")
	}
	switch {
	case c.EndDate.IsZero():
		verr.add("endDate", "is required")
	case !c.StartDate.IsZero() && !c.EndDate.After(c.StartDate):
		verr.add("endDate", "must be after start date")
	}

	validateMoney("budget", c.Budget, verr)
	validateMoney("spend", c.Spend, verr)
	if c.Impressions < 0 {
		verr.add("impressions", "must not be negative")
	}
	if c.Clicks < 0 {
		verr.add("clicks", "must not be negative")
	}

	if c.Status != "" && !c.Status.Valid() {
		verr.add("status", "unknown status "+quote(string(c.Status)))
	}
	if c.PaymentStatus != "" && !c.PaymentStatus.Valid() {
		verr.add("paymentStatus", "unknown payment status "+quote(string(c.PaymentStatus)))
	}
}

// validateMoney reports at most one violation per amount so every store
// keeps the value exactly as given.
func validateMoney(field string, d decimal.Decimal, verr *ValidationError) {
	switch {
	case d.IsNegative():
		verr.add(field, "must not be negative")
	case !d.Round(MoneyScale).Equal(d):
		verr.add(field, "must have at most 2 decimal places")
	case d.GreaterThanOrEqual(maxMoney):
		verr.add(field, "must be less than 1000000000000")
	}
}

func quote(s string) string {
	return `"` + s + `"`
}
