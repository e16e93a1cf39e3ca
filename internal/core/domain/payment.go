package domain

import "time"

// The payment transitions below mutate c in place and report whether
// anything changed. A transition that changes nothing leaves UpdatedAt
// alone, which is what makes repeated webhook deliveries harmless.

// InitiatePayment records a new payment attempt identified by the gateway's
// reference. The campaign status is not touched.
func InitiatePayment(c *Campaign, reference string, now time.Time) bool {
	if c.PaymentTransactionID == reference && c.PaymentStatus == PaymentPending {
		return false
	}
	c.PaymentTransactionID = reference
	c.PaymentStatus = PaymentPending
	c.UpdatedAt = now.UTC()
	return true
}

// ConfirmPayment marks the campaign paid and activates it when
// CanTransition allows. A campaign that is already paid is left alone, so
// a late duplicate confirmation cannot undo an administrative pause.
// Completed and rejected campaigns record the payment but stay terminal.
func ConfirmPayment(c *Campaign, now time.Time) bool {
	if c.PaymentStatus == PaymentPaid {
		return false
	}
	c.PaymentStatus = PaymentPaid
	if CanTransition(c.Status, StatusActive) {
		c.Status = StatusActive
	}
	c.UpdatedAt = now.UTC()
	return true
}

// FailPayment marks the payment failed. The campaign keeps its status so
// that a pending campaign stays eligible for another attempt.
func FailPayment(c *Campaign, now time.Time) bool {
	if c.PaymentStatus == PaymentFailed {
		return false
	}
	c.PaymentStatus = PaymentFailed
	c.UpdatedAt = now.UTC()
	return true
}
