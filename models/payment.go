package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus values are persisted as plain strings.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "Pending"
	PaymentProcessing        PaymentStatus = "Processing"
	PaymentCompleted         PaymentStatus = "Completed"
	PaymentFailed            PaymentStatus = "Failed"
	PaymentRefunded          PaymentStatus = "Refunded"
	PaymentPartiallyRefunded PaymentStatus = "PartiallyRefunded"
	// PaymentPartialRefund marks a booking cancelled inside the fee window; the
	// gateway refund itself is a separate, explicit operation.
	PaymentPartialRefund PaymentStatus = "Partial Refund"
)

// IsRefundState reports whether money has been (or is marked to be) returned.
func (s PaymentStatus) IsRefundState() bool {
	return s == PaymentRefunded || s == PaymentPartiallyRefunded || s == PaymentPartialRefund
}

// Payment is the monetary record embedded in exactly one Booking.
type Payment struct {
	Amount         decimal.Decimal `bson:"amount" json:"amount"`
	Currency       string          `bson:"currency" json:"currency"`
	Method         string          `bson:"method" json:"method"`
	Gateway        string          `bson:"gateway" json:"gateway"`
	ChargeID       string          `bson:"chargeId,omitempty" json:"chargeId,omitempty"`
	TransactionID  string          `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Status         PaymentStatus   `bson:"status" json:"status"`
	Attempts       int             `bson:"attempts" json:"attempts"`
	ProcessedAt    *time.Time      `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	RefundedAt     *time.Time      `bson:"refundedAt,omitempty" json:"refundedAt,omitempty"`
	RefundedAmount decimal.Decimal `bson:"refundedAmount" json:"refundedAmount"`
	ErrorCode      string          `bson:"errorCode,omitempty" json:"errorCode,omitempty"`
	ErrorMessage   string          `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	RedirectURL    string          `bson:"redirectUrl,omitempty" json:"redirectUrl,omitempty"`
	WebhookPayload string          `bson:"webhookPayload,omitempty" json:"-"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updatedAt" json:"updatedAt"`

	// RefundAttempts numbers refund requests; each one gets its own gateway key.
	RefundAttempts int `bson:"refundAttempts" json:"refundAttempts"`

	// PendingRefundAmount is set while a refund was sent but its outcome is
	// unknown. A retry re-sends it under PendingRefundKey.
	PendingRefundAmount decimal.Decimal `bson:"pendingRefundAmount,omitempty" json:"pendingRefundAmount,omitempty"`
	PendingRefundKey    string          `bson:"pendingRefundKey,omitempty" json:"-"`
}

// RefundInFlight reports whether a refund may have reached the gateway
// without its outcome being recorded.
func (p *Payment) RefundInFlight() bool {
	return p.PendingRefundKey != ""
}

// RefundableAmount is what is left to return to the customer.
func (p *Payment) RefundableAmount() decimal.Decimal {
	return p.Amount.Sub(p.RefundedAmount)
}

// CustomerInfo is forwarded to the gateway with a charge.
type CustomerInfo struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone,omitempty"`
}

// ProcessPaymentRequest starts or retries the charge for a booking.
type ProcessPaymentRequest struct {
	BookingID string          `json:"bookingId" binding:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency" binding:"omitempty,currency"`
	Method    string          `json:"method" binding:"required"`
	Customer  CustomerInfo    `json:"customer"`
	// TransactionID is the tokenised payment source produced by the client SDK.
	TransactionID string `json:"transactionId,omitempty"`
	ReturnURL     string `json:"returnUrl,omitempty"`
}

// PaymentResult is the normalised outcome of a charge or verification.
type PaymentResult struct {
	IsSuccessful  bool          `json:"isSuccessful"`
	TransactionID string        `json:"transactionId,omitempty"`
	ChargeID      string        `json:"chargeId,omitempty"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
	ErrorCode     string        `json:"errorCode,omitempty"`
	ErrorMessage  string        `json:"errorMessage,omitempty"`
	Status        PaymentStatus `json:"status"`
	Timestamp     time.Time     `json:"timestamp"`
}

// RefundRequest refunds all (Amount nil) or part of a completed payment.
type RefundRequest struct {
	BookingID string           `json:"-"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Reason    string           `json:"reason" binding:"max=500"`
}

// RefundResult is returned after a successful refund.
type RefundResult struct {
	IsSuccessful   bool            `json:"isSuccessful"`
	RefundID       string          `json:"refundId,omitempty"`
	RefundedAmount decimal.Decimal `json:"refundedAmount"`
	TotalRefunded  decimal.Decimal `json:"totalRefunded"`
	Status         PaymentStatus   `json:"status"`
	Timestamp      time.Time       `json:"timestamp"`
}
