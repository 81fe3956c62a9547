package payment

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"homeease/models"

	"github.com/shopspring/decimal"
)

// ChargeRequest is what the orchestrator asks a gateway to collect.
type ChargeRequest struct {
	BookingID string
	// IdempotencyKey is stable across retries of the same attempt.
	IdempotencyKey string
	Amount         decimal.Decimal
	Currency       string
	Method         string
	// SourceToken is the tokenised card or payment source from the client SDK.
	SourceToken string
	ReturnURL   string
	Customer    models.CustomerInfo
	Description string
}

// ChargeOutcome is a gateway's view of a charge. A decline is an outcome with
// StatusFailed, not an error.
type ChargeOutcome struct {
	ChargeID      string
	TransactionID string
	Status        models.PaymentStatus
	RedirectURL   string
	ErrorCode     string
	ErrorMessage  string
}

// RefundRequest asks a gateway to return money from an earlier charge.
type RefundRequest struct {
	BookingID string
	ChargeID  string
	// IdempotencyKey is reused when an in-flight refund is retried.
	IdempotencyKey string
	Amount         decimal.Decimal
	Currency       string
	Reason         string
}

// RefundOutcome is a completed gateway refund.
type RefundOutcome struct {
	RefundID string
	Amount   decimal.Decimal
}

// Event is a verified, normalised webhook event. Known is false for event
// types that do not affect payment state.
type Event struct {
	ID        string
	Type      string
	Known     bool
	BookingID string
	Outcome   ChargeOutcome
}

// Gateway is an external payment processor.
type Gateway interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (*ChargeOutcome, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundOutcome, error)
	Status(ctx context.Context, chargeID string) (*ChargeOutcome, error)
	ParseWebhook(ctx context.Context, payload []byte, header http.Header) (*Event, error)
}

// GatewayError is a failure reported by the processor itself.
type GatewayError struct {
	Code    string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	return e.Code + ": " + e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// isTimeout reports whether err came from the call deadline rather than from the processor.
func isTimeout(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true,
	"KRW": true, "MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

func currencyExponent(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// ToMinorUnits converts an amount to the smallest currency unit, e.g. 12.50 USD to 1250.
func ToMinorUnits(amount decimal.Decimal, currency string) int64 {
	return amount.Shift(currencyExponent(currency)).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(units int64, currency string) decimal.Decimal {
	return decimal.New(units, -currencyExponent(currency))
}
