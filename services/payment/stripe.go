package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"homeease/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway charges through PaymentIntents. The intent id is the charge id.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway builds a client whose HTTP transport gives up after timeout.
func NewStripeGateway(secretKey, webhookSecret string, timeout time.Duration) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, stripe.NewBackends(&http.Client{Timeout: timeout}))
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeOutcome, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(ToMinorUnits(req.Amount, req.Currency)),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("booking_id", req.BookingID)
	params.AddMetadata("method", req.Method)
	if req.Customer.Email != "" {
		params.ReceiptEmail = stripe.String(req.Customer.Email)
	}
	if req.SourceToken != "" {
		params.PaymentMethod = stripe.String(req.SourceToken)
		params.Confirm = stripe.Bool(true)
		if req.ReturnURL != "" {
			params.ReturnURL = stripe.String(req.ReturnURL)
		} else {
			params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
				Enabled:        stripe.Bool(true),
				AllowRedirects: stripe.String("never"),
			}
		}
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return declineOrError(err)
	}
	return stripeOutcome(pi), nil
}

func (g *StripeGateway) Refund(ctx context.Context, req RefundRequest) (*RefundOutcome, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.ChargeID),
		Amount:        stripe.Int64(ToMinorUnits(req.Amount, req.Currency)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("booking_id", req.BookingID)
	if req.Reason != "" {
		params.AddMetadata("reason", req.Reason)
	}

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, stripeError(err)
	}
	if r.Status == stripe.RefundStatusFailed || r.Status == stripe.RefundStatusCanceled {
		return nil, &GatewayError{Code: "refund_" + string(r.Status), Message: "stripe did not complete the refund"}
	}
	return &RefundOutcome{RefundID: r.ID, Amount: FromMinorUnits(r.Amount, req.Currency)}, nil
}

func (g *StripeGateway) Status(ctx context.Context, chargeID string) (*ChargeOutcome, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(chargeID, params)
	if err != nil {
		return nil, stripeError(err)
	}
	return stripeOutcome(pi), nil
}

// ParseWebhook verifies the Stripe-Signature header before trusting the payload.
func (g *StripeGateway) ParseWebhook(_ context.Context, payload []byte, header http.Header) (*Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, header.Get("Stripe-Signature"), g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("verify stripe webhook: %w", err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	switch evt.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed",
		"payment_intent.processing", "payment_intent.canceled", "payment_intent.requires_action":
	default:
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent from event %s: %w", evt.ID, err)
	}
	out.Known = true
	out.BookingID = pi.Metadata["booking_id"]
	out.Outcome = *stripeOutcome(&pi)
	return out, nil
}

func stripeOutcome(pi *stripe.PaymentIntent) *ChargeOutcome {
	out := &ChargeOutcome{ChargeID: pi.ID}
	if pi.LatestCharge != nil {
		out.TransactionID = pi.LatestCharge.ID
	}
	if pi.NextAction != nil && pi.NextAction.RedirectToURL != nil {
		out.RedirectURL = pi.NextAction.RedirectToURL.URL
	}
	if pi.LastPaymentError != nil {
		out.ErrorCode = string(pi.LastPaymentError.Code)
		out.ErrorMessage = pi.LastPaymentError.Msg
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		out.Status = models.PaymentCompleted
	case stripe.PaymentIntentStatusCanceled:
		out.Status = models.PaymentFailed
		if out.ErrorCode == "" {
			out.ErrorCode = "canceled"
			out.ErrorMessage = "payment was canceled"
		}
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			out.Status = models.PaymentFailed
		} else {
			out.Status = models.PaymentPending
		}
	default:
		out.Status = models.PaymentProcessing
	}
	return out
}

// declineOrError turns a card error into a failed outcome and everything else into an error.
func declineOrError(err error) (*ChargeOutcome, error) {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Type == stripe.ErrorTypeCard {
		out := &ChargeOutcome{
			Status:       models.PaymentFailed,
			ErrorCode:    string(serr.Code),
			ErrorMessage: serr.Msg,
		}
		if serr.DeclineCode != "" {
			out.ErrorCode = string(serr.DeclineCode)
		}
		if serr.PaymentIntent != nil {
			out.ChargeID = serr.PaymentIntent.ID
		}
		return out, nil
	}
	return nil, stripeError(err)
}

func stripeError(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		code := string(serr.Code)
		if code == "" {
			code = string(serr.Type)
		}
		return &GatewayError{Code: code, Message: serr.Msg, Err: err}
	}
	return err
}
