package payment

import (
	"context"
	"net/http"
	"testing"
	"time"

	"homeease/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signedHeader(payload []byte) http.Header {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: testWebhookSecret})
	h := http.Header{}
	h.Set("Stripe-Signature", signed.Header)
	return h
}

func TestStripeWebhookSucceeded(t *testing.T) {
	g := NewStripeGateway("sk_test_123", testWebhookSecret, time.Second)
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_1",
			"object": "payment_intent",
			"status": "succeeded",
			"latest_charge": "ch_1",
			"metadata": {"booking_id": "b1"}
		}}
	}`)

	ev, err := g.ParseWebhook(context.Background(), payload, signedHeader(payload))
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	if !ev.Known || ev.BookingID != "b1" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Outcome.ChargeID != "pi_1" || ev.Outcome.TransactionID != "ch_1" || ev.Outcome.Status != models.PaymentCompleted {
		t.Fatalf("outcome = %+v", ev.Outcome)
	}
}

func TestStripeWebhookIgnoresOtherEvents(t *testing.T) {
	g := NewStripeGateway("sk_test_123", testWebhookSecret, time.Second)
	payload := []byte(`{"id": "evt_2", "object": "event", "type": "customer.created", "data": {"object": {"id": "cus_1"}}}`)

	ev, err := g.ParseWebhook(context.Background(), payload, signedHeader(payload))
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	if ev.Known {
		t.Fatalf("customer.created must not be treated as a payment event")
	}
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	g := NewStripeGateway("sk_test_123", testWebhookSecret, time.Second)
	payload := []byte(`{"id": "evt_3", "object": "event", "type": "payment_intent.succeeded", "data": {"object": {}}}`)
	h := http.Header{}
	h.Set("Stripe-Signature", "t=1,v1=deadbeef")

	if _, err := g.ParseWebhook(context.Background(), payload, h); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestStripeOutcomeMapping(t *testing.T) {
	cases := []struct {
		name string
		pi   stripe.PaymentIntent
		want models.PaymentStatus
	}{
		{"succeeded", stripe.PaymentIntent{ID: "pi", Status: stripe.PaymentIntentStatusSucceeded}, models.PaymentCompleted},
		{"canceled", stripe.PaymentIntent{ID: "pi", Status: stripe.PaymentIntentStatusCanceled}, models.PaymentFailed},
		{"needs action", stripe.PaymentIntent{ID: "pi", Status: stripe.PaymentIntentStatusRequiresAction}, models.PaymentProcessing},
		{"awaiting method", stripe.PaymentIntent{ID: "pi", Status: stripe.PaymentIntentStatusRequiresPaymentMethod}, models.PaymentPending},
		{"declined", stripe.PaymentIntent{
			ID: "pi", Status: stripe.PaymentIntentStatusRequiresPaymentMethod,
			LastPaymentError: &stripe.Error{Code: stripe.ErrorCodeCardDeclined, Msg: "declined"},
		}, models.PaymentFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripeOutcome(&tc.pi).Status; got != tc.want {
				t.Fatalf("status = %s, want %s", got, tc.want)
			}
		})
	}
}
