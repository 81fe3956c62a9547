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

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// OmiseGateway charges cards and payment sources through Omise.
type OmiseGateway struct {
	client *omise.Client
}

// NewOmiseGateway builds a client whose HTTP transport gives up after timeout,
// so an abandoned call in do does not outlive the deadline by much.
func NewOmiseGateway(publicKey, secretKey string, timeout time.Duration) (*OmiseGateway, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("create omise client: %w", err)
	}
	if c.Client == nil {
		c.Client = &http.Client{}
	}
	c.Client.Timeout = timeout
	c.SetDebug(false)
	return &OmiseGateway{client: c}, nil
}

func (g *OmiseGateway) Name() string { return "omise" }

// do runs an Omise operation and stops waiting once ctx is done.
func (g *OmiseGateway) do(ctx context.Context, call func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- call()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *OmiseGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeOutcome, error) {
	op := &operations.CreateCharge{
		Amount:      ToMinorUnits(req.Amount, req.Currency),
		Currency:    strings.ToLower(req.Currency),
		Description: req.Description,
		ReturnURI:   req.ReturnURL,
		Metadata: map[string]interface{}{
			"booking_id":      req.BookingID,
			"idempotency_key": req.IdempotencyKey,
		},
	}
	if strings.EqualFold(req.Method, "card") {
		op.Card = req.SourceToken
	} else {
		op.Source = req.SourceToken
	}

	ch := &omise.Charge{}
	if err := g.do(ctx, func() error { return g.client.Do(ch, op) }); err != nil {
		return nil, omiseError(err)
	}
	return omiseOutcome(ch), nil
}

func (g *OmiseGateway) Refund(ctx context.Context, req RefundRequest) (*RefundOutcome, error) {
	op := &operations.CreateRefund{
		ChargeID: req.ChargeID,
		Amount:   ToMinorUnits(req.Amount, req.Currency),
		Metadata: map[string]interface{}{
			"booking_id":      req.BookingID,
			"idempotency_key": req.IdempotencyKey,
		},
	}
	if req.Reason != "" {
		op.Metadata["reason"] = req.Reason
	}

	refund := &omise.Refund{}
	if err := g.do(ctx, func() error { return g.client.Do(refund, op) }); err != nil {
		return nil, omiseError(err)
	}
	return &RefundOutcome{RefundID: refund.ID, Amount: FromMinorUnits(refund.Amount, req.Currency)}, nil
}

func (g *OmiseGateway) Status(ctx context.Context, chargeID string) (*ChargeOutcome, error) {
	ch := &omise.Charge{}
	if err := g.do(ctx, func() error { return g.client.Do(ch, &operations.RetrieveCharge{ChargeID: chargeID}) }); err != nil {
		return nil, omiseError(err)
	}
	return omiseOutcome(ch), nil
}

// ParseWebhook does not trust the posted body: the event is fetched again from
// Omise by id, which also rejects forged events.
func (g *OmiseGateway) ParseWebhook(ctx context.Context, payload []byte, _ http.Header) (*Event, error) {
	var incoming struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := json.Unmarshal(payload, &incoming); err != nil || incoming.ID == "" {
		return nil, fmt.Errorf("decode omise webhook: malformed payload")
	}

	ev := &omise.Event{}
	if err := g.do(ctx, func() error { return g.client.Do(ev, &operations.RetrieveEvent{EventID: incoming.ID}) }); err != nil {
		return nil, fmt.Errorf("retrieve omise event %s: %w", incoming.ID, err)
	}

	out := &Event{ID: ev.ID, Type: ev.Key}
	if !strings.HasPrefix(ev.Key, "charge.") {
		return out, nil
	}

	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, fmt.Errorf("encode omise event data: %w", err)
	}
	var ch omise.Charge
	if err := json.Unmarshal(raw, &ch); err != nil || ch.ID == "" {
		// not a charge payload, nothing to apply
		return out, nil
	}

	out.Known = true
	out.BookingID, _ = ch.Metadata["booking_id"].(string)
	out.Outcome = *omiseOutcome(&ch)
	return out, nil
}

func omiseOutcome(ch *omise.Charge) *ChargeOutcome {
	out := &ChargeOutcome{
		ChargeID:    ch.ID,
		RedirectURL: ch.AuthorizeURI,
	}
	if ch.FailureCode != nil {
		out.ErrorCode = *ch.FailureCode
	}
	if ch.FailureMessage != nil {
		out.ErrorMessage = *ch.FailureMessage
	}

	switch string(ch.Status) {
	case "successful":
		out.Status = models.PaymentCompleted
	case "failed", "expired", "reversed":
		out.Status = models.PaymentFailed
		if out.ErrorCode == "" {
			out.ErrorCode = string(ch.Status)
		}
	default:
		out.Status = models.PaymentProcessing
	}
	return out
}

func omiseError(err error) error {
	var oerr *omise.Error
	if errors.As(err, &oerr) {
		return &GatewayError{Code: oerr.Code, Message: oerr.Message, Err: err}
	}
	return err
}
