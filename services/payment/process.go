package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"homeease/errs"
	"homeease/models"

	"go.uber.org/zap"
)

// ProcessPayment charges the booking's price. The payment is stored as
// Processing before the gateway is called and the outcome is stored after it,
// whatever it was. Calling it again for the same booking reuses the payment.
func (s *Service) ProcessPayment(ctx context.Context, actor models.Actor, req models.ProcessPaymentRequest) (*models.PaymentResult, error) {
	b, err := s.load(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleUser || b.UserID != actor.ID {
		return nil, errs.Unauthorized("forbidden", "only the customer who booked can pay for it")
	}
	if b.Status.IsTerminal() {
		return nil, errs.BusinessRule("booking_not_payable", "booking is "+string(b.Status)+" and cannot be paid")
	}

	amount := b.Price.TotalPrice
	if !req.Amount.IsZero() && !req.Amount.Equal(amount) {
		return nil, errs.BusinessRule("amount_mismatch", fmt.Sprintf("amount must equal the booking price %s", amount.StringFixed(2)))
	}
	currency := strings.ToUpper(b.Price.Currency)
	if req.Currency != "" && !strings.EqualFold(req.Currency, currency) {
		return nil, errs.BusinessRule("currency_mismatch", "currency must be "+currency)
	}

	now := s.now()
	p := b.Payment
	switch {
	case p == nil:
		p = &models.Payment{Status: models.PaymentPending, CreatedAt: now}
		b.Payment = p
	case p.Status == models.PaymentCompleted || p.Status.IsRefundState():
		return nil, errs.BusinessRule("payment_already_completed", "booking is already paid")
	}

	// An attempt whose outcome is unknown (timeout, pending redirect) keeps its
	// idempotency key, so the gateway never sees it as a second charge.
	if p.Attempts == 0 || p.Status == models.PaymentFailed || p.Status == models.PaymentPending {
		p.Attempts++
	}
	p.Amount = amount
	p.Currency = currency
	p.Method = req.Method
	p.Gateway = s.Gateway.Name()
	p.Status = models.PaymentProcessing
	p.ErrorCode, p.ErrorMessage = "", ""
	p.UpdatedAt = now
	if b, err = s.commit(ctx, b, nil); err != nil {
		return nil, err
	}
	p = b.Payment

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = s.ReturnURL
	}
	charge := ChargeRequest{
		BookingID:      b.ID,
		IdempotencyKey: fmt.Sprintf("booking-%s-attempt-%d", b.ID, p.Attempts),
		Amount:         amount,
		Currency:       currency,
		Method:         req.Method,
		SourceToken:    req.TransactionID,
		ReturnURL:      returnURL,
		Customer:       req.Customer,
		Description:    "Booking " + b.SerialNumber,
	}

	gctx, cancel := s.gatewayContext(ctx)
	outcome, gerr := s.Gateway.Charge(gctx, charge)
	timedOut := isTimeout(gctx, gerr)
	cancel()

	// the outcome must be stored even if the caller went away meanwhile
	persistCtx := context.WithoutCancel(ctx)
	logger := s.Logger.With(zap.String("bookingId", b.ID), zap.Int("attempt", p.Attempts), zap.String("gateway", p.Gateway))

	switch {
	case gerr != nil && timedOut:
		logger.Warn("gateway charge timed out", zap.Error(gerr))
		markTimeout := func(fresh *models.Booking) bool {
			if fresh.Payment == nil || fresh.Payment.Status != models.PaymentProcessing {
				return false
			}
			fresh.Payment.ErrorCode = "gateway_timeout"
			fresh.Payment.ErrorMessage = "no response from payment gateway"
			fresh.Payment.UpdatedAt = s.now()
			return true
		}
		markTimeout(b)
		if _, err := s.commit(persistCtx, b, markTimeout); err != nil {
			return nil, err
		}
		return nil, errs.GatewayTimeout(gerr)

	case gerr != nil:
		code, message := "gateway_error", "payment could not be processed"
		var ge *GatewayError
		if errors.As(gerr, &ge) {
			code, message = ge.Code, ge.Message
		}
		logger.Error("gateway charge failed", zap.String("code", code), zap.Error(gerr))
		outcome = &ChargeOutcome{Status: models.PaymentFailed, ErrorCode: code, ErrorMessage: message}
	}

	apply := func(fresh *models.Booking) bool {
		return settle(fresh, *outcome, s.now())
	}
	apply(b)
	if b, err = s.commit(persistCtx, b, apply); err != nil {
		return nil, err
	}
	p = b.Payment

	switch p.Status {
	case models.PaymentCompleted:
		logger.Info("payment completed", zap.String("chargeId", p.ChargeID))
		s.Notifier.SendPaymentConfirmation(persistCtx, b)
	case models.PaymentFailed:
		logger.Info("payment failed", zap.String("code", p.ErrorCode))
		s.Notifier.SendPaymentFailure(persistCtx, b, p.ErrorMessage)
		return nil, errs.Gateway(nonEmpty(p.ErrorCode, "payment_failed"), nonEmpty(p.ErrorMessage, "payment was declined"))
	default:
		logger.Info("payment awaiting confirmation", zap.String("status", string(p.Status)), zap.Bool("redirect", p.RedirectURL != ""))
	}
	return resultOf(p, s.now()), nil
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
