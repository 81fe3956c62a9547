package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homeease/errs"
	"homeease/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// refundable lists the states in which captured money may still be returned.
// Unlike a strict Completed-only rule, partially refunded payments and the
// cancellation markers stay refundable so refunds can accumulate and a marked
// cancellation can actually be paid out. Pending, Processing and Failed never are.
func refundable(s models.PaymentStatus) bool {
	switch s {
	case models.PaymentCompleted, models.PaymentPartiallyRefunded, models.PaymentPartialRefund, models.PaymentRefunded:
		return true
	}
	return false
}

func refundKey(bookingID string, attempt int) string {
	return fmt.Sprintf("booking-%s-refund-%d", bookingID, attempt)
}

// RefundPayment returns all or part of a captured payment. Every precondition
// is checked before the gateway is contacted. The refund is recorded as in
// flight before the call; when its outcome is unknown (timeout, lost response)
// the next call re-sends the same amount under the same idempotency key.
func (s *Service) RefundPayment(ctx context.Context, actor models.Actor, req models.RefundRequest) (*models.RefundResult, error) {
	b, err := s.load(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.Role == models.RoleProvider && b.ProviderID == actor.ID) {
		return nil, errs.Unauthorized("forbidden", "only the provider or an admin can refund a payment")
	}

	p := b.Payment
	if p == nil {
		return nil, errs.BusinessRule("refund_not_allowed", "booking has no payment")
	}
	if p.ChargeID == "" {
		return nil, errs.BusinessRule("refund_not_allowed", "payment was never charged")
	}
	remaining := p.RefundableAmount()
	if !refundable(p.Status) || !remaining.IsPositive() {
		return nil, errs.BusinessRule("refund_not_allowed", "payment is "+string(p.Status)+" and cannot be refunded")
	}

	var amount decimal.Decimal
	if p.RefundInFlight() {
		amount = p.PendingRefundAmount
		if req.Amount != nil && !req.Amount.Equal(amount) {
			return nil, errs.BusinessRule("refund_in_progress",
				"a refund of "+amount.StringFixed(2)+" is awaiting its outcome, retry it before requesting another")
		}
	} else {
		amount = remaining
		if req.Amount != nil {
			amount = *req.Amount
		}
		if !amount.IsPositive() {
			return nil, errs.BusinessRule("invalid_refund_amount", "refund amount must be positive")
		}
		if amount.GreaterThan(remaining) {
			return nil, errs.BusinessRule("invalid_refund_amount", "refund amount exceeds the refundable balance "+remaining.StringFixed(2))
		}

		now := s.now()
		p.RefundAttempts++
		p.PendingRefundAmount = amount
		p.PendingRefundKey = refundKey(b.ID, p.RefundAttempts)
		p.ErrorCode, p.ErrorMessage = "", ""
		p.UpdatedAt = now
		if b, err = s.commit(ctx, b, nil); err != nil {
			return nil, err
		}
		p = b.Payment
	}
	key := p.PendingRefundKey

	logger := s.Logger.With(zap.String("bookingId", b.ID), zap.String("chargeId", p.ChargeID), zap.String("refundKey", key))
	persistCtx := context.WithoutCancel(ctx)

	gctx, cancel := s.gatewayContext(ctx)
	out, gerr := s.Gateway.Refund(gctx, RefundRequest{
		BookingID:      b.ID,
		ChargeID:       p.ChargeID,
		IdempotencyKey: key,
		Amount:         amount,
		Currency:       p.Currency,
		Reason:         strings.TrimSpace(req.Reason),
	})
	timedOut := isTimeout(gctx, gerr)
	cancel()
	if gerr != nil {
		var ge *GatewayError
		declined := !timedOut && errors.As(gerr, &ge)
		code, message := "refund_failed", "refund could not be processed"
		switch {
		case timedOut:
			code, message = "gateway_timeout", "refund outcome unknown, retry to resolve it"
			logger.Warn("gateway refund timed out", zap.Error(gerr))
		case declined:
			code, message = ge.Code, ge.Message
			logger.Error("gateway refund declined", zap.Error(gerr))
		default:
			logger.Error("gateway refund failed", zap.Error(gerr))
		}

		failed := func(fresh *models.Booking) bool {
			fp := fresh.Payment
			if fp == nil || fp.PendingRefundKey != key {
				return false
			}
			// only a processor decline proves the money did not move
			if declined {
				fp.PendingRefundAmount = decimal.Zero
				fp.PendingRefundKey = ""
			}
			fp.ErrorCode, fp.ErrorMessage = code, message
			fp.UpdatedAt = s.now()
			return true
		}
		if failed(b) {
			if _, cerr := s.commit(persistCtx, b, failed); cerr != nil {
				logger.Error("failed to record refund failure", zap.Error(cerr))
			}
		}

		if timedOut {
			return nil, errs.GatewayTimeout(gerr)
		}
		return nil, errs.Gateway(code, message)
	}

	refunded := out.Amount
	if !refunded.IsPositive() {
		refunded = amount
	}
	record := func(fresh *models.Booking) bool {
		fp := fresh.Payment
		if fp == nil || fp.PendingRefundKey != key {
			return false
		}
		recordRefund(fp, refunded, s.now())
		return true
	}
	record(b)
	if b, err = s.commit(persistCtx, b, record); err != nil {
		return nil, err
	}
	p = b.Payment

	logger.Info("payment refunded",
		zap.String("refundId", out.RefundID),
		zap.String("amount", refunded.String()),
		zap.String("status", string(p.Status)))
	s.Notifier.SendRefundConfirmation(persistCtx, b, refunded)

	return &models.RefundResult{
		IsSuccessful:   true,
		RefundID:       out.RefundID,
		RefundedAmount: refunded,
		TotalRefunded:  p.RefundedAmount,
		Status:         p.Status,
		Timestamp:      s.now(),
	}, nil
}

func recordRefund(p *models.Payment, amount decimal.Decimal, now time.Time) {
	p.RefundedAmount = p.RefundedAmount.Add(amount)
	if p.RefundedAmount.GreaterThanOrEqual(p.Amount) {
		p.Status = models.PaymentRefunded
	} else {
		p.Status = models.PaymentPartiallyRefunded
	}
	p.PendingRefundAmount = decimal.Zero
	p.PendingRefundKey = ""
	p.ErrorCode, p.ErrorMessage = "", ""
	p.RefundedAt = &now
	p.UpdatedAt = now
}
