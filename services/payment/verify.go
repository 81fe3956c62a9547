package payment

import (
	"context"
	"errors"
	"net/http"

	"homeease/database"
	"homeease/errs"
	"homeease/models"

	"go.uber.org/zap"
)

// VerifyPayment polls the gateway for the charge and reconciles the stored status.
func (s *Service) VerifyPayment(ctx context.Context, actor models.Actor, bookingID string) (*models.PaymentResult, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(b) {
		return nil, errs.Unauthorized("forbidden", "booking belongs to someone else")
	}
	p := b.Payment
	if p == nil {
		return nil, errs.NotFound("payment_not_found", "booking has no payment")
	}
	if p.ChargeID == "" {
		return nil, errs.BusinessRule("payment_not_submitted", "payment has not reached the gateway yet, process it again")
	}

	gctx, cancel := s.gatewayContext(ctx)
	outcome, gerr := s.Gateway.Status(gctx, p.ChargeID)
	timedOut := isTimeout(gctx, gerr)
	cancel()
	if gerr != nil {
		if timedOut {
			return nil, errs.GatewayTimeout(gerr)
		}
		s.Logger.Error("gateway status lookup failed", zap.String("bookingId", b.ID), zap.Error(gerr))
		var ge *GatewayError
		if errors.As(gerr, &ge) {
			return nil, errs.Gateway(ge.Code, ge.Message)
		}
		return nil, errs.Gateway("status_unavailable", "payment status could not be retrieved")
	}

	b, err = s.reconcile(context.WithoutCancel(ctx), b, *outcome)
	if err != nil {
		return nil, err
	}
	return resultOf(b.Payment, s.now()), nil
}

// reconcile applies an outcome and notifies only when the status really moved.
func (s *Service) reconcile(ctx context.Context, b *models.Booking, outcome ChargeOutcome) (*models.Booking, error) {
	before := b.Payment.Status
	apply := func(fresh *models.Booking) bool {
		return settle(fresh, outcome, s.now())
	}
	if !apply(b) {
		return b, nil
	}

	b, err := s.commit(ctx, b, apply)
	if err != nil {
		return nil, err
	}
	after := b.Payment.Status
	if after == before {
		return b, nil
	}

	s.Logger.Info("payment status reconciled",
		zap.String("bookingId", b.ID),
		zap.String("from", string(before)),
		zap.String("to", string(after)))
	switch after {
	case models.PaymentCompleted:
		s.Notifier.SendPaymentConfirmation(ctx, b)
	case models.PaymentFailed:
		s.Notifier.SendPaymentFailure(ctx, b, b.Payment.ErrorMessage)
	case models.PaymentRefunded, models.PaymentPartialRefund:
		s.Logger.Warn("charge completed after booking was closed, marked for refund",
			zap.String("bookingId", b.ID),
			zap.String("bookingStatus", string(b.Status)))
	}
	return b, nil
}

// HandleWebhook ingests a gateway event. Events that are unknown, duplicated
// or do not match the stored charge are acknowledged without effect.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, header http.Header) error {
	gctx, cancel := s.gatewayContext(ctx)
	ev, err := s.Gateway.ParseWebhook(gctx, payload, header)
	cancel()
	if err != nil {
		s.Logger.Warn("rejected webhook", zap.String("gateway", s.Gateway.Name()), zap.Error(err))
		return errs.Unexpected(err)
	}

	logger := s.Logger.With(zap.String("eventId", ev.ID), zap.String("eventType", ev.Type))
	if !ev.Known {
		logger.Debug("ignoring webhook event")
		return nil
	}

	b, err := s.findForEvent(ctx, ev)
	if err != nil {
		return err
	}
	if b == nil || b.Payment == nil {
		logger.Info("webhook event has no matching payment", zap.String("bookingId", ev.BookingID))
		return nil
	}
	if b.Payment.ChargeID != "" && b.Payment.ChargeID != ev.Outcome.ChargeID {
		logger.Warn("webhook charge does not match stored payment",
			zap.String("bookingId", b.ID),
			zap.String("stored", b.Payment.ChargeID),
			zap.String("received", ev.Outcome.ChargeID))
		return nil
	}

	b.Payment.WebhookPayload = string(payload)
	if _, err := s.reconcile(ctx, b, ev.Outcome); err != nil {
		return err
	}
	return nil
}

func (s *Service) findForEvent(ctx context.Context, ev *Event) (*models.Booking, error) {
	var (
		b   *models.Booking
		err error
	)
	if ev.BookingID != "" {
		b, err = s.Bookings.GetByID(ctx, ev.BookingID)
	} else {
		b, err = s.Bookings.FindByChargeID(ctx, ev.Outcome.ChargeID)
	}
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, database.ErrNotFound):
		return nil, nil
	}
	s.Logger.Error("webhook lookup failed", zap.String("bookingId", ev.BookingID), zap.Error(err))
	return nil, errs.Unexpected(err)
}
