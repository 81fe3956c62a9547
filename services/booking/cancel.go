package booking

import (
	"context"
	"strings"
	"time"

	"homeease/errs"
	"homeease/models"

	"go.uber.org/zap"
)

// Cancel cancels a booking on behalf of its customer or its provider.
// A cancellation closer to the appointment than the fee window marks a
// captured payment as only partially refundable. No money moves here; the
// refund itself is a separate explicit call.
func (s *Service) Cancel(ctx context.Context, actor models.Actor, req models.CancelBookingRequest) (*models.CancellationOutcome, error) {
	if actor.Role != models.RoleUser && actor.Role != models.RoleProvider {
		return nil, errs.Unauthorized("forbidden", "only the customer or the provider can cancel a booking")
	}
	b, err := s.load(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(b) {
		return nil, errs.Unauthorized("forbidden", "booking belongs to someone else")
	}
	if !CanTransition(b.Status, models.BookingCancelled) {
		return nil, errs.BusinessRule("invalid_transition", "booking cannot be cancelled, it is "+string(b.Status))
	}

	now := s.now()
	feeApplies := b.AppointmentAt.Sub(now) < s.window()

	b.Status = models.BookingCancelled
	b.CancelledAt = &now
	b.CancelledBy = actor.Role
	b.CancellationReason = strings.TrimSpace(req.Reason)
	b.CancellationFee = feeApplies
	b.MarkPaymentForRefund(now)
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}

	s.Logger.Info("booking cancelled",
		zap.String("bookingId", b.ID),
		zap.String("by", string(actor.Role)),
		zap.Bool("feeApplies", feeApplies))
	if actor.Role == models.RoleProvider {
		s.Notifier.SendProviderCancellation(ctx, b)
	} else {
		s.Notifier.SendUserCancellation(ctx, b)
	}
	return &models.CancellationOutcome{Booking: b, FeeApplies: feeApplies}, nil
}

func (s *Service) window() time.Duration {
	if s.CancellationWindow <= 0 {
		return DefaultCancellationWindow
	}
	return s.CancellationWindow
}
