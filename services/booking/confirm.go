package booking

import (
	"context"
	"strings"

	"homeease/errs"
	"homeease/models"

	"go.uber.org/zap"
)

// Confirm records the provider's decision on a Pending booking. Accepting
// confirms it; declining rejects it and frees the slot.
func (s *Service) Confirm(ctx context.Context, actor models.Actor, req models.ConfirmBookingRequest) (*models.Booking, error) {
	if actor.Role != models.RoleProvider {
		return nil, errs.Unauthorized("forbidden", "only the provider can confirm a booking")
	}
	b, err := s.load(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != actor.ID {
		return nil, errs.Unauthorized("forbidden", "booking belongs to another provider")
	}
	if b.Status != models.BookingPending {
		return nil, errs.BusinessRule("invalid_transition", "only pending bookings can be confirmed or rejected, booking is "+string(b.Status))
	}

	now := s.now()
	if req.IsConfirmed {
		b.Status = models.BookingConfirmed
		b.ConfirmedAt = &now
	} else {
		b.Status = models.BookingRejected
		b.CancelledAt = &now
		b.CancelledBy = models.RoleProvider
		b.CancellationReason = strings.TrimSpace(req.Reason)
		b.MarkPaymentForRefund(now)
	}
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}

	s.Logger.Info("booking decision recorded",
		zap.String("bookingId", b.ID),
		zap.String("status", string(b.Status)))
	if req.IsConfirmed {
		s.Notifier.SendBookingConfirmation(ctx, b)
		s.Notifier.ScheduleAppointmentReminder(ctx, b)
	} else {
		s.Notifier.SendBookingRejection(ctx, b, b.CancellationReason)
	}
	return b, nil
}
