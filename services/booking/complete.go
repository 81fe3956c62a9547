package booking

import (
	"context"

	"homeease/errs"
	"homeease/models"

	"go.uber.org/zap"
)

// Complete closes a Confirmed booking once the service was delivered. Only the
// owning provider can do it, and not before the appointment has started.
func (s *Service) Complete(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	if actor.Role != models.RoleProvider {
		return nil, errs.Unauthorized("forbidden", "only the provider can complete a booking")
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != actor.ID {
		return nil, errs.Unauthorized("forbidden", "booking belongs to another provider")
	}
	if !CanTransition(b.Status, models.BookingCompleted) {
		return nil, errs.BusinessRule("invalid_transition", "only confirmed bookings can be completed, booking is "+string(b.Status))
	}

	now := s.now()
	if now.Before(b.AppointmentAt) {
		return nil, errs.BusinessRule("appointment_not_started", "booking cannot be completed before its appointment starts")
	}

	b.Status = models.BookingCompleted
	b.CompletedAt = &now
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}

	s.Logger.Info("booking completed", zap.String("bookingId", b.ID), zap.String("providerId", actor.ID))
	return b, nil
}
