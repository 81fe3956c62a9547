package booking

import (
	"context"
	"strings"

	"homeease/errs"
	"homeease/models"

	"go.uber.org/zap"
)

// Update applies the customer's changes. Rescheduling re-checks availability
// with the booking itself excluded, so moving within its own window is allowed.
func (s *Service) Update(ctx context.Context, actor models.Actor, bookingID string, req models.UpdateBookingRequest) (*models.Booking, error) {
	if actor.Role != models.RoleUser {
		return nil, errs.Unauthorized("forbidden", "only the customer can update a booking")
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID {
		return nil, errs.Unauthorized("forbidden", "booking belongs to another customer")
	}
	if b.Status.IsTerminal() {
		return nil, errs.BusinessRule("invalid_transition", "booking can no longer be changed, it is "+string(b.Status))
	}

	if req.CustomerAddress != nil {
		b.CustomerAddress = strings.TrimSpace(*req.CustomerAddress)
	}
	if req.Notes != nil {
		b.Notes = strings.TrimSpace(*req.Notes)
	}
	if b.IsHomeService && b.CustomerAddress == "" {
		return nil, errs.BusinessRule("address_required", "customer address is required for home service")
	}

	rescheduled := false
	if req.Reschedules() {
		date := b.AppointmentAt.Format(models.DateLayout)
		if req.AppointmentDate != nil {
			date = *req.AppointmentDate
		}
		clock := b.AppointmentAt.Format(models.TimeLayout)
		if req.AppointmentTime != nil {
			clock = *req.AppointmentTime
		}
		duration := b.DurationMinutes
		if req.DurationMinutes != nil {
			duration = *req.DurationMinutes
		}

		start, err := models.CombineDateTime(date, clock)
		if err != nil {
			return nil, errs.BusinessRule("invalid_appointment", "appointment date or time is malformed")
		}
		if !start.After(s.now()) {
			return nil, errs.BusinessRule("appointment_in_past", "appointment must be in the future")
		}
		if duration <= 0 {
			return nil, errs.BusinessRule("invalid_duration", "appointment duration must be positive")
		}

		if !start.Equal(b.AppointmentAt) || duration != b.DurationMinutes {
			release, err := s.lockProvider(ctx, b.ProviderID)
			if err != nil {
				return nil, err
			}
			defer release()

			res, err := s.Availability.Explain(ctx, b.ProviderID, start, duration, b.ID)
			if err != nil {
				s.Logger.Error("availability check failed", zap.String("bookingId", b.ID), zap.Error(err))
				return nil, errs.Unexpected(err)
			}
			if !res.Available {
				return nil, unavailable(res.Reason)
			}
			b.SetSchedule(start, duration)
			rescheduled = true
		}
	}

	if err := s.save(ctx, b); err != nil {
		return nil, err
	}

	s.Logger.Info("booking updated", zap.String("bookingId", b.ID), zap.Bool("rescheduled", rescheduled))
	if rescheduled && b.Status == models.BookingConfirmed {
		s.Notifier.ScheduleAppointmentReminder(ctx, b)
	}
	return b, nil
}
