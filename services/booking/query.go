package booking

import (
	"context"
	"time"

	"homeease/database/repository"
	"homeease/errs"
	"homeease/models"
	"homeease/services/availability"

	"go.uber.org/zap"
)

// Get returns a booking visible to its customer, its provider or an admin.
func (s *Service) Get(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(b) {
		return nil, errs.Unauthorized("forbidden", "booking belongs to someone else")
	}
	return b, nil
}

// List pages through the caller's own bookings, newest appointment first.
func (s *Service) List(ctx context.Context, actor models.Actor, page, pageSize int, status models.BookingStatus) (*models.BookingPage, error) {
	filter := repository.BookingListFilter{Status: status, Page: page, PageSize: pageSize}
	switch actor.Role {
	case models.RoleUser:
		filter.UserID = actor.ID
	case models.RoleProvider:
		filter.ProviderID = actor.ID
	case models.RoleAdmin:
	default:
		return nil, errs.Unauthorized("forbidden", "unknown role")
	}
	filter = filter.Normalize()

	items, total, err := s.Bookings.List(ctx, filter)
	if err != nil {
		s.Logger.Error("failed to list bookings", zap.String("actor", actor.ID), zap.Error(err))
		return nil, errs.Unexpected(err)
	}
	return &models.BookingPage{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// CheckAvailability answers an availability probe without reserving anything.
func (s *Service) CheckAvailability(ctx context.Context, providerID, date, clock string, durationMinutes int) (*models.AvailabilityResponse, error) {
	start, err := models.CombineDateTime(date, clock)
	if err != nil {
		return nil, errs.BusinessRule("invalid_appointment", "appointment date or time is malformed")
	}
	if durationMinutes <= 0 {
		return nil, errs.BusinessRule("invalid_duration", "appointment duration must be positive")
	}

	resp := &models.AvailabilityResponse{
		ProviderID:      providerID,
		Start:           start.Format(time.RFC3339),
		DurationMinutes: durationMinutes,
	}
	if !start.After(s.now()) {
		resp.Reason = "appointment_in_past"
		return resp, nil
	}

	res, err := s.Availability.Explain(ctx, providerID, start, durationMinutes, "")
	if err != nil {
		s.Logger.Error("availability check failed", zap.String("providerId", providerID), zap.Error(err))
		return nil, errs.Unexpected(err)
	}
	if res.Reason == availability.ReasonProviderNotFound {
		return nil, errs.NotFound("provider_not_found", "provider not found")
	}
	resp.Available = res.Available
	resp.Reason = string(res.Reason)
	return resp, nil
}
