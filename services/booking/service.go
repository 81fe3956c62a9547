// Package booking implements the booking lifecycle: creation, confirmation,
// cancellation, completion and rescheduling.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeease/database"
	"homeease/database/repository"
	"homeease/errs"
	"homeease/models"
	"homeease/services/availability"
	"homeease/services/notification"

	"go.uber.org/zap"
)

// DefaultCancellationWindow is how close to the appointment a cancellation starts to carry a fee.
const DefaultCancellationWindow = 24 * time.Hour

// BookingService is the booking lifecycle as seen by the transport layer.
type BookingService interface {
	Create(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.Booking, error)
	Confirm(ctx context.Context, actor models.Actor, req models.ConfirmBookingRequest) (*models.Booking, error)
	Cancel(ctx context.Context, actor models.Actor, req models.CancelBookingRequest) (*models.CancellationOutcome, error)
	Complete(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	Update(ctx context.Context, actor models.Actor, bookingID string, req models.UpdateBookingRequest) (*models.Booking, error)
	Get(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	List(ctx context.Context, actor models.Actor, page, pageSize int, status models.BookingStatus) (*models.BookingPage, error)
	CheckAvailability(ctx context.Context, providerID, date, clock string, durationMinutes int) (*models.AvailabilityResponse, error)
}

// Service is the default BookingService.
type Service struct {
	Bookings     repository.BookingRepository
	Providers    repository.ProviderRepository
	Users        repository.UserRepository
	Catalog      repository.ServiceRepository
	Availability availability.Checker
	Notifier     notification.Dispatcher
	Locker       Locker
	Logger       *zap.Logger

	CancellationWindow time.Duration
	Now                func() time.Time
}

// NewService wires the booking service with the system clock.
func NewService(repos repository.Set, checker availability.Checker, notifier notification.Dispatcher, locker Locker, logger *zap.Logger) *Service {
	return &Service{
		Bookings:           repos.Bookings,
		Providers:          repos.Providers,
		Users:              repos.Users,
		Catalog:            repos.Services,
		Availability:       checker,
		Notifier:           notifier,
		Locker:             locker,
		Logger:             logger,
		CancellationWindow: DefaultCancellationWindow,
		Now:                time.Now,
	}
}

func (s *Service) now() time.Time {
	return s.Now().UTC()
}

// load fetches a booking and turns a missing document into a NotFound failure.
func (s *Service) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, errs.NotFound("booking_not_found", fmt.Sprintf("booking %s not found", bookingID))
		}
		s.Logger.Error("failed to load booking", zap.String("bookingId", bookingID), zap.Error(err))
		return nil, errs.Unexpected(err)
	}
	return b, nil
}

// save commits a mutated booking.
func (s *Service) save(ctx context.Context, b *models.Booking) error {
	b.UpdatedAt = s.now()
	if err := s.Bookings.Update(ctx, b); err != nil {
		switch {
		case errors.Is(err, database.ErrVersionConflict):
			return errs.BusinessRule("booking_modified", "booking was modified by another request, reload and try again")
		case errors.Is(err, database.ErrNotFound):
			return errs.NotFound("booking_not_found", fmt.Sprintf("booking %s not found", b.ID))
		}
		s.Logger.Error("failed to save booking", zap.String("bookingId", b.ID), zap.Error(err))
		return errs.Unexpected(err)
	}
	return nil
}

func unavailable(reason availability.Reason) error {
	switch reason {
	case availability.ReasonProviderNotFound:
		return errs.NotFound("provider_not_found", "provider not found")
	case availability.ReasonNoSlot:
		return errs.BusinessRule("provider_unavailable", "provider not available: no availability slot covers the requested time")
	}
	return errs.BusinessRule("provider_unavailable", "provider not available: the requested time overlaps another booking")
}
