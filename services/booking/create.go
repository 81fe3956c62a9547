package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"homeease/database"
	"homeease/errs"
	"homeease/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxSerialAttempts = 3

// Create validates the request against current state and stores a Pending booking.
func (s *Service) Create(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.Booking, error) {
	if actor.Role != models.RoleUser {
		return nil, errs.Unauthorized("forbidden", "only customers can create bookings")
	}

	if _, err := s.Users.GetByID(ctx, actor.ID); err != nil {
		return nil, s.lookupError(err, "user_not_found", "user not found")
	}
	service, err := s.Catalog.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, s.lookupError(err, "service_not_found", "service not found")
	}
	provider, err := s.Providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, s.lookupError(err, "provider_not_found", "provider not found")
	}
	if service.ProviderID != provider.ID {
		return nil, errs.BusinessRule("service_provider_mismatch", "the selected service is not offered by this provider")
	}
	if !provider.Active {
		return nil, errs.BusinessRule("provider_inactive", "provider is not accepting bookings")
	}

	address := strings.TrimSpace(req.CustomerAddress)
	if req.IsHomeService {
		if !service.HomeAvailable {
			return nil, errs.BusinessRule("home_service_unavailable", "this service is not offered at home")
		}
		if address == "" {
			return nil, errs.BusinessRule("address_required", "customer address is required for home service")
		}
	}

	start, err := models.CombineDateTime(req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		return nil, errs.BusinessRule("invalid_appointment", "appointment date or time is malformed")
	}
	now := s.now()
	if !start.After(now) {
		return nil, errs.BusinessRule("appointment_in_past", "appointment must be in the future")
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = service.DurationMinutes
	}
	if duration <= 0 {
		return nil, errs.BusinessRule("invalid_duration", "appointment duration must be positive")
	}

	release, err := s.lockProvider(ctx, provider.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := s.Availability.Explain(ctx, provider.ID, start, duration, "")
	if err != nil {
		s.Logger.Error("availability check failed", zap.String("providerId", provider.ID), zap.Error(err))
		return nil, errs.Unexpected(err)
	}
	if !res.Available {
		s.Logger.Info("booking rejected, provider unavailable",
			zap.String("providerId", provider.ID),
			zap.Time("start", start),
			zap.String("reason", string(res.Reason)))
		return nil, unavailable(res.Reason)
	}

	homeFee := decimal.Zero
	if req.IsHomeService {
		homeFee = service.HomeServiceFee
	}
	b := &models.Booking{
		ID:              uuid.New().String(),
		UserID:          actor.ID,
		ProviderID:      provider.ID,
		ServiceID:       service.ID,
		IsHomeService:   req.IsHomeService,
		CustomerAddress: address,
		Notes:           strings.TrimSpace(req.Notes),
		Status:          models.BookingPending,
		Price: models.PriceSnapshot{
			ServicePrice:   service.Price,
			HomeServiceFee: homeFee,
			TotalPrice:     service.Price.Add(homeFee),
			Currency:       service.Currency,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.SetSchedule(start, duration)

	if err := s.insertWithSerial(ctx, b); err != nil {
		return nil, err
	}

	s.Logger.Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("serialNumber", b.SerialNumber),
		zap.String("providerId", b.ProviderID),
		zap.Time("appointmentAt", b.AppointmentAt))
	s.Notifier.SendBookingRequest(ctx, b)
	return b, nil
}

// insertWithSerial draws serials from the counter of the booking's creation day
// until the unique index accepts one. A duplicate only happens if the counter was reset.
func (s *Service) insertWithSerial(ctx context.Context, b *models.Booking) error {
	day := b.CreatedAt
	for attempt := 1; attempt <= maxSerialAttempts; attempt++ {
		seq, err := s.Bookings.NextSerial(ctx, day)
		if err != nil {
			s.Logger.Error("failed to allocate serial number", zap.String("bookingId", b.ID), zap.Error(err))
			return errs.Unexpected(err)
		}
		b.SerialNumber = FormatSerial(day, seq)

		err = s.Bookings.Create(ctx, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrDuplicateKey) {
			s.Logger.Error("failed to insert booking", zap.String("bookingId", b.ID), zap.Error(err))
			return errs.Unexpected(err)
		}
		s.Logger.Warn("serial number collision, retrying",
			zap.String("serialNumber", b.SerialNumber),
			zap.Int("attempt", attempt))
	}
	return errs.Unexpected(fmt.Errorf("could not allocate a unique serial number for booking %s", b.ID))
}

func (s *Service) lockProvider(ctx context.Context, providerID string) (func(), error) {
	release, err := s.Locker.Acquire(ctx, providerID)
	if err != nil {
		if errors.Is(err, ErrLockBusy) {
			return nil, errs.BusinessRule("booking_in_progress", "another booking for this provider is being processed, please retry")
		}
		s.Logger.Error("failed to acquire provider lock", zap.String("providerId", providerID), zap.Error(err))
		return nil, errs.Unexpected(err)
	}
	return release, nil
}

func (s *Service) lookupError(err error, code, message string) error {
	if errors.Is(err, database.ErrNotFound) {
		return errs.NotFound(code, message)
	}
	s.Logger.Error("lookup failed", zap.String("code", code), zap.Error(err))
	return errs.Unexpected(err)
}
