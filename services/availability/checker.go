// Package availability answers whether a provider can take an appointment.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeease/database"
	"homeease/database/repository"
	"homeease/models"

	"go.uber.org/zap"
)

// Reason explains a negative answer.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonProviderNotFound Reason = "provider_not_found"
	ReasonNoSlot           Reason = "no_slot"
	ReasonConflict         Reason = "conflict"
)

// Result is the detailed outcome of a check.
type Result struct {
	Available bool
	Reason    Reason
	// Conflicts holds the overlapping bookings when Reason is ReasonConflict.
	Conflicts []models.Booking
}

// Checker evaluates provider availability for a proposed appointment.
type Checker interface {
	IsAvailable(ctx context.Context, providerID string, start time.Time, durationMinutes int, excludeBookingID string) (bool, error)
	Explain(ctx context.Context, providerID string, start time.Time, durationMinutes int, excludeBookingID string) (Result, error)
}

// DefaultChecker reads slots from the provider directory and bookings from the booking store.
type DefaultChecker struct {
	Providers repository.ProviderRepository
	Bookings  repository.BookingRepository
	Logger    *zap.Logger
}

func NewChecker(providers repository.ProviderRepository, bookings repository.BookingRepository, logger *zap.Logger) *DefaultChecker {
	return &DefaultChecker{Providers: providers, Bookings: bookings, Logger: logger}
}

// IsAvailable is true when the provider exists, a slot covers the whole appointment
// and no slot-holding booking overlaps it. excludeBookingID lets a booking be
// rescheduled onto a window that overlaps its own current one.
func (c *DefaultChecker) IsAvailable(ctx context.Context, providerID string, start time.Time, durationMinutes int, excludeBookingID string) (bool, error) {
	res, err := c.Explain(ctx, providerID, start, durationMinutes, excludeBookingID)
	if err != nil {
		return false, err
	}
	return res.Available, nil
}

func (c *DefaultChecker) Explain(ctx context.Context, providerID string, start time.Time, durationMinutes int, excludeBookingID string) (Result, error) {
	if durationMinutes <= 0 {
		return Result{}, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}
	start = start.UTC()
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	if _, err := c.Providers.GetByID(ctx, providerID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return Result{Reason: ReasonProviderNotFound}, nil
		}
		return Result{}, fmt.Errorf("load provider %s: %w", providerID, err)
	}

	slots, err := c.Providers.GetAvailabilitySlots(ctx, providerID)
	if err != nil {
		return Result{}, fmt.Errorf("load availability slots for %s: %w", providerID, err)
	}
	if !slotCovers(slots, start, end) {
		c.Logger.Debug("no slot covers appointment",
			zap.String("providerId", providerID),
			zap.Time("start", start),
			zap.Int("durationMinutes", durationMinutes))
		return Result{Reason: ReasonNoSlot}, nil
	}

	conflicts, err := c.Bookings.FindConflicts(ctx, providerID, start, end, excludeBookingID)
	if err != nil {
		return Result{}, fmt.Errorf("find conflicting bookings for %s: %w", providerID, err)
	}
	if len(conflicts) > 0 {
		return Result{Reason: ReasonConflict, Conflicts: conflicts}, nil
	}
	return Result{Available: true}, nil
}

// slotCovers compares time-of-day only. An appointment that ends on a later
// calendar day than it starts is never covered.
func slotCovers(slots []models.AvailabilitySlot, start, end time.Time) bool {
	if end.YearDay() != start.YearDay() || end.Year() != start.Year() {
		return false
	}
	startMin, endMin := models.MinutesOfDay(start), models.MinutesOfDay(end)
	for _, slot := range slots {
		if slot.AppliesOn(start) && slot.Covers(startMin, endMin) {
			return true
		}
	}
	return false
}
