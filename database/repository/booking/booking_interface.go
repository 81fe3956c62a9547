package bookingRepo

import (
	"context"
	"time"

	"homeease/models"
)

// ListFilter selects one page of bookings. Exactly one of UserID and ProviderID is normally set.
type ListFilter struct {
	UserID     string
	ProviderID string
	Status     models.BookingStatus
	Page       int
	PageSize   int
}

// Normalize clamps paging to sane bounds.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	return f
}

// BookingRepository persists bookings together with their embedded payment.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// FindByChargeID locates the booking whose payment carries the gateway charge id.
	FindByChargeID(ctx context.Context, chargeID string) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	// Update writes the whole booking if its Version still matches the stored one,
	// then increments Version. A lost race yields database.ErrVersionConflict.
	Update(ctx context.Context, booking *models.Booking) error
	// FindConflicts returns slot-holding bookings of the provider overlapping [start, end),
	// ignoring excludeID when it is not empty.
	FindConflicts(ctx context.Context, providerID string, start, end time.Time, excludeID string) ([]models.Booking, error)
	// NextSerial atomically returns the next sequence number for the UTC day of t, starting at 1.
	NextSerial(ctx context.Context, t time.Time) (int, error)
	List(ctx context.Context, filter ListFilter) ([]models.Booking, int64, error)
}
