package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingRejected  BookingStatus = "Rejected"
	BookingCancelled BookingStatus = "Cancelled"
	BookingCompleted BookingStatus = "Completed"
)

// IsTerminal reports whether no further mutation is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingRejected
}

// HoldsSlot reports whether a booking in this status occupies provider time.
func (s BookingStatus) HoldsSlot() bool {
	return s != BookingCancelled && s != BookingRejected
}

// PriceSnapshot is captured from the Service when the booking is created and never recomputed.
type PriceSnapshot struct {
	ServicePrice   decimal.Decimal `bson:"servicePrice" json:"servicePrice"`
	HomeServiceFee decimal.Decimal `bson:"homeServiceFee" json:"homeServiceFee"`
	TotalPrice     decimal.Decimal `bson:"totalPrice" json:"totalPrice"`
	Currency       string          `bson:"currency" json:"currency"`
}

// Booking is one reservation of a Service from a Provider by a User.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	SerialNumber       string        `bson:"serialNumber" json:"serialNumber"`
	UserID             string        `bson:"userId" json:"userId"`
	ProviderID         string        `bson:"providerId" json:"providerId"`
	ServiceID          string        `bson:"serviceId" json:"serviceId"`
	AppointmentAt      time.Time     `bson:"appointmentAt" json:"appointmentAt"`
	AppointmentEnd     time.Time     `bson:"appointmentEnd" json:"appointmentEnd"` // denormalised for the overlap query
	DurationMinutes    int           `bson:"durationMinutes" json:"durationMinutes"`
	IsHomeService      bool          `bson:"isHomeService" json:"isHomeService"`
	CustomerAddress    string        `bson:"customerAddress,omitempty" json:"customerAddress,omitempty"`
	Notes              string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Status             BookingStatus `bson:"status" json:"status"`
	Price              PriceSnapshot `bson:"price" json:"price"`
	Payment            *Payment      `bson:"payment,omitempty" json:"payment,omitempty"`
	CancellationReason string        `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancelledBy        Role          `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancellationFee    bool          `bson:"cancellationFee,omitempty" json:"cancellationFee,omitempty"`
	CreatedAt          time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updatedAt"`
	ConfirmedAt        *time.Time    `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CancelledAt        *time.Time    `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CompletedAt        *time.Time    `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Version            int           `bson:"version" json:"-"`
}

// Duration returns the appointment length.
func (b *Booking) Duration() time.Duration {
	return time.Duration(b.DurationMinutes) * time.Minute
}

// SetSchedule keeps AppointmentEnd in step with the start and duration.
func (b *Booking) SetSchedule(start time.Time, durationMinutes int) {
	b.AppointmentAt = start.UTC()
	b.DurationMinutes = durationMinutes
	b.AppointmentEnd = b.AppointmentAt.Add(b.Duration())
}

// Overlaps reports whether the booking's half-open interval intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.AppointmentAt.Before(end) && b.AppointmentEnd.After(start)
}

// MarkPaymentForRefund flags a captured payment of a cancelled or rejected
// booking as owed back, keeping the fee decided at cancellation. Only the
// marker changes; the money moves through an explicit refund.
func (b *Booking) MarkPaymentForRefund(now time.Time) bool {
	p := b.Payment
	if p == nil || p.Status != PaymentCompleted {
		return false
	}
	if b.Status != BookingCancelled && b.Status != BookingRejected {
		return false
	}
	if b.CancellationFee {
		p.Status = PaymentPartialRefund
	} else {
		p.Status = PaymentRefunded
	}
	p.UpdatedAt = now
	return true
}
