package notification

import (
	"fmt"
	"time"

	"homeease/models"

	"github.com/shopspring/decimal"
)

const (
	TypeBookingRequest      = "booking_request"
	TypeBookingConfirmed    = "booking_confirmed"
	TypeBookingRejected     = "booking_rejected"
	TypeCancelledByProvider = "booking_cancelled_by_provider"
	TypeCancelledByUser     = "booking_cancelled_by_user"
	TypePaymentConfirmed    = "payment_confirmed"
	TypePaymentFailed       = "payment_failed"
	TypeRefundConfirmed     = "refund_confirmed"
	TypeAppointmentReminder = "appointment_reminder"
)

func appointmentLabel(b *models.Booking) string {
	return b.AppointmentAt.Format("Mon 02 Jan 2006 at 15:04 UTC")
}

func newNotification(b *models.Booking, kind string, target models.NotificationTarget, title, body string, now time.Time) models.Notification {
	recipient := b.UserID
	if target == models.TargetProvider {
		recipient = b.ProviderID
	}
	return models.Notification{
		Type:        kind,
		Target:      target,
		RecipientID: recipient,
		Title:       title,
		Body:        body,
		Data: map[string]string{
			"type":          kind,
			"role":          string(target),
			"bookingId":     b.ID,
			"serialNumber":  b.SerialNumber,
			"appointmentAt": b.AppointmentAt.Format(time.RFC3339),
		},
		CreatedAt: now,
	}
}

func bookingRequest(b *models.Booking, now time.Time) models.Notification {
	return newNotification(b, TypeBookingRequest, models.TargetProvider,
		"New booking request",
		fmt.Sprintf("Booking %s for %s is waiting for your confirmation.", b.SerialNumber, appointmentLabel(b)), now)
}

func bookingConfirmation(b *models.Booking, now time.Time) models.Notification {
	return newNotification(b, TypeBookingConfirmed, models.TargetUser,
		"Booking confirmed",
		fmt.Sprintf("Your booking %s on %s has been confirmed.", b.SerialNumber, appointmentLabel(b)), now)
}

func bookingRejection(b *models.Booking, reason string, now time.Time) models.Notification {
	body := fmt.Sprintf("Your booking %s on %s was declined by the provider.", b.SerialNumber, appointmentLabel(b))
	if reason != "" {
		body += " Reason: " + reason
	}
	return newNotification(b, TypeBookingRejected, models.TargetUser, "Booking declined", body, now)
}

// providerCancellation tells the customer that the provider cancelled.
func providerCancellation(b *models.Booking, now time.Time) models.Notification {
	return newNotification(b, TypeCancelledByProvider, models.TargetUser,
		"Booking cancelled",
		fmt.Sprintf("The provider cancelled your booking %s on %s.", b.SerialNumber, appointmentLabel(b)), now)
}

// userCancellation tells the provider that the customer cancelled.
func userCancellation(b *models.Booking, now time.Time) models.Notification {
	return newNotification(b, TypeCancelledByUser, models.TargetProvider,
		"Booking cancelled",
		fmt.Sprintf("The customer cancelled booking %s on %s.", b.SerialNumber, appointmentLabel(b)), now)
}

func paymentConfirmation(b *models.Booking, now time.Time) models.Notification {
	amount := b.Price.TotalPrice.StringFixed(2) + " " + b.Price.Currency
	if b.Payment != nil {
		amount = b.Payment.Amount.StringFixed(2) + " " + b.Payment.Currency
	}
	return newNotification(b, TypePaymentConfirmed, models.TargetUser,
		"Payment received",
		fmt.Sprintf("We received %s for booking %s.", amount, b.SerialNumber), now)
}

func paymentFailure(b *models.Booking, message string, now time.Time) models.Notification {
	body := fmt.Sprintf("Payment for booking %s did not go through.", b.SerialNumber)
	if message != "" {
		body += " " + message
	}
	return newNotification(b, TypePaymentFailed, models.TargetUser, "Payment failed", body, now)
}

func refundConfirmation(b *models.Booking, amount decimal.Decimal, now time.Time) models.Notification {
	currency := b.Price.Currency
	if b.Payment != nil {
		currency = b.Payment.Currency
	}
	return newNotification(b, TypeRefundConfirmed, models.TargetUser,
		"Refund issued",
		fmt.Sprintf("%s %s was refunded for booking %s.", amount.StringFixed(2), currency, b.SerialNumber), now)
}

func appointmentReminder(b *models.Booking, now time.Time) models.Notification {
	return newNotification(b, TypeAppointmentReminder, models.TargetUser,
		"Upcoming appointment",
		fmt.Sprintf("Reminder: booking %s is scheduled for %s.", b.SerialNumber, appointmentLabel(b)), now)
}
